package requestresponse

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Username string `json:"username" example:"user1"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// TokensResponse : пара токенов и права, выданные пользователю
type TokensResponse struct {
	Response struct {
		AccessToken  string   `json:"access_token" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
		RefreshToken string   `json:"refresh_token" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
		TokenType    string   `json:"token_type" example:"Bearer"`
		Scopes       []string `json:"scopes" example:"tasks:read"`
	} `json:"response"`
}

// CurrentUserResponse : информация о текущем пользователе
type CurrentUserResponse struct {
	Response struct {
		ID       int64    `json:"id" example:"42"`
		UUID     string   `json:"uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
		Username string   `json:"username" example:"user1"`
		Scopes   []string `json:"scopes"`
	} `json:"response"`
}

// RefreshTokenRequest : запрос на обновление пары токенов или на выход
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ErrorResponse : тело ответа с ошибкой (см. util.HandleError)
type ErrorResponse struct {
	Error   string `json:"error" example:"Unauthorized"`
	Message string `json:"message" example:"невалидный токен"`
	Code    int    `json:"code" example:"401"`
}
