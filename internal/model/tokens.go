package model

// TokensPair содержит пару access и refresh токенов
type TokensPair struct {
	// Access токен (JWT), короткоживущий
	AccessToken string `json:"access_token"`

	// Refresh токен (JWT), одноразовый, для получения новой пары
	RefreshToken string `json:"refresh_token"`
}

// Session : результат входа или обмена refresh-токена
type Session struct {
	UserID int64
	Scopes []string
	Tokens *TokensPair
}
