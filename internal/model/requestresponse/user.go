package requestresponse

// CreateUserRequest : тело запроса на создание пользователя
type CreateUserRequest struct {
	Username string   `json:"username" example:"newuser123"`
	Password string   `json:"password" example:"P@ssw0rd!"`
	Email    string   `json:"email" example:"user@example.com"`
	Phone    string   `json:"phone" example:"+79990000000"`
	Scopes   []string `json:"scopes" example:"tasks:read"`
}

// UserResponse : данные пользователя с расшифрованными email и телефоном
type UserResponse struct {
	Response struct {
		ID       int64  `json:"id" example:"42"`
		UUID     string `json:"uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
		Username string `json:"username" example:"user1"`
		Email    string `json:"email,omitempty" example:"user@example.com"`
		Phone    string `json:"phone,omitempty" example:"+79990000000"`
	} `json:"response"`
}

// UpdatePasswordRequest : тело запроса
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" example:"P@ssw0rd123"`
}

// UpdatePasswordResponse : успешный ответ
type UpdatePasswordResponse struct {
	Response struct {
		Updated         bool `json:"updated" example:"true"`
		RevokedSessions int  `json:"revoked_sessions" example:"2"`
	} `json:"response"`
}
