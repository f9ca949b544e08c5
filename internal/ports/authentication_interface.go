package ports

import (
	"context"

	"task-tracker/internal/model"
)

type AuthenticationService interface {
	Login(ctx context.Context, username, password string) (*model.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*model.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context, userID int64) (*model.User, error)
}

// PasswordHasher : хэширование и проверка паролей
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) (bool, error)
	NeedsRehash(digest string) bool
}

// FieldCipher : шифрование чувствительных полей пользователя
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encoded string) (string, error)
}
