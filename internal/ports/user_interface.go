package ports

import (
	"context"

	"task-tracker/internal/model"
)

// UserRepository : SQL слой, источник данных о пользователях и их правах
type UserRepository interface {
	FindByLogin(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	Scopes(ctx context.Context, userID int64) ([]string, error)
	CreateUser(ctx context.Context, newUser *model.NewUser) (*model.User, error)
	UpdatePassword(ctx context.Context, userID int64, newPasswordHash string) error
}

type UserService interface {
	CreateUser(ctx context.Context, username, password, email, phone string, scopes []string) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) (int, error)
}
