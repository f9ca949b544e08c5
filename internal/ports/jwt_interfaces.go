package ports

import (
	"context"

	"task-tracker/internal/model"
	"task-tracker/internal/security"
)

type JWTServiceInterface interface {
	MintPair(ctx context.Context, userID int64, scopes []string) (*model.TokensPair, error)
	Validate(tokenStr string, requireKind security.TokenKind) (*security.Claims, error)
	Rotate(ctx context.Context, refreshToken string) (*model.Session, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// SessionRepository : реестр refresh-токенов (Redis слой)
type SessionRepository interface {
	security.SessionRegistry
	RevokeAll(ctx context.Context, userID int64) (int, error)
}
