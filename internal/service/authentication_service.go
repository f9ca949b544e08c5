package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"task-tracker/internal/model"
	"task-tracker/internal/ports"
	"task-tracker/internal/repository"
	"task-tracker/internal/security"
	"task-tracker/internal/util"

	"github.com/sirupsen/logrus"
)

type AuthenticationService struct {
	userRepository ports.UserRepository
	jwtService     ports.JWTServiceInterface
	hasher         ports.PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthenticationService(
	userRepository ports.UserRepository,
	jwtService ports.JWTServiceInterface,
	hasher ports.PasswordHasher,
) *AuthenticationService {
	return &AuthenticationService{
		userRepository: userRepository,
		jwtService:     jwtService,
		hasher:         hasher,
	}
}

// Login проверяет логин и пароль и выдаёт пару токенов с актуальными правами.
// Несуществующий логин и неверный пароль неразличимы для вызывающего.
func (s *AuthenticationService) Login(ctx context.Context, username, password string) (*model.Session, error) {
	user, err := s.userRepository.FindByLogin(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.burnVerification(password)
		return nil, security.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("[AuthService] повреждённый хэш пароля")
		return nil, security.ErrInvalidCredentials
	}
	if !ok {
		return nil, security.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	scopes, err := s.userRepository.Scopes(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка получения прав: %w", err)
	}

	tokens, err := s.jwtService.MintPair(ctx, user.ID, scopes)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка генерации токенов: %w", err)
	}

	return &model.Session{
		UserID: user.ID,
		Scopes: scopes,
		Tokens: tokens,
	}, nil
}

// Refresh обменивает refresh-токен на новую пару. Старый токен
// после этого недействителен, повторный обмен вернёт
// security.ErrSessionConsumedOrExpired.
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	session, err := s.jwtService.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] не удалось обновить токены: %w", err)
	}
	return session, nil
}

// Logout завершает сессию refresh-токена
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.jwtService.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("[AuthService] не удалось завершить сессию: %w", err)
	}
	return nil
}

func (s *AuthenticationService) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] %w", err)
	}
	return user, nil
}

// burnVerification тратит на несуществующего пользователя
// столько же времени, сколько на проверку настоящего пароля.
func (s *AuthenticationService) burnVerification(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			logrus.WithError(err).Warn("[AuthService] не удалось подготовить фиктивный хэш")
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

func (s *AuthenticationService) rehash(ctx context.Context, userID int64, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		_ = util.LogError("[AuthService] не удалось пересчитать хэш пароля", err)
		return
	}
	if err := s.userRepository.UpdatePassword(ctx, userID, hash); err != nil {
		_ = util.LogError("[AuthService] не удалось сохранить новый хэш пароля", err)
		return
	}
	logrus.WithField("user_id", userID).Info("[AuthService] хэш пароля обновлён до текущих параметров")
}
