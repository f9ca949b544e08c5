package security

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"task-tracker/config"
	"task-tracker/internal/model"
	"task-tracker/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims : полезная нагрузка токена. Токен подписан, но не зашифрован,
// поэтому сюда нельзя класть ничего секретного.
type Claims struct {
	Type   TokenKind `json:"type"`
	Scopes []string  `json:"scopes"`
	jwt.RegisteredClaims

	// UserID заполняется при валидации из поля sub
	UserID int64 `json:"-"`
}

// SessionRegistry хранит идентификаторы выданных refresh-токенов.
// Take обязан проверять и удалять запись одной атомарной операцией хранилища.
type SessionRegistry interface {
	Put(ctx context.Context, userID int64, tokenID, token string, ttl time.Duration) error
	Exists(ctx context.Context, userID int64, tokenID string) (bool, error)
	Take(ctx context.Context, userID int64, tokenID string) (bool, error)
}

type JWTService struct {
	keys       *KeyStore
	sessions   SessionRegistry
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type JWTOption func(*JWTService)

// WithClock подменяет источник времени, используется в тестах
func WithClock(now func() time.Time) JWTOption {
	return func(s *JWTService) {
		s.now = now
	}
}

func NewJWTService(keys *KeyStore, sessions SessionRegistry, cfg *config.JWTConfig, opts ...JWTOption) (*JWTService, error) {
	accessTTL, refreshTTL, err := cfg.Durations()
	if err != nil {
		return nil, err
	}
	if keys == nil || keys.SigningMethod() == nil {
		return nil, fmt.Errorf("%w: хранилище ключей не инициализировано", ErrKeyLoadFailure)
	}

	s := &JWTService{
		keys:       keys,
		sessions:   sessions,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MintPair выпускает access и refresh токены для пользователя.
// Refresh-токен возвращается только после того, как его запись
// сохранена в реестре сессий.
func (s *JWTService) MintPair(ctx context.Context, userID int64, scopes []string) (*model.TokensPair, error) {
	if scopes == nil {
		scopes = []string{}
	}
	now := s.now()

	accessToken, _, err := s.sign(userID, TokenKindAccess, s.accessTTL, scopes, now)
	if err != nil {
		return nil, util.LogError("[JWTService] ошибка подписи access токена", err)
	}
	refreshToken, refreshID, err := s.sign(userID, TokenKindRefresh, s.refreshTTL, scopes, now)
	if err != nil {
		return nil, util.LogError("[JWTService] ошибка подписи refresh токена", err)
	}

	if err := s.sessions.Put(ctx, userID, refreshID, refreshToken, s.refreshTTL); err != nil {
		return nil, util.LogError("[JWTService] не удалось сохранить сессию", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *JWTService) sign(userID int64, kind TokenKind, ttl time.Duration, scopes []string, now time.Time) (string, string, error) {
	tokenID := uuid.NewString()
	claims := Claims{
		Type:   kind,
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        tokenID,
		},
	}

	signed, err := jwt.NewWithClaims(s.keys.SigningMethod(), claims).SignedString(s.keys.PrivateKey())
	if err != nil {
		return "", "", err
	}
	return signed, tokenID, nil
}

// Validate проверяет подпись, срок действия и тип токена.
// Пустой requireKind принимает любой тип. Причина отказа пишется
// только в debug-лог, вызывающий всегда получает ErrTokenInvalid.
func (s *JWTService) Validate(tokenStr string, requireKind TokenKind) (*Claims, error) {
	claims, reason := s.parse(tokenStr, requireKind)
	if reason != nil {
		logrus.WithError(reason).Debug("[JWTService] токен отклонён")
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *JWTService) parse(tokenStr string, requireKind TokenKind) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.keys.SigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return s.keys.PublicKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("токен не прошёл проверку")
	}

	if claims.Type != TokenKindAccess && claims.Type != TokenKindRefresh {
		return nil, fmt.Errorf("неизвестный тип токена %q", claims.Type)
	}
	if requireKind != "" && claims.Type != requireKind {
		return nil, fmt.Errorf("ожидался тип %q, получен %q", requireKind, claims.Type)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("отсутствует jti")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("некорректный sub %q", claims.Subject)
	}
	claims.UserID = userID

	if claims.Scopes == nil {
		claims.Scopes = []string{}
	}
	return claims, nil
}

// Rotate обменивает refresh-токен на новую пару. Токен одноразовый:
// запись в реестре забирается атомарно, поэтому из двух параллельных
// запросов с одним токеном успешен только один.
func (s *JWTService) Rotate(ctx context.Context, refreshToken string) (*model.Session, error) {
	claims, err := s.Validate(refreshToken, TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	taken, err := s.sessions.Take(ctx, claims.UserID, claims.ID)
	if err != nil {
		return nil, util.LogError("[JWTService] ошибка обращения к реестру сессий", err)
	}
	if !taken {
		logrus.WithField("user_id", claims.UserID).Warn("[JWTService] повторное использование или истёкшая сессия")
		return nil, ErrSessionConsumedOrExpired
	}

	tokens, err := s.MintPair(ctx, claims.UserID, claims.Scopes)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		UserID: claims.UserID,
		Scopes: claims.Scopes,
		Tokens: tokens,
	}, nil
}

// Revoke завершает сессию, к которой относится refresh-токен
func (s *JWTService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.Validate(refreshToken, TokenKindRefresh)
	if err != nil {
		return err
	}

	taken, err := s.sessions.Take(ctx, claims.UserID, claims.ID)
	if err != nil {
		return util.LogError("[JWTService] ошибка обращения к реестру сессий", err)
	}
	if !taken {
		return ErrSessionConsumedOrExpired
	}
	return nil
}
