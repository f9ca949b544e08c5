package security

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"task-tracker/internal/util"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

const bearerPrefix = "bearer "

// TokenValidator : то, что нужно middleware от JWTService
type TokenValidator interface {
	Validate(tokenStr string, requireKind TokenKind) (*Claims, error)
}

// JWTMiddleware пропускает запрос только с валидным access-токеном
// в заголовке Authorization: Bearer <token>
func JWTMiddleware(validator TokenValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := validator.Validate(token, TokenKindAccess)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScopes проверяет права пользователя. Должен стоять после JWTMiddleware.
func RequireScopes(authorizer *ScopeAuthorizer, scopes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := GetClaimsFromContext(r.Context())
			if err != nil {
				unauthorized(w)
				return
			}

			err = authorizer.Authorize(r.Context(), scopes, claims.Scopes, claims.UserID)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, ErrInsufficientScope):
				logrus.WithField("user_id", claims.UserID).Info(err.Error())
				util.HandleError(w, ErrInsufficientScope.Error(), http.StatusForbidden)
			default:
				util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
			}
		})
	}
}

// BearerToken достаёт токен из заголовка Authorization
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	util.HandleError(w, ErrTokenInvalid.Error(), http.StatusUnauthorized)
}
