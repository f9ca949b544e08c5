package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"task-tracker/internal/repository"
	"task-tracker/internal/security"
	"task-tracker/internal/service"
	"task-tracker/internal/util"

	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// writeServiceError переводит ошибку сервисного слоя в HTTP-ответ.
// Коды назначаются только по типу ошибки, текст внутренних ошибок наружу не уходит.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, security.ErrInvalidCredentials):
		util.HandleError(w, security.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
	case errors.Is(err, security.ErrTokenInvalid):
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		util.HandleError(w, security.ErrTokenInvalid.Error(), http.StatusUnauthorized)
	case errors.Is(err, security.ErrSessionConsumedOrExpired):
		util.HandleError(w, security.ErrSessionConsumedOrExpired.Error(), http.StatusUnauthorized)
	case errors.Is(err, security.ErrInsufficientScope):
		util.HandleError(w, security.ErrInsufficientScope.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrCurrentPasswordMismatch):
		util.HandleError(w, service.ErrCurrentPasswordMismatch.Error(), http.StatusForbidden)
	case errors.Is(err, repository.ErrUserNotFound):
		util.HandleError(w, repository.ErrUserNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, repository.ErrUserExists):
		util.HandleError(w, repository.ErrUserExists.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrValidation), errors.Is(err, repository.ErrUnknownScope):
		util.HandleError(w, clientMessage(err), http.StatusBadRequest)
	default:
		logrus.WithError(err).Error("внутренняя ошибка при обработке запроса")
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}

// clientMessage убирает из текста ошибки префикс слоя вида "[UserService] "
func clientMessage(err error) string {
	msg := err.Error()
	if strings.HasPrefix(msg, "[") {
		if i := strings.Index(msg, "] "); i > 0 {
			msg = msg[i+2:]
		}
	}
	return msg
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("некорректный JSON: %w", err)
	}
	return nil
}
