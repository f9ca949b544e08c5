package util

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// SetupLogger : настраивает глобальный логгер
// format принимает значения "text" или "json"
func SetupLogger(level string, format string) error {
	if level == "" {
		level = "info"
	}
	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("некорректный уровень логирования %q: %w", level, err)
	}

	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(parsedLevel)

	switch strings.ToLower(format) {
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("неизвестный формат логов: %s", format)
	}

	return nil
}

// LogError пишет ошибку в лог и возвращает её обёрнутой в message
func LogError(message string, err error) error {
	logrus.WithError(err).Error(message)
	return fmt.Errorf("%s: %w", message, err)
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		logrus.WithError(err).Warn("не удалось записать ответ с ошибкой")
	}
}

func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Warn("не удалось записать ответ")
	}
}
