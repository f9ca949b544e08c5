package security

import "errors"

// Ошибки подсистемы аутентификации. Слои оборачивают их через %w,
// HTTP-слой сопоставляет их с кодами ответа через errors.Is.
var (
	ErrInvalidCredentials       = errors.New("неверный логин или пароль")
	ErrTokenInvalid             = errors.New("невалидный токен")
	ErrSessionConsumedOrExpired = errors.New("сессия истекла или уже использована")
	ErrInsufficientScope        = errors.New("недостаточно прав")

	// Фатальные ошибки старта: процесс не должен обслуживать запросы
	ErrKeyLoadFailure             = errors.New("не удалось загрузить ключи подписи")
	ErrEncryptionKeyMisconfigured = errors.New("некорректный ключ шифрования")

	ErrDecryptionIntegrityFailure = errors.New("не удалось расшифровать значение")
	ErrInvalidHash                = errors.New("некорректный формат хэша пароля")
)
