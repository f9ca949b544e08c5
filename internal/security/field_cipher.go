package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	fieldKeySize   = 32
	fieldNonceSize = 12
)

// Строгий режим отвергает ненулевые биты дополнения,
// иначе разные строки base64 декодировались бы в одни и те же байты.
var fieldEncoding = base64.StdEncoding.Strict()

// FieldCipher шифрует чувствительные поля пользователя (email, телефон)
// с помощью AES-256-GCM. Формат: base64(nonce ‖ ciphertext ‖ tag).
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher создаёт шифр из ключа в base64.
// Ключ обязан декодироваться ровно в 32 байта.
func NewFieldCipher(encodedKey string) (*FieldCipher, error) {
	if encodedKey == "" {
		return nil, fmt.Errorf("%w: ключ не задан", ErrEncryptionKeyMisconfigured)
	}
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: ключ не в формате base64", ErrEncryptionKeyMisconfigured)
	}
	if len(key) != fieldKeySize {
		return nil, fmt.Errorf("%w: ожидалось %d байт, получено %d", ErrEncryptionKeyMisconfigured, fieldKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncryptionKeyMisconfigured, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncryptionKeyMisconfigured, err)
	}

	return &FieldCipher{aead: aead}, nil
}

// Encrypt шифрует строку. Для каждого вызова генерируется новый nonce.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, fieldNonceSize, fieldNonceSize+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return fieldEncoding.EncodeToString(sealed), nil
}

// Decrypt расшифровывает строку, полученную из Encrypt.
// Любое расхождение (подмена данных, чужой ключ) возвращает
// ErrDecryptionIntegrityFailure и пустую строку.
func (c *FieldCipher) Decrypt(encoded string) (string, error) {
	if strings.ContainsAny(encoded, "\r\n") {
		return "", ErrDecryptionIntegrityFailure
	}
	raw, err := fieldEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecryptionIntegrityFailure
	}
	if len(raw) < fieldNonceSize+c.aead.Overhead() {
		return "", ErrDecryptionIntegrityFailure
	}

	plaintext, err := c.aead.Open(nil, raw[:fieldNonceSize], raw[fieldNonceSize:], nil)
	if err != nil {
		return "", ErrDecryptionIntegrityFailure
	}
	if !utf8.Valid(plaintext) {
		return "", ErrDecryptionIntegrityFailure
	}

	return string(plaintext), nil
}
