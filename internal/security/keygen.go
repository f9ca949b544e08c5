package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"github.com/youmark/pkcs8"
)

// Поддерживаемые алгоритмы для GenerateKeyPair
const (
	KeyTypeRSA     = "rsa"
	KeyTypeECDSA   = "ecdsa"
	KeyTypeEd25519 = "ed25519"
)

// GenerateKeyPair создаёт пару ключей для подписи токенов.
// Приватный ключ возвращается как зашифрованный паролем PKCS#8 PEM,
// публичный как PKIX PEM. KeyStore читает их в этом же виде.
func GenerateKeyPair(keyType string, password string) (privatePEM []byte, publicPEM []byte, err error) {
	if password == "" {
		return nil, nil, fmt.Errorf("пароль приватного ключа обязателен")
	}

	var private crypto.Signer
	switch keyType {
	case KeyTypeRSA:
		private, err = rsa.GenerateKey(rand.Reader, 3072)
	case KeyTypeECDSA:
		private, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case KeyTypeEd25519:
		_, private, err = ed25519.GenerateKey(rand.Reader)
	default:
		return nil, nil, fmt.Errorf("неизвестный тип ключа %q", keyType)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка генерации ключа: %w", err)
	}

	der, err := pkcs8.MarshalPrivateKey(private, []byte(password), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка шифрования приватного ключа: %w", err)
	}
	publicDER, err := x509.MarshalPKIXPublicKey(private.Public())
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка сериализации публичного ключа: %w", err)
	}

	privatePEM = pem.EncodeToMemory(&pem.Block{Type: pemEncryptedPrivateKey, Bytes: der})
	publicPEM = pem.EncodeToMemory(&pem.Block{Type: pemPublicKey, Bytes: publicDER})
	return privatePEM, publicPEM, nil
}

// GenerateEncryptionKey возвращает случайный 256-битный ключ в base64
func GenerateEncryptionKey() (string, error) {
	key := make([]byte, fieldKeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("ошибка генерации ключа: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
