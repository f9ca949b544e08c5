package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"sync"

	"task-tracker/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/youmark/pkcs8"
)

const (
	pemEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
	pemPublicKey           = "PUBLIC KEY"
	minRSABits             = 2048
)

// KeyStore хранит пару ключей подписи на всё время жизни процесса.
// Ключи загружаются один раз при старте и после этого не меняются.
type KeyStore struct {
	once          sync.Once
	err           error
	privateKey    crypto.Signer
	publicKey     crypto.PublicKey
	signingMethod jwt.SigningMethod
}

// NewKeyStore загружает ключи из файлов, указанных в конфигурации.
// Ошибка означает, что процесс не должен начинать обслуживать запросы.
func NewKeyStore(cfg *config.KeysConfig) (*KeyStore, error) {
	ks := &KeyStore{}
	if err := ks.Initialize(cfg.PrivateKeyPath, cfg.PublicKeyPath, cfg.PrivateKeyPassword); err != nil {
		return nil, err
	}
	return ks, nil
}

// Initialize загружает ключи. Повторные вызовы ничего не делают
// и возвращают результат первой загрузки.
func (ks *KeyStore) Initialize(privateKeyPath, publicKeyPath, password string) error {
	ks.once.Do(func() {
		ks.err = ks.load(privateKeyPath, publicKeyPath, password)
	})
	return ks.err
}

func (ks *KeyStore) PrivateKey() crypto.Signer {
	return ks.privateKey
}

func (ks *KeyStore) PublicKey() crypto.PublicKey {
	return ks.publicKey
}

func (ks *KeyStore) SigningMethod() jwt.SigningMethod {
	return ks.signingMethod
}

func (ks *KeyStore) load(privateKeyPath, publicKeyPath, password string) error {
	privateData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return fmt.Errorf("%w: чтение приватного ключа: %w", ErrKeyLoadFailure, err)
	}
	privateKey, err := parsePrivateKey(privateData, password)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrKeyLoadFailure, err)
	}

	publicData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return fmt.Errorf("%w: чтение публичного ключа: %w", ErrKeyLoadFailure, err)
	}
	publicKey, err := parsePublicKey(publicData)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrKeyLoadFailure, err)
	}

	derived, ok := privateKey.Public().(interface{ Equal(crypto.PublicKey) bool })
	if !ok || !derived.Equal(publicKey) {
		return fmt.Errorf("%w: публичный ключ не соответствует приватному", ErrKeyLoadFailure)
	}

	method, err := signingMethodFor(publicKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrKeyLoadFailure, err)
	}

	ks.privateKey = privateKey
	ks.publicKey = publicKey
	ks.signingMethod = method

	logrus.WithField("alg", method.Alg()).Info("ключи подписи загружены")
	return nil
}

func parsePrivateKey(data []byte, password string) (crypto.Signer, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("приватный ключ не в формате PEM")
	}
	if block.Type != pemEncryptedPrivateKey {
		return nil, fmt.Errorf("приватный ключ должен быть зашифрован паролем (%s), получен %q", pemEncryptedPrivateKey, block.Type)
	}
	if password == "" {
		return nil, fmt.Errorf("не задан пароль приватного ключа")
	}

	key, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, []byte(password))
	if err != nil {
		return nil, fmt.Errorf("не удалось расшифровать приватный ключ: %w", err)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("неподдерживаемый тип приватного ключа %T", key)
	}
	return signer, nil
}

func parsePublicKey(data []byte) (crypto.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemPublicKey {
		return nil, fmt.Errorf("публичный ключ должен быть в формате PEM (%s)", pemPublicKey)
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать публичный ключ: %w", err)
	}
	return key, nil
}

func signingMethodFor(key crypto.PublicKey) (jwt.SigningMethod, error) {
	switch k := key.(type) {
	case *rsa.PublicKey:
		if k.N.BitLen() < minRSABits {
			return nil, fmt.Errorf("RSA ключ короче %d бит", minRSABits)
		}
		return jwt.SigningMethodRS256, nil
	case *ecdsa.PublicKey:
		switch k.Curve {
		case elliptic.P256():
			return jwt.SigningMethodES256, nil
		case elliptic.P384():
			return jwt.SigningMethodES384, nil
		case elliptic.P521():
			return jwt.SigningMethodES512, nil
		}
		return nil, fmt.Errorf("неподдерживаемая кривая %s", k.Curve.Params().Name)
	case ed25519.PublicKey:
		return jwt.SigningMethodEdDSA, nil
	default:
		return nil, fmt.Errorf("неподдерживаемый тип публичного ключа %T", key)
	}
}
