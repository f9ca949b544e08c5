package security_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"task-tracker/config"
	"task-tracker/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyStore_LoadsSupportedKeyTypes(t *testing.T) {
	cases := map[string]string{
		security.KeyTypeRSA:     "RS256",
		security.KeyTypeECDSA:   "ES256",
		security.KeyTypeEd25519: "EdDSA",
	}

	for keyType, alg := range cases {
		t.Run(keyType, func(t *testing.T) {
			ks := newTestKeyStore(t, keyType)

			assert.Equal(t, alg, ks.SigningMethod().Alg())
			assert.NotNil(t, ks.PrivateKey())
			assert.NotNil(t, ks.PublicKey())
		})
	}
}

func TestKeyStore_WrongPassword(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t, security.KeyTypeECDSA)

	_, err := security.NewKeyStore(&config.KeysConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      publicPath,
		PrivateKeyPassword: "wrong password",
	})

	assert.ErrorIs(t, err, security.ErrKeyLoadFailure)
}

func TestKeyStore_MissingFiles(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t, security.KeyTypeECDSA)
	missing := filepath.Join(t.TempDir(), "nope.pem")

	_, err := security.NewKeyStore(&config.KeysConfig{
		PrivateKeyPath:     missing,
		PublicKeyPath:      publicPath,
		PrivateKeyPassword: testKeyPassword,
	})
	assert.ErrorIs(t, err, security.ErrKeyLoadFailure)

	_, err = security.NewKeyStore(&config.KeysConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      missing,
		PrivateKeyPassword: testKeyPassword,
	})
	assert.ErrorIs(t, err, security.ErrKeyLoadFailure)
}

func TestKeyStore_RejectsUnencryptedPrivateKey(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(privatePath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(publicPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER}), 0o644))

	_, err = security.NewKeyStore(&config.KeysConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      publicPath,
		PrivateKeyPassword: testKeyPassword,
	})
	assert.ErrorIs(t, err, security.ErrKeyLoadFailure)
}

func TestKeyStore_RejectsMismatchedPublicKey(t *testing.T) {
	privatePath, _ := writeKeyPair(t, security.KeyTypeECDSA)
	_, otherPublicPath := writeKeyPair(t, security.KeyTypeECDSA)

	_, err := security.NewKeyStore(&config.KeysConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      otherPublicPath,
		PrivateKeyPassword: testKeyPassword,
	})
	assert.ErrorIs(t, err, security.ErrKeyLoadFailure)
}

func TestKeyStore_RejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a key"), 0o600))
	_, publicPath := writeKeyPair(t, security.KeyTypeECDSA)

	_, err := security.NewKeyStore(&config.KeysConfig{
		PrivateKeyPath:     garbage,
		PublicKeyPath:      publicPath,
		PrivateKeyPassword: testKeyPassword,
	})
	assert.ErrorIs(t, err, security.ErrKeyLoadFailure)
}

func TestKeyStore_InitializeIsIdempotent(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t, security.KeyTypeEd25519)

	ks := &security.KeyStore{}
	require.NoError(t, ks.Initialize(privatePath, publicPath, testKeyPassword))
	first := ks.PublicKey()

	otherPrivate, otherPublic := writeKeyPair(t, security.KeyTypeECDSA)
	require.NoError(t, ks.Initialize(otherPrivate, otherPublic, testKeyPassword))
	assert.Equal(t, first, ks.PublicKey())
	assert.Equal(t, "EdDSA", ks.SigningMethod().Alg())
}

func TestKeyStore_FailedInitializeStaysFailed(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t, security.KeyTypeECDSA)

	ks := &security.KeyStore{}
	err := ks.Initialize(privatePath, publicPath, "wrong password")
	require.ErrorIs(t, err, security.ErrKeyLoadFailure)

	err = ks.Initialize(privatePath, publicPath, testKeyPassword)
	assert.ErrorIs(t, err, security.ErrKeyLoadFailure)
	assert.Nil(t, ks.PrivateKey())
}
