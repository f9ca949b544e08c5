package security_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"task-tracker/config"
	"task-tracker/internal/repository"
	"task-tracker/internal/security"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testKeyPassword = "correct horse battery staple"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// writeKeyPair пишет во временный каталог пару ключей и возвращает пути к ним
func writeKeyPair(t *testing.T, keyType string) (string, string) {
	t.Helper()

	privatePEM, publicPEM, err := security.GenerateKeyPair(keyType, testKeyPassword)
	require.NoError(t, err)

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private_key.pem")
	publicPath := filepath.Join(dir, "public_key.pem")
	require.NoError(t, os.WriteFile(privatePath, privatePEM, 0o600))
	require.NoError(t, os.WriteFile(publicPath, publicPEM, 0o644))

	return privatePath, publicPath
}

func newTestKeyStore(t *testing.T, keyType string) *security.KeyStore {
	t.Helper()

	privatePath, publicPath := writeKeyPair(t, keyType)
	ks, err := security.NewKeyStore(&config.KeysConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      publicPath,
		PrivateKeyPassword: testKeyPassword,
	})
	require.NoError(t, err)
	return ks
}

var testJWTConfig = config.JWTConfig{
	AccessTokenTTL:  "15m",
	RefreshTokenTTL: "168h",
}

type jwtFixture struct {
	service  *security.JWTService
	sessions *repository.SessionRepository
	redis    *miniredis.Miniredis
	clock    *testClock
	keys     *security.KeyStore
}

func newJWTFixture(t *testing.T) *jwtFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := repository.NewSessionRepository(&config.RedisClient{Client: client})
	keys := newTestKeyStore(t, security.KeyTypeECDSA)
	clock := newTestClock()

	svc, err := security.NewJWTService(keys, sessions, &testJWTConfig, security.WithClock(clock.Now))
	require.NoError(t, err)

	return &jwtFixture{
		service:  svc,
		sessions: sessions,
		redis:    mr,
		clock:    clock,
		keys:     keys,
	}
}
