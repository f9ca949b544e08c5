package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-tracker/config"
	"task-tracker/internal/util"

	"github.com/redis/go-redis/v9"
)

const revokeBatchSize = 100

// SessionRepository : реестр выданных refresh-токенов в Redis.
// Запись user:{id}:token:{jti} живёт ровно столько, сколько refresh-токен.
type SessionRepository struct {
	client *config.RedisClient
}

func NewSessionRepository(rdb *config.RedisClient) *SessionRepository {
	return &SessionRepository{rdb}
}

// Put сохраняет refresh-токен с TTL, равным его времени жизни
func (r *SessionRepository) Put(ctx context.Context, userID int64, tokenID, token string, ttl time.Duration) error {
	if ttl < time.Second {
		return fmt.Errorf("[SessionRepo] TTL сессии меньше секунды: %s", ttl)
	}

	cmd := r.client.Client.Set(ctx, r.key(userID, tokenID), token, ttl)
	if err := cmd.Err(); err != nil {
		return util.LogError("[SessionRepo] ошибка сохранения сессии в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("[SessionRepo] неожиданный ответ Redis: %s", cmd.Val())
	}
	return nil
}

func (r *SessionRepository) Exists(ctx context.Context, userID int64, tokenID string) (bool, error) {
	n, err := r.client.Client.Exists(ctx, r.key(userID, tokenID)).Result()
	if err != nil {
		return false, util.LogError("[SessionRepo] ошибка проверки сессии в Redis", err)
	}
	return n == 1, nil
}

// Take забирает сессию одной командой GETDEL: проверка и удаление
// происходят атомарно на стороне Redis.
func (r *SessionRepository) Take(ctx context.Context, userID int64, tokenID string) (bool, error) {
	err := r.client.Client.GetDel(ctx, r.key(userID, tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, util.LogError("[SessionRepo] ошибка удаления сессии из Redis", err)
	}
	return true, nil
}

// RevokeAll удаляет все сессии пользователя и возвращает их количество.
// Ключи сначала собираются полным проходом SCAN и только потом удаляются:
// удаление во время обхода сдвигает курсор, и часть ключей пропускается.
func (r *SessionRepository) RevokeAll(ctx context.Context, userID int64) (int, error) {
	pattern := fmt.Sprintf("user:%d:token:*", userID)
	iter := r.client.Client.Scan(ctx, 0, pattern, revokeBatchSize).Iterator()

	seen := make(map[string]struct{})
	var keys []string
	for iter.Next(ctx) {
		key := iter.Val()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return 0, util.LogError("[SessionRepo] ошибка обхода сессий пользователя", err)
	}

	revoked := 0
	for start := 0; start < len(keys); start += revokeBatchSize {
		end := min(start+revokeBatchSize, len(keys))
		n, err := r.client.Client.Unlink(ctx, keys[start:end]...).Result()
		if err != nil {
			return revoked, util.LogError("[SessionRepo] ошибка удаления сессий пользователя", err)
		}
		revoked += int(n)
	}

	return revoked, nil
}

func (r *SessionRepository) key(userID int64, tokenID string) string {
	return fmt.Sprintf("user:%d:token:%s", userID, tokenID)
}
