package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"task-tracker/config"
	"task-tracker/internal/model"
	"task-tracker/internal/util"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// FindByLogin : ищет пользователя по логину (для аутентификации)
func (r *UserRepository) FindByLogin(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT id, uuid, username, password_hash, email, phone, created_at FROM users WHERE username = $1`
	var user model.User
	err := r.DB.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по логину", err)
	}
	return &user, nil
}

// FindByID : ищет пользователя по id
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, uuid, username, password_hash, email, phone, created_at FROM users WHERE id = $1`
	var user model.User
	err := r.DB.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// Scopes : все права пользователя через связующую таблицу user_rules
func (r *UserRepository) Scopes(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT r.name
		FROM rules r
		JOIN user_rules ur ON ur.rule_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`
	scopes := []string{}
	if err := r.DB.SelectContext(ctx, &scopes, query, userID); err != nil {
		return nil, util.LogError("[UserRepo] не удалось получить права пользователя", err)
	}
	return scopes, nil
}

// CreateUser : создаёт пользователя и привязывает права в одной транзакции
func (r *UserRepository) CreateUser(ctx context.Context, newUser *model.NewUser) (created *model.User, err error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось начать транзакцию", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	insertUser := `
		INSERT INTO users (uuid, username, password_hash, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uuid, username, created_at
	`
	created = &model.User{}
	err = tx.QueryRowxContext(ctx, insertUser,
		uuid.NewString(),
		newUser.Username,
		newUser.PasswordHash,
		newUser.Email,
		newUser.Phone,
	).Scan(&created.ID, &created.UUID, &created.Username, &created.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrUserExists
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	scopes := uniqueStrings(newUser.Scopes)
	if len(scopes) > 0 {
		var ruleIDs []int64
		err = tx.SelectContext(ctx, &ruleIDs, `SELECT id FROM rules WHERE name = ANY($1)`, pq.Array(scopes))
		if err != nil {
			return nil, util.LogError("[UserRepo] не удалось найти права", err)
		}
		if len(ruleIDs) != len(scopes) {
			err = fmt.Errorf("%w: %v", ErrUnknownScope, scopes)
			return nil, err
		}

		for _, ruleID := range ruleIDs {
			if _, err = tx.ExecContext(ctx, `INSERT INTO user_rules (user_id, rule_id) VALUES ($1, $2)`, created.ID, ruleID); err != nil {
				return nil, util.LogError("[UserRepo] не удалось привязать право", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, util.LogError("[UserRepo] не удалось зафиксировать транзакцию", err)
	}

	created.Email = newUser.Email
	created.Phone = newUser.Phone
	return created, nil
}

// UpdatePassword : меняет хэш пароля пользователя
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, newPasswordHash string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, newPasswordHash)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить пароль", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[UserRepo] не удалось проверить, обновлён ли пароль", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
