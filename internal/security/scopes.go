package security

import (
	"context"
	"fmt"
	"strings"

	"task-tracker/internal/util"
)

// ScopeSource возвращает актуальный набор прав пользователя
type ScopeSource interface {
	Scopes(ctx context.Context, userID int64) ([]string, error)
}

// ScopeAuthorizer проверяет права из токена. Если в токене чего-то
// не хватает, права перечитываются из источника: их могли выдать
// уже после выпуска токена.
type ScopeAuthorizer struct {
	source ScopeSource
}

func NewScopeAuthorizer(source ScopeSource) *ScopeAuthorizer {
	return &ScopeAuthorizer{source: source}
}

func (a *ScopeAuthorizer) Authorize(ctx context.Context, required, tokenScopes []string, userID int64) error {
	if len(required) == 0 {
		return nil
	}

	missing := difference(required, tokenScopes)
	if len(missing) == 0 {
		return nil
	}

	current, err := a.source.Scopes(ctx, userID)
	if err != nil {
		return util.LogError("[ScopeAuthorizer] не удалось получить права пользователя", err)
	}

	if stillMissing := difference(missing, current); len(stillMissing) > 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientScope, strings.Join(stillMissing, ", "))
	}
	return nil
}

// difference возвращает элементы from, которых нет в subtract, сохраняя порядок
func difference(from, subtract []string) []string {
	present := make(map[string]struct{}, len(subtract))
	for _, s := range subtract {
		present[s] = struct{}{}
	}

	var out []string
	seen := make(map[string]struct{}, len(from))
	for _, s := range from {
		if _, ok := present[s]; ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
