package reminder

import (
	"context"
	"fmt"
	"log/slog"
)

// defaultFallbackCap — максимум получателей при fallback на роль.
const defaultFallbackCap = 50

// Directory — справочник пользователей и составов отделов.
// Реализуется repo.MemberRepo.
type Directory interface {
	ListLaneMembers(ctx context.Context, lane string) ([]int64, error)
	ListRoleHolders(ctx context.Context, role string, limit int) ([]int64, error)
}

// Target — абстрактный адресат напоминания: отдел и грубая роль
// на случай, когда у отдела нет явного состава.
type Target struct {
	Lane string
	Role string
}

// Resolver превращает адресата в конкретный список пользователей.
type Resolver struct {
	dir         Directory
	logger      *slog.Logger
	fallbackCap int
}

// NewResolver создаёт новый Resolver.
func NewResolver(dir Directory, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		dir:         dir,
		logger:      logger,
		fallbackCap: defaultFallbackCap,
	}
}

// Resolve возвращает получателей для адресата.
//
// Основной путь — явный состав отдела. Если он пуст, fallback:
// до fallbackCap носителей роли. Fallback намеренно грубый и ограниченный —
// лучше приблизительный сигнал, чем молча никому.
func (r *Resolver) Resolve(ctx context.Context, target Target) ([]int64, error) {
	if target.Lane != "" {
		members, err := r.dir.ListLaneMembers(ctx, target.Lane)
		if err != nil {
			return nil, fmt.Errorf("list lane members: %w", err)
		}
		if len(members) > 0 {
			return members, nil
		}
	}

	if target.Role == "" {
		return nil, nil
	}

	holders, err := r.dir.ListRoleHolders(ctx, target.Role, r.fallbackCap)
	if err != nil {
		return nil, fmt.Errorf("list role holders: %w", err)
	}

	if len(holders) > 0 && target.Lane != "" {
		r.logger.Debug("lane has no explicit members, falling back to role",
			"lane", target.Lane,
			"role", target.Role,
			"recipients", len(holders),
		)
	}

	return holders, nil
}
