package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MemberRepo — read-only доступ к справочнику пользователей
// и составам отделов. Таблицами владеет CRUD-часть системы.
type MemberRepo struct {
	pool *pgxpool.Pool
}

// NewMemberRepo создаёт новый MemberRepo.
func NewMemberRepo(pool *pgxpool.Pool) *MemberRepo {
	return &MemberRepo{pool: pool}
}

// ListLaneMembers возвращает id активных пользователей,
// явно приписанных к отделу.
func (r *MemberRepo) ListLaneMembers(ctx context.Context, lane string) ([]int64, error) {
	query := `
		SELECT m.user_id
		FROM lane_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.lane = $1 AND u.active = true
		ORDER BY m.user_id
	`
	rows, err := r.pool.Query(ctx, query, lane)
	if err != nil {
		return nil, fmt.Errorf("list lane members: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// ListRoleHolders возвращает до limit id активных пользователей с ролью.
// Используется как ограниченный fallback, когда у отдела нет явного состава.
func (r *MemberRepo) ListRoleHolders(ctx context.Context, role string, limit int) ([]int64, error) {
	query := `
		SELECT id
		FROM users
		WHERE role = $1 AND active = true
		ORDER BY id
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, role, limit)
	if err != nil {
		return nil, fmt.Errorf("list role holders: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
