package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkoval/kadrovik/internal/domain"
)

// ApprovalRepo — read-only доступ к заявкам на согласование.
// Таблицей владеет CRUD-часть системы.
type ApprovalRepo struct {
	pool *pgxpool.Pool
}

// NewApprovalRepo создаёт новый ApprovalRepo.
func NewApprovalRepo(pool *pgxpool.Pool) *ApprovalRepo {
	return &ApprovalRepo{pool: pool}
}

// ListAging возвращает заявки в «ожидающих» статусах старше olderThan.
// Свежие первыми; limit — защита от неограниченного роста выборки.
func (r *ApprovalRepo) ListAging(ctx context.Context, now time.Time, olderThan time.Duration, limit int) ([]domain.ApprovalRequest, error) {
	query := `
		SELECT id, title, status, approver_lane, approver_role, created_at
		FROM approval_requests
		WHERE status = ANY($1)
		  AND created_at <= $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	statuses := make([]string, len(domain.PendingApprovalStatuses))
	for i, s := range domain.PendingApprovalStatuses {
		statuses[i] = string(s)
	}

	rows, err := r.pool.Query(ctx, query, statuses, now.Add(-olderThan), limit)
	if err != nil {
		return nil, fmt.Errorf("list aging approvals: %w", err)
	}
	defer rows.Close()

	var requests []domain.ApprovalRequest
	for rows.Next() {
		var a domain.ApprovalRequest
		var lane, role *string
		if err := rows.Scan(&a.ID, &a.Title, &a.Status, &lane, &role, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan approval request: %w", err)
		}
		if lane != nil {
			a.ApproverLane = *lane
		}
		if role != nil {
			a.ApproverRole = *role
		}
		requests = append(requests, a)
	}
	return requests, rows.Err()
}
