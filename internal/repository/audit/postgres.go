package audit

import (
	"context"

	"freegift/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Record(ctx context.Context, e domain.AuditEntry) error {
	const q = `
INSERT INTO gift_audit (cart_id, action, reason, applied, removed)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.pool.Exec(ctx, q, e.CartID, e.Action, e.Reason, e.Applied, e.Removed)
	return err
}

func (r *postgresRepo) ListByCart(ctx context.Context, cartID string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	const q = `
SELECT id, cart_id, action, reason, applied, removed, created_at
FROM gift_audit
WHERE cart_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, cartID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.CartID, &e.Action, &e.Reason, &e.Applied, &e.Removed, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
