package audit

import (
	"context"

	"freegift/internal/domain"
)

type Repository interface {
	Record(ctx context.Context, e domain.AuditEntry) error
	ListByCart(ctx context.Context, cartID string, limit int) ([]domain.AuditEntry, error)
}
