// Package gift orchestrates one reconciliation attempt: load the rule, read
// the cart, compute the plan, execute its mutations in order. There is no
// rollback; a failure mid-plan leaves partial state the next invocation
// heals, since planning is idempotent.
package gift

import (
	"context"
	"log"
	"strings"

	"freegift/internal/domain"
	"freegift/internal/reconciler"
)

type Service struct {
	rules  ruleStore
	carts  cartStore
	audit  auditRecorder
	logger *log.Logger
}

type ruleStore interface {
	GiftRule(ctx context.Context) (*domain.GiftRule, error)
}

type cartStore interface {
	Cart(ctx context.Context, id string) (*domain.Cart, error)
	AddGiftLine(ctx context.Context, cartID, variantID string) error
	RemoveLines(ctx context.Context, cartID string, lineIDs []string) error
	SetLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
}

type auditRecorder interface {
	Record(ctx context.Context, e domain.AuditEntry) error
}

// New builds the service. audit may be nil, which disables the audit trail.
func New(rules ruleStore, carts cartStore, audit auditRecorder, logger *log.Logger) *Service {
	return &Service{rules: rules, carts: carts, audit: audit, logger: logger}
}

// Apply reconciles the cart's gift line against the stored rule. The
// returned result always carries a reason; the error is non-nil only for
// remote failures, which the HTTP layer maps to 503/500.
func (s *Service) Apply(ctx context.Context, cartID string) (domain.ReconcileResult, error) {
	cartID = strings.TrimSpace(cartID)

	rule, err := s.rules.GiftRule(ctx)
	if err != nil {
		return s.fail(ctx, cartID, err)
	}

	cart, err := s.carts.Cart(ctx, cartID)
	if err != nil {
		return s.fail(ctx, cartID, err)
	}

	plan := reconciler.Compute(rule, *cart)

	// Removals first so a wrong-variant gift is gone before the correct one
	// is added or adjusted. Two mutations may occur in one call.
	if len(plan.RemoveLineIDs) > 0 {
		if err := s.carts.RemoveLines(ctx, cartID, plan.RemoveLineIDs); err != nil {
			return s.fail(ctx, cartID, err)
		}
	}
	switch {
	case plan.AddVariantID != "":
		if err := s.carts.AddGiftLine(ctx, cartID, plan.AddVariantID); err != nil {
			return s.fail(ctx, cartID, err)
		}
	case plan.SetQuantityLineID != "":
		if err := s.carts.SetLineQuantity(ctx, cartID, plan.SetQuantityLineID, 1); err != nil {
			return s.fail(ctx, cartID, err)
		}
	}

	result := plan.Result()
	s.record(ctx, cartID, planAction(plan), result)
	return result, nil
}

// Status reports eligibility progress for the banner.
type Status struct {
	Enabled          bool   `json:"enabled"`
	Eligible         bool   `json:"eligible"`
	SubtotalCents    int64  `json:"subtotalCents"`
	MinSubtotalCents int64  `json:"minSubtotalCents"`
	RemainingCents   int64  `json:"remainingCents"`
	CurrencyCode     string `json:"currencyCode"`
}

// CartStatus computes the banner state for a cart using the same
// gift-excluding subtotal as the reconciler.
func (s *Service) CartStatus(ctx context.Context, cartID string) (Status, error) {
	rule, err := s.rules.GiftRule(ctx)
	if err != nil {
		return Status{}, err
	}
	if !rule.Configured() || !rule.Enabled {
		return Status{}, nil
	}

	cart, err := s.carts.Cart(ctx, strings.TrimSpace(cartID))
	if err != nil {
		return Status{}, err
	}

	subtotal := reconciler.EligibilitySubtotal(*cart)
	status := Status{
		Enabled:          true,
		Eligible:         subtotal >= rule.MinSubtotalCents,
		SubtotalCents:    subtotal,
		MinSubtotalCents: rule.MinSubtotalCents,
		CurrencyCode:     cart.CurrencyCode,
	}
	if !status.Eligible {
		status.RemainingCents = rule.MinSubtotalCents - subtotal
	}
	return status, nil
}

func (s *Service) fail(ctx context.Context, cartID string, err error) (domain.ReconcileResult, error) {
	result := domain.ReconcileResult{Reason: err.Error()}
	s.record(ctx, cartID, "error", result)
	return result, err
}

// record is best-effort: a broken audit store never fails a reconciliation.
func (s *Service) record(ctx context.Context, cartID, action string, result domain.ReconcileResult) {
	if s.audit == nil {
		return
	}
	entry := domain.AuditEntry{
		CartID:  cartID,
		Action:  action,
		Reason:  result.Reason,
		Applied: result.Applied,
		Removed: result.Removed,
	}
	if err := s.audit.Record(ctx, entry); err != nil && s.logger != nil {
		s.logger.Printf("record audit entry for cart %s: %v", cartID, err)
	}
}

func planAction(p reconciler.Plan) string {
	switch {
	case p.AddVariantID != "":
		return "add"
	case p.SetQuantityLineID != "":
		return "update_quantity"
	case len(p.RemoveLineIDs) > 0:
		return "remove"
	}
	return "none"
}
