// Package reconciler computes the mutations needed to converge a cart on the
// gift rule's target state: at most one gift line, present iff the cart is
// eligible, quantity exactly 1. It is pure decision logic; executing the
// resulting plan against the platform is the gift service's job.
package reconciler

import (
	"fmt"

	"freegift/internal/domain"
)

// Plan describes the mutations one reconciliation pass should issue.
// Removals are executed before the add or quantity update so a wrong-variant
// gift never survives alongside the configured one.
type Plan struct {
	RemoveLineIDs     []string
	AddVariantID      string
	SetQuantityLineID string

	Applied bool
	Removed bool
	Reason  string
}

// IsNoOp reports whether the plan issues no mutations.
func (p Plan) IsNoOp() bool {
	return len(p.RemoveLineIDs) == 0 && p.AddVariantID == "" && p.SetQuantityLineID == ""
}

// Result converts the plan's outcome flags into the caller-facing shape.
func (p Plan) Result() domain.ReconcileResult {
	return domain.ReconcileResult{Applied: p.Applied, Removed: p.Removed, Reason: p.Reason}
}

// EligibilitySubtotal sums the cart's non-gift line totals. Gift lines are
// always excluded so a stale priced gift line cannot pay for its own
// eligibility, and a zeroed one cannot lower it.
func EligibilitySubtotal(cart domain.Cart) int64 {
	var total int64
	for _, line := range cart.Lines {
		if line.IsGift() {
			continue
		}
		total += line.TotalCents
	}
	return total
}

// Compute decides what a cart needs to match the rule. It never issues
// remote calls and is idempotent: running the plan and computing again
// yields a no-op.
func Compute(rule *domain.GiftRule, cart domain.Cart) Plan {
	if !rule.Configured() {
		return Plan{Reason: "Gift rule not configured"}
	}
	if !rule.Enabled {
		return Plan{Reason: "Gift rule is disabled"}
	}

	subtotal := EligibilitySubtotal(cart)

	var giftLines []domain.CartLine
	for _, line := range cart.Lines {
		if line.IsGift() {
			giftLines = append(giftLines, line)
		}
	}

	if subtotal < rule.MinSubtotalCents {
		// Demotion path: falling below the threshold strips existing gifts
		// no matter how they got there.
		if len(giftLines) == 0 {
			return Plan{Reason: fmt.Sprintf(
				"Cart subtotal %s is less than minimum %s",
				domain.FormatCents(subtotal), domain.FormatCents(rule.MinSubtotalCents))}
		}
		ids := make([]string, 0, len(giftLines))
		for _, line := range giftLines {
			ids = append(ids, line.ID)
		}
		return Plan{
			RemoveLineIDs: ids,
			Removed:       true,
			Reason: fmt.Sprintf(
				"Gift removed: cart subtotal %s is less than minimum %s",
				domain.FormatCents(subtotal), domain.FormatCents(rule.MinSubtotalCents)),
		}
	}

	// Eligible. First gift line carrying the configured variant survives;
	// every other gift line (wrong variant or duplicate) is removed.
	var correct *domain.CartLine
	var removeIDs []string
	for i := range giftLines {
		line := giftLines[i]
		if correct == nil && line.MerchandiseID == rule.GiftVariantID {
			correct = &giftLines[i]
			continue
		}
		removeIDs = append(removeIDs, line.ID)
	}

	switch {
	case correct == nil:
		return Plan{
			RemoveLineIDs: removeIDs,
			AddVariantID:  rule.GiftVariantID,
			Applied:       true,
			Removed:       len(removeIDs) > 0,
			Reason:        "Gift applied successfully",
		}
	case correct.Quantity > 1:
		return Plan{
			RemoveLineIDs:     removeIDs,
			SetQuantityLineID: correct.ID,
			Applied:           true,
			Removed:           len(removeIDs) > 0,
			Reason:            "Gift quantity updated to 1",
		}
	case len(removeIDs) > 0:
		return Plan{
			RemoveLineIDs: removeIDs,
			Removed:       true,
			Reason:        "Removed duplicate gift lines",
		}
	default:
		return Plan{Reason: "Gift already in cart"}
	}
}
