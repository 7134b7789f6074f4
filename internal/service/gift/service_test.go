package gift

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"freegift/internal/domain"
)

type stubRuleStore struct {
	rule *domain.GiftRule
	err  error
}

func (s *stubRuleStore) GiftRule(_ context.Context) (*domain.GiftRule, error) {
	return s.rule, s.err
}

type stubCartStore struct {
	cart    *domain.Cart
	cartErr error

	addErr    error
	removeErr error
	setQtyErr error

	calls       []string
	addVariant  string
	removedIDs  []string
	setQtyLine  string
	setQtyValue int
}

func (s *stubCartStore) Cart(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.cartErr
}

func (s *stubCartStore) AddGiftLine(_ context.Context, _, variantID string) error {
	s.calls = append(s.calls, "add")
	s.addVariant = variantID
	return s.addErr
}

func (s *stubCartStore) RemoveLines(_ context.Context, _ string, lineIDs []string) error {
	s.calls = append(s.calls, "remove")
	s.removedIDs = lineIDs
	return s.removeErr
}

func (s *stubCartStore) SetLineQuantity(_ context.Context, _, lineID string, quantity int) error {
	s.calls = append(s.calls, "set_quantity")
	s.setQtyLine = lineID
	s.setQtyValue = quantity
	return s.setQtyErr
}

type stubAudit struct {
	entries []domain.AuditEntry
	err     error
}

func (s *stubAudit) Record(_ context.Context, e domain.AuditEntry) error {
	s.entries = append(s.entries, e)
	return s.err
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func enabledRule() *domain.GiftRule {
	return &domain.GiftRule{GiftVariantID: "V1", MinSubtotalCents: 5000, Enabled: true}
}

func gift(id, variantID string, qty int) domain.CartLine {
	return domain.CartLine{
		ID:            id,
		Quantity:      qty,
		MerchandiseID: variantID,
		Attributes:    map[string]string{domain.GiftAttributeKey: "true"},
	}
}

func TestApplyAddsGiftWhenEligible(t *testing.T) {
	carts := &stubCartStore{cart: &domain.Cart{
		ID:    "cart-1",
		Lines: []domain.CartLine{{ID: "l1", Quantity: 1, TotalCents: 6000, MerchandiseID: "M1"}},
	}}
	audit := &stubAudit{}
	svc := New(&stubRuleStore{rule: enabledRule()}, carts, audit, testLogger())

	result, err := svc.Apply(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Applied || result.Removed {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Reason != "Gift applied successfully" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
	if carts.addVariant != "V1" {
		t.Fatalf("expected add for V1, got %q", carts.addVariant)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "add" {
		t.Fatalf("unexpected audit entries: %+v", audit.entries)
	}
}

func TestApplyIdempotentWhenGiftCorrect(t *testing.T) {
	carts := &stubCartStore{cart: &domain.Cart{
		ID: "cart-1",
		Lines: []domain.CartLine{
			{ID: "l1", Quantity: 1, TotalCents: 6000, MerchandiseID: "M1"},
			gift("g1", "V1", 1),
		},
	}}
	svc := New(&stubRuleStore{rule: enabledRule()}, carts, nil, testLogger())

	result, err := svc.Apply(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied || result.Removed {
		t.Fatalf("expected no-op, got %+v", result)
	}
	if len(carts.calls) != 0 {
		t.Fatalf("expected no mutations, got %v", carts.calls)
	}
	if !strings.Contains(result.Reason, "already in cart") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestApplyFixesQuantity(t *testing.T) {
	carts := &stubCartStore{cart: &domain.Cart{
		ID: "cart-1",
		Lines: []domain.CartLine{
			{ID: "l1", Quantity: 2, TotalCents: 6000, MerchandiseID: "M1"},
			gift("g1", "V1", 3),
		},
	}}
	svc := New(&stubRuleStore{rule: enabledRule()}, carts, nil, testLogger())

	result, err := svc.Apply(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Applied || result.Reason != "Gift quantity updated to 1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if carts.setQtyLine != "g1" || carts.setQtyValue != 1 {
		t.Fatalf("unexpected quantity update: %q %d", carts.setQtyLine, carts.setQtyValue)
	}
}

func TestApplyDemotionStripsGifts(t *testing.T) {
	carts := &stubCartStore{cart: &domain.Cart{
		ID: "cart-1",
		Lines: []domain.CartLine{
			{ID: "l1", Quantity: 1, TotalCents: 4000, MerchandiseID: "M1"},
			gift("g1", "V1", 1),
		},
	}}
	svc := New(&stubRuleStore{rule: enabledRule()}, carts, nil, testLogger())

	result, err := svc.Apply(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied || !result.Removed {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(carts.removedIDs) != 1 || carts.removedIDs[0] != "g1" {
		t.Fatalf("unexpected removals: %v", carts.removedIDs)
	}
}

func TestApplyRemovesBeforeAdding(t *testing.T) {
	carts := &stubCartStore{cart: &domain.Cart{
		ID: "cart-1",
		Lines: []domain.CartLine{
			{ID: "l1", Quantity: 1, TotalCents: 6000, MerchandiseID: "M1"},
			gift("g1", "V9", 1),
		},
	}}
	svc := New(&stubRuleStore{rule: enabledRule()}, carts, nil, testLogger())

	result, err := svc.Apply(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Applied || !result.Removed {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(carts.calls) != 2 || carts.calls[0] != "remove" || carts.calls[1] != "add" {
		t.Fatalf("unexpected call order: %v", carts.calls)
	}
}

func TestApplyMutationFailureShortCircuits(t *testing.T) {
	carts := &stubCartStore{
		cart: &domain.Cart{
			ID:    "cart-1",
			Lines: []domain.CartLine{{ID: "l1", Quantity: 1, TotalCents: 6000, MerchandiseID: "M1"}},
		},
		addErr: errors.New("cartLinesAdd: Variant is sold out"),
	}
	audit := &stubAudit{}
	svc := New(&stubRuleStore{rule: enabledRule()}, carts, audit, testLogger())

	result, err := svc.Apply(context.Background(), "cart-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Applied || !strings.Contains(result.Reason, "sold out") {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "error" {
		t.Fatalf("unexpected audit entries: %+v", audit.entries)
	}
}

func TestApplyCartNotFound(t *testing.T) {
	carts := &stubCartStore{cartErr: domain.ErrCartNotFound}
	svc := New(&stubRuleStore{rule: enabledRule()}, carts, nil, testLogger())

	result, err := svc.Apply(context.Background(), "missing")
	if !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
	if result.Applied || !strings.Contains(result.Reason, "cart not found") {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestApplyRuleStoreUnavailable(t *testing.T) {
	svc := New(&stubRuleStore{err: domain.ErrUpstreamUnavailable}, &stubCartStore{}, nil, testLogger())

	_, err := svc.Apply(context.Background(), "cart-1")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestApplyAuditFailureIsSwallowed(t *testing.T) {
	carts := &stubCartStore{cart: &domain.Cart{
		ID:    "cart-1",
		Lines: []domain.CartLine{{ID: "l1", Quantity: 1, TotalCents: 6000, MerchandiseID: "M1"}},
	}}
	svc := New(&stubRuleStore{rule: enabledRule()}, carts, &stubAudit{err: errors.New("db down")}, testLogger())

	result, err := svc.Apply(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Applied {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCartStatusDisabledRule(t *testing.T) {
	svc := New(&stubRuleStore{rule: &domain.GiftRule{GiftVariantID: "V1", Enabled: false}}, &stubCartStore{}, nil, testLogger())

	status, err := svc.CartStatus(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Enabled {
		t.Fatalf("expected disabled status, got %+v", status)
	}
}

func TestCartStatusReportsRemaining(t *testing.T) {
	carts := &stubCartStore{cart: &domain.Cart{
		ID:           "cart-1",
		CurrencyCode: "USD",
		Lines: []domain.CartLine{
			{ID: "l1", Quantity: 1, TotalCents: 4000, MerchandiseID: "M1"},
			gift("g1", "V1", 1),
		},
	}}
	svc := New(&stubRuleStore{rule: enabledRule()}, carts, nil, testLogger())

	status, err := svc.CartStatus(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Enabled || status.Eligible {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.SubtotalCents != 4000 || status.RemainingCents != 1000 {
		t.Fatalf("unexpected amounts: %+v", status)
	}
	if status.CurrencyCode != "USD" {
		t.Fatalf("unexpected currency: %+v", status)
	}
}

func TestCartStatusEligible(t *testing.T) {
	carts := &stubCartStore{cart: &domain.Cart{
		ID:    "cart-1",
		Lines: []domain.CartLine{{ID: "l1", Quantity: 1, TotalCents: 6000, MerchandiseID: "M1"}},
	}}
	svc := New(&stubRuleStore{rule: enabledRule()}, carts, nil, testLogger())

	status, err := svc.CartStatus(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Eligible || status.RemainingCents != 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
}
