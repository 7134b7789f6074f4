// Package rule handles the merchant settings form: validation, metafield
// persistence, and best-effort registration of the automatic discount.
package rule

import (
	"context"
	"fmt"
	"log"
	"strings"

	"freegift/internal/domain"
)

// DiscountTitle is the merchant-visible name of the automatic discount.
const DiscountTitle = "Free gift"

// ValidationError marks a rejected settings submission; the HTTP layer maps
// it to a 400.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

func invalidf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

type Service struct {
	store     ruleStore
	discounts discountRegistrar
	logger    *log.Logger
}

type ruleStore interface {
	GiftRule(ctx context.Context) (*domain.GiftRule, error)
	SaveGiftRule(ctx context.Context, rule domain.GiftRule) error
}

type discountRegistrar interface {
	RegisterAutomaticDiscount(ctx context.Context, title string) error
}

func New(store ruleStore, discounts discountRegistrar, logger *log.Logger) *Service {
	return &Service{store: store, discounts: discounts, logger: logger}
}

// Get returns the stored rule, or nil when none has been saved yet.
func (s *Service) Get(ctx context.Context) (*domain.GiftRule, error) {
	return s.store.GiftRule(ctx)
}

// SaveInput carries the raw settings form fields. MinCartSubtotal is a
// decimal string; EnableRule accepts the form's "on" as well as "true".
type SaveInput struct {
	GiftVariantID   string `json:"giftVariantId"`
	MinCartSubtotal string `json:"minCartSubtotal"`
	EnableRule      string `json:"enableRule"`
}

// Save validates and persists the rule, then attempts to register the
// automatic discount. Registration failure is logged, never surfaced: the
// rule save must not be blocked by it.
func (s *Service) Save(ctx context.Context, in SaveInput) (*domain.GiftRule, error) {
	variantID := strings.TrimSpace(in.GiftVariantID)
	if variantID == "" {
		return nil, invalidf("giftVariantId is required")
	}

	var minCents int64
	if raw := strings.TrimSpace(in.MinCartSubtotal); raw != "" {
		parsed, err := domain.ParseCents(raw)
		if err != nil {
			return nil, invalidf("minCartSubtotal must be a number")
		}
		minCents = parsed
	}
	if minCents < 0 {
		return nil, invalidf("minCartSubtotal must not be negative")
	}

	enabled := false
	switch strings.ToLower(strings.TrimSpace(in.EnableRule)) {
	case "on", "true":
		enabled = true
	}

	rule := domain.GiftRule{
		GiftVariantID:    variantID,
		MinSubtotalCents: minCents,
		Enabled:          enabled,
	}
	if err := s.store.SaveGiftRule(ctx, rule); err != nil {
		return nil, err
	}

	if rule.Enabled && s.discounts != nil {
		if err := s.discounts.RegisterAutomaticDiscount(ctx, DiscountTitle); err != nil && s.logger != nil {
			s.logger.Printf("register automatic discount: %v", err)
		}
	}
	return &rule, nil
}
