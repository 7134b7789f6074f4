package domain

import "time"

// GiftAttributeKey marks a cart line as a promotional gift. Checkout's
// discount function keys off the same attribute.
const GiftAttributeKey = "_is_gift"

// GiftRule is the merchant-configured promotion rule. It is persisted as app
// metafields on the platform and read on every reconciliation request.
type GiftRule struct {
	GiftVariantID    string `json:"giftVariantId"`
	MinSubtotalCents int64  `json:"minSubtotalCents"`
	Enabled          bool   `json:"enabled"`
}

// Configured reports whether the rule names a gift variant.
func (r *GiftRule) Configured() bool {
	return r != nil && r.GiftVariantID != ""
}

// Cart is a remote snapshot of a platform cart. The platform owns the state;
// this code only reads and mutates it through the Storefront API.
type Cart struct {
	ID            string
	SubtotalCents int64
	CurrencyCode  string
	Lines         []CartLine
}

type CartLine struct {
	ID            string
	Quantity      int
	TotalCents    int64
	MerchandiseID string
	Attributes    map[string]string
}

// IsGift reports whether the line carries the gift marker attribute.
func (l CartLine) IsGift() bool {
	return l.Attributes[GiftAttributeKey] == "true"
}

// ReconcileResult is the outcome of one reconciliation attempt, returned to
// the caller of the apply endpoint. It is never persisted.
type ReconcileResult struct {
	Applied bool   `json:"applied"`
	Removed bool   `json:"removed,omitempty"`
	Reason  string `json:"reason"`
}

// AuditEntry records one reconciliation attempt for merchant debugging.
type AuditEntry struct {
	ID        int64     `json:"id"`
	CartID    string    `json:"cartId"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason"`
	Applied   bool      `json:"applied"`
	Removed   bool      `json:"removed"`
	CreatedAt time.Time `json:"createdAt"`
}
