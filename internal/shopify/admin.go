package shopify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"freegift/internal/config"
	"freegift/internal/domain"
)

// Metafield namespace and keys under which the gift rule is stored on the
// app installation. All values are single_line_text_field strings.
const (
	metafieldNamespace = "gift_rules"
	keyGiftVariantID   = "gift_variant_id"
	keyMinCartSubtotal = "min_cart_subtotal"
	keyEnableRule      = "enable_rule"
)

// AdminClient talks to the Admin GraphQL API: rule metafield reads/writes
// and automatic discount registration.
type AdminClient struct {
	gql        gqlClient
	functionID string
}

// NewAdmin builds an Admin API client. A nil httpClient gets a default with
// the configured timeout.
func NewAdmin(cfg config.ShopifyConfig, httpClient *http.Client) *AdminClient {
	return &AdminClient{
		gql:        newGQLClient(cfg, "/admin/api/%s/graphql.json", "X-Shopify-Access-Token", cfg.AdminToken, httpClient),
		functionID: cfg.DiscountFunctionID,
	}
}

type appInstallationData struct {
	CurrentAppInstallation *struct {
		ID         string `json:"id"`
		Metafields struct {
			Nodes []struct {
				Key   string `json:"key"`
				Value string `json:"value"`
			} `json:"nodes"`
		} `json:"metafields"`
	} `json:"currentAppInstallation"`
}

// GiftRule reads the stored rule. It returns (nil, nil) when no rule has
// been saved yet; callers treat a nil rule as "not configured".
func (c *AdminClient) GiftRule(ctx context.Context) (*domain.GiftRule, error) {
	const query = `
query giftRule {
	currentAppInstallation {
		id
		metafields(namespace: "gift_rules", first: 10) {
			nodes { key value }
		}
	}
}`

	var data appInstallationData
	if err := c.gql.do(ctx, query, nil, &data); err != nil {
		return nil, err
	}
	if data.CurrentAppInstallation == nil {
		return nil, fmt.Errorf("%w: app not installed", domain.ErrUpstreamUnavailable)
	}

	values := make(map[string]string, len(data.CurrentAppInstallation.Metafields.Nodes))
	for _, node := range data.CurrentAppInstallation.Metafields.Nodes {
		values[node.Key] = node.Value
	}
	if strings.TrimSpace(values[keyGiftVariantID]) == "" {
		return nil, nil
	}

	rule := &domain.GiftRule{
		GiftVariantID: strings.TrimSpace(values[keyGiftVariantID]),
		Enabled:       parseBoolish(values[keyEnableRule]),
	}
	if raw := strings.TrimSpace(values[keyMinCartSubtotal]); raw != "" {
		cents, err := domain.ParseCents(raw)
		if err != nil {
			return nil, fmt.Errorf("stored %s: %w", keyMinCartSubtotal, err)
		}
		rule.MinSubtotalCents = cents
	}
	return rule, nil
}

// SaveGiftRule persists the rule as metafields on the app installation.
func (c *AdminClient) SaveGiftRule(ctx context.Context, rule domain.GiftRule) error {
	const idQuery = `
query appInstallationID {
	currentAppInstallation { id }
}`

	var data appInstallationData
	if err := c.gql.do(ctx, idQuery, nil, &data); err != nil {
		return err
	}
	if data.CurrentAppInstallation == nil {
		return fmt.Errorf("%w: app not installed", domain.ErrUpstreamUnavailable)
	}
	ownerID := data.CurrentAppInstallation.ID

	const mutation = `
mutation saveGiftRule($metafields: [MetafieldsSetInput!]!) {
	metafieldsSet(metafields: $metafields) {
		metafields { id }
		userErrors { field message }
	}
}`

	metafields := []map[string]any{
		metafieldInput(ownerID, keyGiftVariantID, rule.GiftVariantID),
		metafieldInput(ownerID, keyMinCartSubtotal, domain.FormatCents(rule.MinSubtotalCents)),
		metafieldInput(ownerID, keyEnableRule, strconv.FormatBool(rule.Enabled)),
	}

	var result struct {
		MetafieldsSet struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"metafieldsSet"`
	}
	if err := c.gql.do(ctx, mutation, map[string]any{"metafields": metafields}, &result); err != nil {
		return err
	}
	return userErrorsToError("metafieldsSet", result.MetafieldsSet.UserErrors)
}

// RegisterAutomaticDiscount creates the automatic app discount backed by the
// deployed discount function. The platform rejects duplicates, which callers
// treat as a best-effort outcome.
func (c *AdminClient) RegisterAutomaticDiscount(ctx context.Context, title string) error {
	if c.functionID == "" {
		return fmt.Errorf("%w: discount function id not configured", domain.ErrUpstreamUnavailable)
	}

	const mutation = `
mutation registerGiftDiscount($automaticAppDiscount: DiscountAutomaticAppInput!) {
	discountAutomaticAppCreate(automaticAppDiscount: $automaticAppDiscount) {
		automaticAppDiscount { discountId }
		userErrors { field message }
	}
}`

	input := map[string]any{
		"title":      title,
		"functionId": c.functionID,
		"startsAt":   time.Now().UTC().Format(time.RFC3339),
	}

	var result struct {
		DiscountAutomaticAppCreate struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"discountAutomaticAppCreate"`
	}
	if err := c.gql.do(ctx, mutation, map[string]any{"automaticAppDiscount": input}, &result); err != nil {
		return err
	}
	return userErrorsToError("discountAutomaticAppCreate", result.DiscountAutomaticAppCreate.UserErrors)
}

func metafieldInput(ownerID, key, value string) map[string]any {
	return map[string]any{
		"ownerId":   ownerID,
		"namespace": metafieldNamespace,
		"key":       key,
		"type":      "single_line_text_field",
		"value":     value,
	}
}

func parseBoolish(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on":
		return true
	}
	return false
}
