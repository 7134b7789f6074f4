package shopify

import (
	"context"
	"fmt"
	"net/http"

	"freegift/internal/config"
	"freegift/internal/domain"
)

// StorefrontClient talks to the Storefront GraphQL API: cart reads and the
// line mutations the reconciler needs.
type StorefrontClient struct {
	gql gqlClient
}

// NewStorefront builds a Storefront API client. A nil httpClient gets a
// default with the configured timeout.
func NewStorefront(cfg config.ShopifyConfig, httpClient *http.Client) *StorefrontClient {
	return &StorefrontClient{
		gql: newGQLClient(cfg, "/api/%s/graphql.json", "X-Shopify-Storefront-Access-Token", cfg.StorefrontToken, httpClient),
	}
}

type moneyV2 struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type cartData struct {
	Cart *struct {
		ID   string `json:"id"`
		Cost struct {
			SubtotalAmount moneyV2 `json:"subtotalAmount"`
		} `json:"cost"`
		Lines struct {
			Nodes []struct {
				ID       string `json:"id"`
				Quantity int    `json:"quantity"`
				Cost     struct {
					TotalAmount moneyV2 `json:"totalAmount"`
				} `json:"cost"`
				Merchandise struct {
					ID string `json:"id"`
				} `json:"merchandise"`
				Attributes []struct {
					Key   string `json:"key"`
					Value string `json:"value"`
				} `json:"attributes"`
			} `json:"nodes"`
		} `json:"lines"`
	} `json:"cart"`
}

// Cart fetches a cart snapshot: subtotal plus the first 250 lines with cost,
// merchandise and attributes. Returns ErrCartNotFound when the platform
// knows no cart for the id.
func (c *StorefrontClient) Cart(ctx context.Context, id string) (*domain.Cart, error) {
	const query = `
query cart($id: ID!) {
	cart(id: $id) {
		id
		cost { subtotalAmount { amount currencyCode } }
		lines(first: 250) {
			nodes {
				id
				quantity
				cost { totalAmount { amount currencyCode } }
				merchandise { ... on ProductVariant { id } }
				attributes { key value }
			}
		}
	}
}`

	var data cartData
	if err := c.gql.do(ctx, query, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Cart == nil {
		return nil, domain.ErrCartNotFound
	}

	subtotal, err := domain.ParseCents(data.Cart.Cost.SubtotalAmount.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse cart subtotal: %w", err)
	}

	cart := &domain.Cart{
		ID:            data.Cart.ID,
		SubtotalCents: subtotal,
		CurrencyCode:  data.Cart.Cost.SubtotalAmount.CurrencyCode,
		Lines:         make([]domain.CartLine, 0, len(data.Cart.Lines.Nodes)),
	}
	for _, node := range data.Cart.Lines.Nodes {
		total, err := domain.ParseCents(node.Cost.TotalAmount.Amount)
		if err != nil {
			return nil, fmt.Errorf("parse line %s total: %w", node.ID, err)
		}
		attrs := make(map[string]string, len(node.Attributes))
		for _, attr := range node.Attributes {
			attrs[attr.Key] = attr.Value
		}
		cart.Lines = append(cart.Lines, domain.CartLine{
			ID:            node.ID,
			Quantity:      node.Quantity,
			TotalCents:    total,
			MerchandiseID: node.Merchandise.ID,
			Attributes:    attrs,
		})
	}
	return cart, nil
}

// AddGiftLine adds one unit of the variant flagged with the gift attribute.
func (c *StorefrontClient) AddGiftLine(ctx context.Context, cartID, variantID string) error {
	const mutation = `
mutation addGiftLine($cartId: ID!, $lines: [CartLineInput!]!) {
	cartLinesAdd(cartId: $cartId, lines: $lines) {
		cart { id }
		userErrors { field message }
	}
}`

	lines := []map[string]any{{
		"merchandiseId": variantID,
		"quantity":      1,
		"attributes": []map[string]string{
			{"key": domain.GiftAttributeKey, "value": "true"},
		},
	}}

	var result struct {
		CartLinesAdd struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"cartLinesAdd"`
	}
	if err := c.gql.do(ctx, mutation, map[string]any{"cartId": cartID, "lines": lines}, &result); err != nil {
		return err
	}
	return userErrorsToError("cartLinesAdd", result.CartLinesAdd.UserErrors)
}

// RemoveLines removes the given line ids from the cart.
func (c *StorefrontClient) RemoveLines(ctx context.Context, cartID string, lineIDs []string) error {
	const mutation = `
mutation removeLines($cartId: ID!, $lineIds: [ID!]!) {
	cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
		cart { id }
		userErrors { field message }
	}
}`

	var result struct {
		CartLinesRemove struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"cartLinesRemove"`
	}
	if err := c.gql.do(ctx, mutation, map[string]any{"cartId": cartID, "lineIds": lineIDs}, &result); err != nil {
		return err
	}
	return userErrorsToError("cartLinesRemove", result.CartLinesRemove.UserErrors)
}

// SetLineQuantity updates one line to the given quantity.
func (c *StorefrontClient) SetLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error {
	const mutation = `
mutation setLineQuantity($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
	cartLinesUpdate(cartId: $cartId, lines: $lines) {
		cart { id }
		userErrors { field message }
	}
}`

	lines := []map[string]any{{"id": lineID, "quantity": quantity}}

	var result struct {
		CartLinesUpdate struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"cartLinesUpdate"`
	}
	if err := c.gql.do(ctx, mutation, map[string]any{"cartId": cartID, "lines": lines}, &result); err != nil {
		return err
	}
	return userErrorsToError("cartLinesUpdate", result.CartLinesUpdate.UserErrors)
}
