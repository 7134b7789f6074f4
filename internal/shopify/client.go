// Package shopify wraps the platform's Admin and Storefront GraphQL APIs.
// Both clients share the same request plumbing; only the endpoint path and
// the auth header differ.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"freegift/internal/config"
	"freegift/internal/domain"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// UserError is the platform's mutation-level error shape. Messages are
// surfaced verbatim as the failure reason.
type UserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

func userErrorsToError(op string, errs []UserError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("%s: %s", op, strings.Join(msgs, "; "))
}

type gqlClient struct {
	endpoint    string
	authHeader  string
	token       string
	httpClient  *http.Client
	unavailable error
}

func newGQLClient(cfg config.ShopifyConfig, path, authHeader, token string, httpClient *http.Client) gqlClient {
	c := gqlClient{authHeader: authHeader, token: token, httpClient: httpClient}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}

	shopDomain := strings.TrimSpace(cfg.ShopDomain)
	switch {
	case shopDomain == "":
		c.unavailable = fmt.Errorf("%w: shop domain not configured", domain.ErrUpstreamUnavailable)
	case token == "":
		c.unavailable = fmt.Errorf("%w: %s token not configured", domain.ErrUpstreamUnavailable, authHeader)
	case cfg.APIVersion == "":
		c.unavailable = fmt.Errorf("%w: api version not configured", domain.ErrUpstreamUnavailable)
	}
	if c.unavailable != nil {
		return c
	}

	if !strings.HasPrefix(shopDomain, "http://") && !strings.HasPrefix(shopDomain, "https://") {
		shopDomain = "https://" + shopDomain
	}
	c.endpoint = strings.TrimRight(shopDomain, "/") + fmt.Sprintf(path, cfg.APIVersion)
	return c
}

// do posts one GraphQL request and decodes the data payload into out.
// Transport failures and non-200 statuses map to ErrUpstreamUnavailable;
// GraphQL-level errors are passed through as-is.
func (c *gqlClient) do(ctx context.Context, query string, variables map[string]any, out any) error {
	if c.unavailable != nil {
		return c.unavailable
	}

	payload, err := json.Marshal(graphQLRequest{Query: strings.TrimSpace(query), Variables: variables})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.authHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", domain.ErrUpstreamUnavailable, strings.TrimSpace(resp.Status))
	}

	var decoded graphQLResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		msgs := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}
	if out == nil {
		return nil
	}
	if len(decoded.Data) == 0 {
		return fmt.Errorf("graphql response missing data")
	}
	return json.Unmarshal(decoded.Data, out)
}
