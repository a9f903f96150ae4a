// Package creditsclient is a client-side mirror of the server credit ledger.
//
// It exists purely for display: progress bars, upgrade prompts, disabling a
// send button. The cached balance may be stale or wrong (concurrent tabs,
// lost refetches), and that is acceptable because the server-side entitlement
// gate is the only enforcement point. Nothing here writes to the ledger.
package creditsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"language-coach-server/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Client caches the credit balance served by GET /api/v1/credits.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	mu      sync.Mutex
	balance *domain.CreditBalance
}

// Option is a functional option for Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a mirror client for the given API base URL and bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Refetch replaces the cached balance with the server's current read model.
func (c *Client) Refetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/credits", nil)
	if err != nil {
		return fmt.Errorf("failed to build credits request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch credits: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("credits request returned status %d", resp.StatusCode)
	}

	var balance domain.CreditBalance
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		return fmt.Errorf("failed to decode credits response: %w", err)
	}

	c.mu.Lock()
	c.balance = &balance
	c.mu.Unlock()
	return nil
}

// RemainingCredits returns the cached text-credit balance, 0 before the
// first successful Refetch.
func (c *Client) RemainingCredits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balance == nil {
		return 0
	}
	return c.balance.RemainingCredits
}

// RemainingAudioCredits returns the cached audio-credit balance.
func (c *Client) RemainingAudioCredits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balance == nil {
		return 0
	}
	return c.balance.RemainingAudioCredits
}

// IsExpired reports whether the cached trial window has closed.
func (c *Client) IsExpired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance != nil && c.balance.IsExpired
}

// HasUnlimitedCredits reports whether the cached balance belongs to a paid plan.
func (c *Client) HasUnlimitedCredits() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance != nil && c.balance.IsPaidPlan
}

// UseCredit optimistically decrements the local text-credit count so UI can
// update before the next Refetch. The authoritative deduction has already
// happened server-side inside the gate; this never writes anywhere.
func (c *Client) UseCredit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balance != nil && c.balance.RemainingCredits > 0 {
		c.balance.RemainingCredits--
	}
}

// UseAudioCredit optimistically decrements both local counters, matching the
// server's dual deduction for audio requests.
func (c *Client) UseAudioCredit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balance == nil {
		return
	}
	if c.balance.RemainingCredits > 0 {
		c.balance.RemainingCredits--
	}
	if c.balance.RemainingAudioCredits > 0 {
		c.balance.RemainingAudioCredits--
	}
}
