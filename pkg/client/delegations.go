package client

import (
	"context"
	"fmt"

	"github.com/Himess/delreg/internal/api"
	"github.com/Himess/delreg/internal/service"
)

// Grant creates or overwrites a delegation and returns the computed
// expiry. The client's requesting identity must equal owner.
func (c *Client) Grant(
	ctx context.Context,
	owner, delegate, scope string,
	durationUnits int,
) (*service.GrantResponse, string, error) {
	payload := api.GrantPayload{
		Owner:         owner,
		Delegate:      delegate,
		Scope:         scope,
		DurationUnits: durationUnits,
	}

	var result service.GrantResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.GrantRoute).
		build(), payload, &result)
	if err != nil {
		return nil, correlation, fmt.Errorf("granting delegation: %w", err)
	}
	return &result, correlation, nil
}

// Revoke removes a delegation. Revoking an absent delegation succeeds.
func (c *Client) Revoke(ctx context.Context, owner, delegate, scope string) (string, error) {
	payload := api.RevokePayload{
		Owner:    owner,
		Delegate: delegate,
		Scope:    scope,
	}

	correlation, err := c.post(ctx, c.url().
		setPath(api.RevokeRoute).
		build(), payload, nil)
	if err != nil {
		return correlation, fmt.Errorf("revoking delegation: %w", err)
	}
	return correlation, nil
}

// GetExpiry returns the stored expiry for a delegation key. A zero
// expiry means the delegation was never granted or has been revoked.
func (c *Client) GetExpiry(ctx context.Context, owner, delegate, scope string) (*service.ExpiryResponse, error) {
	var result service.ExpiryResponse
	_, err := c.get(ctx, c.url().
		setPath(api.ExpiryRoute).
		addQueryParam("owner", owner).
		addQueryParam("delegate", delegate).
		addQueryParam("scope", scope).
		build(), &result)
	if err != nil {
		return nil, fmt.Errorf("querying expiry: %w", err)
	}
	return &result, nil
}

// IsActive reports whether a delegation is currently honored.
func (c *Client) IsActive(ctx context.Context, owner, delegate, scope string) (bool, error) {
	var result service.ActiveResponse
	_, err := c.get(ctx, c.url().
		setPath(api.ActiveRoute).
		addQueryParam("owner", owner).
		addQueryParam("delegate", delegate).
		addQueryParam("scope", scope).
		build(), &result)
	if err != nil {
		return false, fmt.Errorf("querying active state: %w", err)
	}
	return result.Active, nil
}
