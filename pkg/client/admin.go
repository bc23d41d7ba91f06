package client

import (
	"context"

	"github.com/Himess/delreg/internal/api"
	"github.com/Himess/delreg/internal/core"
	"github.com/Himess/delreg/internal/service"
)

type ListAuditsOpts struct {
	Limit uint

	CorrelationID string
	Owner         string
	Delegate      string
	Scope         string
	Action        string
}

// ListAudits retrieves the latest audit entries from the server, limited to the specified number.
func (c *Client) ListAudits(ctx context.Context, opts ListAuditsOpts) ([]core.AuditEntry, string, error) {
	ub := c.url().setPath(api.ListAuditsRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.CorrelationID != "" {
		ub = ub.addQueryParam("correlation_id", opts.CorrelationID)
	}
	if opts.Owner != "" {
		ub = ub.addQueryParam("owner", opts.Owner)
	}
	if opts.Delegate != "" {
		ub = ub.addQueryParam("delegate", opts.Delegate)
	}
	if opts.Scope != "" {
		ub = ub.addQueryParam("scope", opts.Scope)
	}
	if opts.Action != "" {
		ub = ub.addQueryParam("action", opts.Action)
	}
	var resp []core.AuditEntry
	correlation, err := c.get(ctx, ub.build(), &resp)
	return resp, correlation, err
}

// ListActiveDelegations retrieves all delegations whose expiry lies in the future.
func (c *Client) ListActiveDelegations(ctx context.Context) ([]core.DelegationRecord, string, error) {
	var resp []core.DelegationRecord
	correlation, err := c.get(ctx, c.url().
		setPath(api.ListDelegationsRoute).
		build(), &resp)
	return resp, correlation, err
}

// Explain evaluates the grant guards against a hypothetical grant
// without applying it and returns the per-guard trace.
func (c *Client) Explain(
	ctx context.Context,
	opts api.ExplainPayload,
) (*service.ExplainResponse, string, error) {
	var resp service.ExplainResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.ExplainRoute).
		build(), opts, &resp)
	return &resp, correlation, err
}
