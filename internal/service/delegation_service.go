package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Himess/delreg/internal/core"
	"github.com/Himess/delreg/internal/engine"
	"github.com/Himess/delreg/internal/registry"
)

const (
	ActionGrant  = "delegation.grant"
	ActionRevoke = "delegation.revoke"
)

// ErrNotOwner is returned when the requesting identity does not match
// the owner parameter. The registry itself is authorization-agnostic;
// this check belongs to the hosting layer, which is this service.
var ErrNotOwner = errors.New("requesting identity is not the owner")

// DelegationService is the hosting layer around the registry: it
// enforces that callers only manage their own delegations, consults the
// grant guards, and writes one audit entry per mutating operation.
type DelegationService struct {
	registry *registry.Registry
	guards   *engine.Engine
	auditor  core.Auditor
	store    core.DelegationStore
	clock    core.Clock
}

func NewDelegationService(
	reg *registry.Registry,
	guards *engine.Engine,
	auditor core.Auditor,
	store core.DelegationStore,
	clock core.Clock,
) *DelegationService {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &DelegationService{
		registry: reg,
		guards:   guards,
		auditor:  auditor,
		store:    store,
		clock:    clock,
	}
}

func (s *DelegationService) Grant(ctx context.Context, req GrantRequest) (*GrantResponse, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	auditEntry := core.AuditEntry{
		ID:                 reqID,
		Time:               s.clock.Now(),
		Action:             ActionGrant,
		RequestingIdentity: req.RequestingIdentity,
		Key: core.DelegationKey{
			Owner:    req.Owner,
			Delegate: req.Delegate,
			Scope:    req.Scope,
		},
		DurationUnits: req.DurationUnits,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for grant")
		}
	}()

	if req.RequestingIdentity != req.Owner {
		auditEntry.Error = "requesting identity is not the owner"
		return nil, httpError(http.StatusForbidden, ErrNotOwner)
	}

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("owner", string(req.Owner)).Str("scope", string(req.Scope))
	})

	// guards run before the registry so a denied grant never mutates state
	if s.guards != nil {
		deniedBy, err := s.guards.Check(engine.GrantEnv{
			Owner:    string(req.Owner),
			Delegate: string(req.Delegate),
			Scope:    string(req.Scope),
			Units:    req.DurationUnits,
		})
		if err != nil {
			auditEntry.Error = "grant denied by guard"
			auditEntry.GuardName = deniedBy
			return nil, httpError(http.StatusForbidden, err)
		}
	}

	expiresAt, err := s.registry.Grant(ctx, req.Owner, req.Delegate, req.Scope, req.DurationUnits)
	if err != nil {
		auditEntry.Error = err.Error()
		return nil, grantError(err)
	}

	auditEntry.Granted = true
	auditEntry.ExpiresAt = expiresAt

	return &GrantResponse{
		Key:       auditEntry.Key,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *DelegationService) Revoke(ctx context.Context, req RevokeRequest) error {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	auditEntry := core.AuditEntry{
		ID:                 reqID,
		Time:               s.clock.Now(),
		Action:             ActionRevoke,
		RequestingIdentity: req.RequestingIdentity,
		Key: core.DelegationKey{
			Owner:    req.Owner,
			Delegate: req.Delegate,
			Scope:    req.Scope,
		},
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for revoke")
		}
	}()

	if req.RequestingIdentity != req.Owner {
		auditEntry.Error = "requesting identity is not the owner"
		return httpError(http.StatusForbidden, ErrNotOwner)
	}

	if err := s.registry.Revoke(ctx, req.Owner, req.Delegate, req.Scope); err != nil {
		auditEntry.Error = err.Error()
		return grantError(err)
	}

	auditEntry.Granted = true
	return nil
}

// GetExpiry is a pure query; it is not audited.
func (s *DelegationService) GetExpiry(ctx context.Context, owner, delegate, scope core.Identity) (*ExpiryResponse, error) {
	expiresAt, err := s.registry.GetExpiry(ctx, owner, delegate, scope)
	if err != nil {
		return nil, httpError(http.StatusInternalServerError, err)
	}

	resp := &ExpiryResponse{
		Key: core.DelegationKey{Owner: owner, Delegate: delegate, Scope: scope},
	}
	if !expiresAt.IsZero() {
		resp.ExpiresAt = expiresAt
		resp.ExpiresAtUnix = expiresAt.Unix()
	}
	return resp, nil
}

// IsActive is a pure query; it is not audited.
func (s *DelegationService) IsActive(ctx context.Context, owner, delegate, scope core.Identity) (*ActiveResponse, error) {
	active, err := s.registry.IsActive(ctx, owner, delegate, scope)
	if err != nil {
		return nil, httpError(http.StatusInternalServerError, err)
	}
	return &ActiveResponse{
		Key:    core.DelegationKey{Owner: owner, Delegate: delegate, Scope: scope},
		Active: active,
	}, nil
}

// ListActive returns the currently active delegation records, for the
// admin surface.
func (s *DelegationService) ListActive(ctx context.Context) ([]core.DelegationRecord, error) {
	records, err := s.store.ListActive(ctx, s.clock.Now())
	if err != nil {
		return nil, httpError(http.StatusInternalServerError, fmt.Errorf("listing delegations: %w", err))
	}
	return records, nil
}

// grantError maps registry errors onto HTTP statuses for the presenter.
func grantError(err error) error {
	switch {
	case errors.Is(err, registry.ErrInvalidDelegate),
		errors.Is(err, registry.ErrInvalidDuration):
		return httpError(http.StatusBadRequest, err)
	case errors.Is(err, registry.ErrOwnerHasNoResource):
		return httpError(http.StatusNotFound, err)
	default:
		return httpError(http.StatusInternalServerError, err)
	}
}
