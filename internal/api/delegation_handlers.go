package api

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Himess/delreg/internal/api/presenter"
	"github.com/Himess/delreg/internal/core"
	"github.com/Himess/delreg/internal/service"
)

type GrantPayload struct {
	// Owner is the identity granting access. Must match the
	// requesting identity header.
	Owner string `json:"owner"`

	// Delegate is the identity receiving access.
	Delegate string `json:"delegate"`

	// Scope is the resource domain the delegation applies to.
	Scope string `json:"scope"`

	// DurationUnits is the grant length in configured units.
	DurationUnits int `json:"duration_units"`
}

type RevokePayload struct {
	Owner    string `json:"owner"`
	Delegate string `json:"delegate"`
	Scope    string `json:"scope"`
}

// handleGrant processes delegation grant requests.
func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload GrantPayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode grant request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	requesting := r.Header.Get(RequestingIdentityHeader)
	if requesting == "" {
		logger.Warn().Msg("missing requesting identity header")
		presenter.Error(w, r, "missing "+RequestingIdentityHeader+" header", http.StatusUnauthorized)
		return
	}

	result, err := s.delegations.Grant(ctx, service.GrantRequest{
		RequestingIdentity: core.Identity(requesting),
		Owner:              core.Identity(payload.Owner),
		Delegate:           core.Identity(payload.Delegate),
		Scope:              core.Identity(payload.Scope),
		DurationUnits:      payload.DurationUnits,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("delegation grant failed")
		presenter.Err(w, r, err, "delegation grant failed")
		return
	}

	logger.Info().
		Str("delegate", payload.Delegate).
		Time("expires_at", result.ExpiresAt).
		Msg("delegation granted")

	presenter.JSON(w, r, result, http.StatusCreated)
}

// handleRevoke processes delegation revocation requests.
func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload RevokePayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode revoke request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	requesting := r.Header.Get(RequestingIdentityHeader)
	if requesting == "" {
		logger.Warn().Msg("missing requesting identity header")
		presenter.Error(w, r, "missing "+RequestingIdentityHeader+" header", http.StatusUnauthorized)
		return
	}

	if err := s.delegations.Revoke(ctx, service.RevokeRequest{
		RequestingIdentity: core.Identity(requesting),
		Owner:              core.Identity(payload.Owner),
		Delegate:           core.Identity(payload.Delegate),
		Scope:              core.Identity(payload.Scope),
	}); err != nil {
		logger.Warn().Err(err).Msg("delegation revocation failed")
		presenter.Err(w, r, err, "delegation revocation failed")
		return
	}

	logger.Info().
		Str("delegate", payload.Delegate).
		Msg("delegation revoked")

	presenter.JSON(w, r, map[string]string{"status": "ok"}, http.StatusOK)
}

// keyFromQuery reads (owner, delegate, scope) from query parameters.
func keyFromQuery(r *http.Request) (owner, delegate, scope core.Identity, ok bool) {
	q := r.URL.Query()
	owner = core.Identity(q.Get("owner"))
	delegate = core.Identity(q.Get("delegate"))
	scope = core.Identity(q.Get("scope"))
	ok = owner != "" && delegate != "" && scope != ""
	return
}

// handleExpiry returns the stored expiry for a delegation key, or a
// zero expiry when no record exists.
func (s *Server) handleExpiry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, delegate, scope, ok := keyFromQuery(r)
	if !ok {
		presenter.Error(w, r, "owner, delegate and scope query parameters are required", http.StatusBadRequest)
		return
	}

	result, err := s.delegations.GetExpiry(ctx, owner, delegate, scope)
	if err != nil {
		presenter.Err(w, r, err, "expiry lookup failed")
		return
	}

	presenter.JSON(w, r, result, http.StatusOK)
}

// handleActive reports whether a delegation is currently honored,
// evaluated against the server clock.
func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, delegate, scope, ok := keyFromQuery(r)
	if !ok {
		presenter.Error(w, r, "owner, delegate and scope query parameters are required", http.StatusBadRequest)
		return
	}

	result, err := s.delegations.IsActive(ctx, owner, delegate, scope)
	if err != nil {
		presenter.Err(w, r, err, "active lookup failed")
		return
	}

	presenter.JSON(w, r, result, http.StatusOK)
}

// parseLimit parses a limit query parameter with a default.
func parseLimit(r *http.Request, def int) (int, error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return def, nil
	}
	return strconv.Atoi(limitStr)
}
