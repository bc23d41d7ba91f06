package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Himess/delreg/internal/api/presenter"
	"github.com/Himess/delreg/internal/audit"
	"github.com/Himess/delreg/internal/core"
	"github.com/Himess/delreg/internal/service"
)

// handleAdminAudit processes requests to retrieve audit log entries.
func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	querier, ok := s.auditor.(audit.Querier)
	if !ok {
		presenter.Error(w, r, "configured audit backend does not support queries", http.StatusNotImplemented)
		return
	}

	limit, err := parseLimit(r, 50)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid limit parameter")
		presenter.Error(w, r, "invalid limit parameter", http.StatusBadRequest)
		return
	}

	// filters
	q := r.URL.Query()
	filterCorrelationID := q.Get("correlation_id")
	filterOwner := q.Get("owner")
	filterDelegate := q.Get("delegate")
	filterScope := q.Get("scope")
	filterAction := q.Get("action")

	var entries []core.AuditEntry

	if filterCorrelationID != "" || filterOwner != "" || filterDelegate != "" || filterScope != "" || filterAction != "" {
		logger.Debug().Msg("applying audit log filters")
		entries, err = querier.Find(func(entry core.AuditEntry) bool {
			if filterCorrelationID != "" && entry.ID != filterCorrelationID {
				return false
			}
			if filterOwner != "" && string(entry.Key.Owner) != filterOwner {
				return false
			}
			if filterDelegate != "" && string(entry.Key.Delegate) != filterDelegate {
				return false
			}
			if filterScope != "" && string(entry.Key.Scope) != filterScope {
				return false
			}
			if filterAction != "" && entry.Action != filterAction {
				return false
			}
			return true
		}, limit)
	} else {
		logger.Debug().Msg("retrieving recent audit log entries")
		entries, err = querier.GetRecent(limit)
	}

	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve audit logs")
		presenter.Error(w, r, "failed to retrieve audit logs", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, entries, http.StatusOK)
}

// handleAdminDelegations lists the currently active delegation records.
func (s *Server) handleAdminDelegations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	records, err := s.delegations.ListActive(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve active delegations")
		presenter.Err(w, r, err, "failed to retrieve active delegations")
		return
	}

	presenter.JSON(w, r, records, http.StatusOK)
}

type ExplainPayload struct {
	Owner         string `json:"owner"`
	Delegate      string `json:"delegate"`
	Scope         string `json:"scope"`
	DurationUnits int    `json:"duration_units"`
}

// handleExplain evaluates the guard rules against a hypothetical grant
// without applying it.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload ExplainPayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode explain request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	trace, err := s.delegations.Explain(ctx, service.ExplainRequest{
		Owner:         core.Identity(payload.Owner),
		Delegate:      core.Identity(payload.Delegate),
		Scope:         core.Identity(payload.Scope),
		DurationUnits: payload.DurationUnits,
	})
	if err != nil {
		presenter.Err(w, r, err, "explain failed")
		return
	}

	presenter.JSON(w, r, trace, http.StatusOK)
}
