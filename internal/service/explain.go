package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Himess/delreg/internal/engine"
)

// Explain evaluates the guard rules against a hypothetical grant
// without applying it, reporting each guard's outcome.
func (s *DelegationService) Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	env := engine.GrantEnv{
		Owner:    string(req.Owner),
		Delegate: string(req.Delegate),
		Scope:    string(req.Scope),
		Units:    req.DurationUnits,
	}

	resp := &ExplainResponse{
		CorrelationID: reqID,
		Allowed:       true,
	}
	if s.guards == nil {
		logger.Debug().Msg("no guards configured, explain trivially allows")
		return resp, nil
	}

	resp.Guards = s.guards.Trace(env)
	for _, result := range resp.Guards {
		if !result.Skipped && !result.Passed {
			resp.Allowed = false
		}
	}

	return resp, nil
}
