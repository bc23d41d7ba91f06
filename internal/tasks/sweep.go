package tasks

import (
	"context"
	"time"

	"github.com/Himess/delreg/internal/core"
	"github.com/Himess/delreg/internal/logging"
)

// SweepTaskName is the registered name of the expired-delegation purge.
const SweepTaskName = "sweep-expired"

// NewSweepTask returns the task that purges expired delegation records
// from the store. Expired records are otherwise kept so that queries
// can still distinguish "expired" from "never granted"; the sweep is
// how an operator reclaims them.
func NewSweepTask(store core.DelegationStore, clock core.Clock, interval time.Duration) TaskDefinition {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return TaskDefinition{
		Name:     SweepTaskName,
		Interval: interval,
		Handler: func(ctx context.Context, logger logging.InternalLogger) error {
			deleted, err := store.DeleteExpired(ctx, clock.Now())
			if err != nil {
				return err
			}
			logger.Info("purged %d expired delegation record(s)", deleted)
			return nil
		},
	}
}
