package sim

import (
	"context"
	"log/slog"
	"time"
)

// SnapshotPublisher receives every snapshot an AutoStepper produces,
// e.g. the websocket hub. Publish must not block.
type SnapshotPublisher interface {
	Publish(Snapshot)
}

// AutoStepper paces the simulation from the outside: a background
// goroutine that steps at a fixed wall-clock interval. It is an
// external pacer only — all serialization lives in the Simulator.
type AutoStepper struct {
	interval  time.Duration
	sim       *Simulator
	publisher SnapshotPublisher
	logger    *slog.Logger
}

// NewAutoStepper creates an AutoStepper. publisher may be nil.
func NewAutoStepper(interval time.Duration, sim *Simulator, publisher SnapshotPublisher, logger *slog.Logger) *AutoStepper {
	return &AutoStepper{
		interval:  interval,
		sim:       sim,
		publisher: publisher,
		logger:    logger,
	}
}

// Start launches the background goroutine. It stops when ctx is
// cancelled.
func (a *AutoStepper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap, err := a.sim.Step()
				if err != nil {
					a.logger.Error("auto step failed", slog.String("error", err.Error()))
					continue
				}
				if a.publisher != nil {
					a.publisher.Publish(snap)
				}
			}
		}
	}()
}
