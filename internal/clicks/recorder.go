// Package clicks implements the click-recording pipeline. Recording is a
// side effect of redirects and must never delay or fail them, so every
// recorder here degrades to dropping events instead of returning hard
// failures upstream.
package clicks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/nahpet/shortener/internal/model"
	"github.com/nahpet/shortener/internal/observability"
)

// Store is the persistence contract for click events.
type Store interface {
	Insert(ctx context.Context, click *model.ClickEvent) error
}

// StoreRecorder writes clicks to the database behind a circuit breaker, so
// a struggling database sheds click writes instead of stalling redirects.
type StoreRecorder struct {
	store   Store
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewStoreRecorder(store Store, logger *slog.Logger) *StoreRecorder {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "click-store",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return &StoreRecorder{store: store, breaker: breaker, logger: logger}
}

// Record persists one click event, assigning its id.
func (r *StoreRecorder) Record(ctx context.Context, click *model.ClickEvent) error {
	if click.ID == uuid.Nil {
		click.ID = uuid.New()
	}
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.store.Insert(ctx, click)
	})
	return err
}

// FanoutRecorder sends each click to every downstream recorder and counts
// outcomes. It succeeds if at least one downstream accepted the event.
type FanoutRecorder struct {
	recorders []Recorder
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// Recorder appends one click event.
type Recorder interface {
	Record(ctx context.Context, click *model.ClickEvent) error
}

func NewFanoutRecorder(metrics *observability.Metrics, logger *slog.Logger, recorders ...Recorder) *FanoutRecorder {
	return &FanoutRecorder{recorders: recorders, metrics: metrics, logger: logger}
}

func (f *FanoutRecorder) Record(ctx context.Context, click *model.ClickEvent) error {
	var firstErr error
	delivered := false
	for _, r := range f.recorders {
		if err := r.Record(ctx, click); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			f.logger.WarnContext(ctx, "click recorder failed",
				slog.String("link_id", click.LinkID.String()),
				slog.Any("error", err))
			continue
		}
		delivered = true
	}
	if delivered {
		f.metrics.ClicksRecorded.Add(ctx, 1)
		return nil
	}
	f.metrics.ClicksDropped.Add(ctx, 1)
	return firstErr
}
