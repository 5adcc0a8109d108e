package clicks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahpet/shortener/internal/model"
	"github.com/nahpet/shortener/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	mu      sync.Mutex
	inserts []model.ClickEvent
	err     error
}

func (s *fakeStore) Insert(ctx context.Context, click *model.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.inserts = append(s.inserts, *click)
	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserts)
}

func TestStoreRecorder_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and persists", func(t *testing.T) {
		store := &fakeStore{}
		recorder := NewStoreRecorder(store, testLogger())

		click := &model.ClickEvent{LinkID: uuid.New(), IP: "203.0.113.9"}
		require.NoError(t, recorder.Record(ctx, click))

		assert.NotEqual(t, uuid.Nil, click.ID)
		assert.Equal(t, 1, store.count())
	})

	t.Run("opens the breaker after consecutive failures", func(t *testing.T) {
		store := &fakeStore{err: errors.New("db down")}
		recorder := NewStoreRecorder(store, testLogger())

		click := &model.ClickEvent{LinkID: uuid.New()}
		for range 5 {
			assert.Error(t, recorder.Record(ctx, click))
		}

		err := recorder.Record(ctx, click)
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)

		// Subsequent calls fail fast without touching the store.
		before := store.count()
		_ = recorder.Record(ctx, click)
		assert.Equal(t, before, store.count())
	})
}

func TestFanoutRecorder_Record(t *testing.T) {
	ctx := context.Background()
	metrics, err := observability.NewMetrics("test")
	require.NoError(t, err)

	click := func() *model.ClickEvent {
		return &model.ClickEvent{ID: uuid.New(), LinkID: uuid.New(), IP: "203.0.113.9"}
	}

	t.Run("delivers to every downstream", func(t *testing.T) {
		a, b := &fakeStore{}, &fakeStore{}
		fanout := NewFanoutRecorder(metrics, testLogger(),
			NewStoreRecorder(a, testLogger()), NewStoreRecorder(b, testLogger()))

		require.NoError(t, fanout.Record(ctx, click()))
		assert.Equal(t, 1, a.count())
		assert.Equal(t, 1, b.count())
	})

	t.Run("succeeds when one downstream fails", func(t *testing.T) {
		ok, broken := &fakeStore{}, &fakeStore{err: errors.New("queue down")}
		fanout := NewFanoutRecorder(metrics, testLogger(),
			NewStoreRecorder(broken, testLogger()), NewStoreRecorder(ok, testLogger()))

		require.NoError(t, fanout.Record(ctx, click()))
		assert.Equal(t, 1, ok.count())
	})

	t.Run("fails when every downstream fails", func(t *testing.T) {
		broken := &fakeStore{err: errors.New("db down")}
		fanout := NewFanoutRecorder(metrics, testLogger(), NewStoreRecorder(broken, testLogger()))

		assert.Error(t, fanout.Record(ctx, click()))
	})
}
