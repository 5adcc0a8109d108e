package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahpet/shortener/internal/model"
)

func TestClickRepository(t *testing.T) {
	linkRepo := NewLinkRepository(testDB.Pool, testLogger())
	repo := NewClickRepository(testDB.Pool)
	ctx := context.Background()
	testDB.Cleanup(ctx)

	link := newLink("clicky", nil)
	require.NoError(t, linkRepo.Create(ctx, link))

	country := "DE"
	for i := 0; i < 3; i++ {
		click := &model.ClickEvent{
			ID:        uuid.New(),
			LinkID:    link.ID,
			IP:        "203.0.113.9",
			UserAgent: "test-agent",
			Country:   &country,
		}
		require.NoError(t, repo.Insert(ctx, click))
		assert.False(t, click.CreatedAt.IsZero(), "insert fills created_at")
		time.Sleep(5 * time.Millisecond)
	}

	t.Run("counts clicks per link", func(t *testing.T) {
		count, err := repo.CountByLink(ctx, link.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		count, err = repo.CountByLink(ctx, uuid.New())
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("lists recent clicks newest first", func(t *testing.T) {
		recent, err := repo.ListRecentByLink(ctx, link.ID, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.True(t, !recent[0].CreatedAt.Before(recent[1].CreatedAt))
		require.NotNil(t, recent[0].Country)
		assert.Equal(t, "DE", *recent[0].Country)
	})
}
