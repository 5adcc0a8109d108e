package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahpet/shortener/internal/model"
	"github.com/nahpet/shortener/internal/reserved"
)

func TestSlugGenerator_ValidateCustom(t *testing.T) {
	ctx := context.Background()
	store := newFakeLinkStore()
	gen := NewSlugGenerator(store, testRegistry(), 4, 8, 10)

	taken := &model.Link{ID: uuid.New(), Slug: "taken", OriginalURL: "https://example.com", OwnerID: uuid.New()}
	require.NoError(t, store.Create(ctx, taken))

	tests := []struct {
		name    string
		slug    string
		wantErr error
	}{
		{"valid alphanumeric", "my-link_1", nil},
		{"single character", "a", nil},
		{"slash", "a/b", ErrInvalidSlug},
		{"dot", "a.b", ErrInvalidSlug},
		{"space", "a b", ErrInvalidSlug},
		{"percent encoding", "a%20b", ErrInvalidSlug},
		{"unicode", "链接", ErrInvalidSlug},
		{"reserved word", "admin", ErrReservedSlug},
		{"reserved word uppercase", "ADMIN", ErrReservedSlug},
		{"reserved route segment", "api", ErrReservedSlug},
		{"already taken", "taken", ErrSlugTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug, err := gen.Generate(ctx, tt.slug, model.Primary())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.slug, slug, "custom slug must be returned unchanged")
		})
	}
}

func TestSlugGenerator_ReservedBeatsTaken(t *testing.T) {
	// A candidate that is both malformed and reserved reports the charset
	// problem first; a reserved word that is also taken reports reserved.
	ctx := context.Background()
	store := newFakeLinkStore()
	gen := NewSlugGenerator(store, testRegistry(), 4, 8, 10)

	_, err := gen.Generate(ctx, "adm in", model.Primary())
	assert.ErrorIs(t, err, ErrInvalidSlug)

	_, err = gen.Generate(ctx, "admin", model.Primary())
	assert.ErrorIs(t, err, ErrReservedSlug)
}

func TestSlugGenerator_AutoGenerate(t *testing.T) {
	ctx := context.Background()
	store := newFakeLinkStore()
	gen := NewSlugGenerator(store, testRegistry(), 4, 8, 10)

	t.Run("produces shortest length when namespace is empty", func(t *testing.T) {
		slug, err := gen.Generate(ctx, "", model.Primary())
		require.NoError(t, err)
		assert.Len(t, slug, 4)
	})

	t.Run("uses only URL-safe characters", func(t *testing.T) {
		for range 50 {
			slug, err := gen.Generate(ctx, "", model.Primary())
			require.NoError(t, err)
			for _, c := range slug {
				assert.True(t, strings.ContainsRune(slugAlphabet, c), "slug contains invalid character: %c", c)
			}
		}
	})

	t.Run("generated slugs are distinct under sequential creation", func(t *testing.T) {
		owner := uuid.New()
		seen := make(map[string]struct{})
		for range 200 {
			slug, err := gen.Generate(ctx, "", model.Primary())
			require.NoError(t, err)

			_, dup := seen[slug]
			require.False(t, dup, "duplicate slug issued: %s", slug)
			seen[slug] = struct{}{}

			require.NoError(t, store.Create(ctx, &model.Link{
				ID: uuid.New(), Slug: slug, OriginalURL: "https://example.com", OwnerID: owner,
			}))
		}
	})

	t.Run("never emits a reserved word", func(t *testing.T) {
		registry := reserved.NewRegistry(func() []string { return nil })
		g := NewSlugGenerator(newFakeLinkStore(), registry, 4, 4, 10)
		for range 100 {
			slug, err := g.Generate(ctx, "", model.Primary())
			require.NoError(t, err)
			assert.False(t, registry.IsReserved(slug), "generated reserved slug %s", slug)
		}
	})
}

func TestSlugGenerator_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	store := newFakeLinkStore()
	gen := NewSlugGenerator(store, testRegistry(), 4, 8, 10)

	domainID := uuid.New()
	domain := &model.CustomDomain{ID: domainID, Domain: "links.example.com", Verified: true, OwnerID: uuid.New()}

	require.NoError(t, store.Create(ctx, &model.Link{
		ID: uuid.New(), Slug: "promo", OriginalURL: "https://example.com",
		OwnerID: domain.OwnerID, CustomDomainID: &domainID,
	}))

	// Occupied on the custom domain, still free on the primary domain.
	slug, err := gen.Generate(ctx, "promo", model.Primary())
	require.NoError(t, err)
	assert.Equal(t, "promo", slug)

	_, err = gen.Generate(ctx, "promo", model.Custom(domain))
	assert.ErrorIs(t, err, ErrSlugTaken)
}

// saturatedLinkStore reports every candidate as occupied, forcing the
// generator through all lengths into the fallback.
type saturatedLinkStore struct {
	*fakeLinkStore
}

func (s *saturatedLinkStore) FindBySlugs(ctx context.Context, slugs []string, domainID *uuid.UUID) ([]model.Link, error) {
	out := make([]model.Link, len(slugs))
	for i, slug := range slugs {
		out[i] = model.Link{ID: uuid.New(), Slug: slug}
	}
	return out, nil
}

func TestSlugGenerator_FallbackUnderSaturation(t *testing.T) {
	ctx := context.Background()
	gen := NewSlugGenerator(&saturatedLinkStore{newFakeLinkStore()}, testRegistry(), 4, 6, 3)

	slug1, err := gen.Generate(ctx, "", model.Primary())
	require.NoError(t, err)
	slug2, err := gen.Generate(ctx, "", model.Primary())
	require.NoError(t, err)

	assert.Greater(t, len(slug1), 6, "fallback slug should exceed the escalation ceiling")
	assert.NotEqual(t, slug1, slug2, "fallback slugs must stay distinct")
	assert.Regexp(t, `^[A-Za-z0-9_-]+$`, slug1)
}
