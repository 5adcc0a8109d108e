package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nahpet/shortener/internal/model"
)

// notFoundSentinel marks a negatively-cached namespace key.
const notFoundSentinel = "__NOT_FOUND__"

// CachedLinkRepository decorates LinkRepository with a cache-aside layer on
// slug resolution. Cache failures degrade to database reads; a nil client
// disables caching entirely.
type CachedLinkRepository struct {
	db    *LinkRepository
	cache *redis.Client
	ttl   time.Duration
}

// NewCachedLinkRepository creates the caching decorator.
func NewCachedLinkRepository(db *LinkRepository, cache *redis.Client, ttl time.Duration) *CachedLinkRepository {
	return &CachedLinkRepository{db: db, cache: cache, ttl: ttl}
}

func cacheKey(slug string, domainID *uuid.UUID) string {
	if domainID == nil {
		return fmt.Sprintf("link:primary:%s", slug)
	}
	return fmt.Sprintf("link:%s:%s", domainID, slug)
}

// cachedLink is the cache wire form of a link. model.Link hides the
// password hash from its JSON shape, so the envelope carries the hash
// explicitly; a cache hit must restore the full redirect-gating state.
type cachedLink struct {
	Link         model.Link `json:"link"`
	PasswordHash *string    `json:"password_hash,omitempty"`
}

func encodeLink(link *model.Link) ([]byte, error) {
	return json.Marshal(cachedLink{Link: *link, PasswordHash: link.PasswordHash})
}

func decodeLink(data []byte) (*model.Link, error) {
	var env cachedLink
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	link := env.Link
	link.PasswordHash = env.PasswordHash
	return &link, nil
}

// GetBySlug resolves (slug, namespace) with a cache-aside read. Misses are
// cached negatively with a sentinel so repeated probes for absent slugs do
// not reach the database.
func (r *CachedLinkRepository) GetBySlug(ctx context.Context, slug string, domainID *uuid.UUID) (*model.Link, error) {
	key := cacheKey(slug, domainID)

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, key).Result()
		if err == nil {
			if cached == notFoundSentinel {
				return nil, ErrNotFound
			}
			if link, err := decodeLink([]byte(cached)); err == nil {
				return link, nil
			}
			// Corrupt entry: drop it and fall through to the database.
			r.cache.Del(ctx, key)
		}
	}

	link, err := r.db.GetBySlug(ctx, slug, domainID)
	if err != nil {
		if errors.Is(err, ErrNotFound) && r.cache != nil {
			r.cache.Set(ctx, key, notFoundSentinel, r.ttl)
		}
		return nil, err
	}

	if r.cache != nil {
		if data, err := encodeLink(link); err == nil {
			r.cache.Set(ctx, key, data, r.ttl)
		}
	}
	return link, nil
}

// Create inserts the link and writes it through to the cache, overwriting
// any negative entry left by earlier misses.
func (r *CachedLinkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.db.Create(ctx, link); err != nil {
		return err
	}
	if r.cache != nil {
		if data, err := encodeLink(link); err == nil {
			r.cache.Set(ctx, cacheKey(link.Slug, link.CustomDomainID), data, r.ttl)
		}
	}
	return nil
}

// Update rewrites the link and refreshes its cache entry so stale
// destinations, passwords or expiries never survive an update.
func (r *CachedLinkRepository) Update(ctx context.Context, link *model.Link) error {
	if err := r.db.Update(ctx, link); err != nil {
		return err
	}
	if r.cache != nil {
		if data, err := encodeLink(link); err == nil {
			r.cache.Set(ctx, cacheKey(link.Slug, link.CustomDomainID), data, r.ttl)
		}
	}
	return nil
}

// Delete removes the link and invalidates its cache entry.
func (r *CachedLinkRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	link, err := r.db.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	if r.cache != nil {
		r.cache.Del(ctx, cacheKey(link.Slug, link.CustomDomainID))
	}
	return nil
}

// GetByID bypasses the cache; only slug resolution is hot.
func (r *CachedLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Link, error) {
	return r.db.GetByID(ctx, id)
}

// FindBySlugs bypasses the cache: occupancy checks must see the database.
func (r *CachedLinkRepository) FindBySlugs(ctx context.Context, slugs []string, domainID *uuid.UUID) ([]model.Link, error) {
	return r.db.FindBySlugs(ctx, slugs, domainID)
}

// ListByOwner bypasses the cache.
func (r *CachedLinkRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Link, error) {
	return r.db.ListByOwner(ctx, ownerID)
}
