package service

import (
	"context"
	"crypto/rand"
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/nahpet/shortener/internal/model"
	"github.com/nahpet/shortener/internal/repository"
	"github.com/nahpet/shortener/internal/reserved"
)

// slugAlphabet has exactly 64 URL-safe characters, so masking a random
// byte to 6 bits indexes it without modulo bias.
const slugAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// slugPattern is the allow-set for user-supplied slugs. Everything else
// (slashes, dots, percent signs, whitespace, ...) is rejected because the
// slug becomes a URL path segment.
var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// SlugGenerator produces unique, non-reserved identifiers for new links
// within one namespace. It only pre-checks occupancy; the database's
// per-namespace unique index remains the final arbiter under races.
type SlugGenerator struct {
	links    LinkStore
	reserved *reserved.Registry

	minLen    int
	maxLen    int
	batchSize int

	now func() time.Time
}

// NewSlugGenerator creates a generator. Non-positive sizing falls back to
// lengths 4..8 with batches of 10.
func NewSlugGenerator(links LinkStore, registry *reserved.Registry, minLen, maxLen, batchSize int) *SlugGenerator {
	if minLen <= 0 {
		minLen = 4
	}
	if maxLen < minLen {
		maxLen = minLen + 4
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SlugGenerator{
		links:     links,
		reserved:  registry,
		minLen:    minLen,
		maxLen:    maxLen,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Generate returns a slug for a new link in the given namespace. A
// non-empty custom candidate is validated (charset, reserved word,
// occupancy) and returned unchanged; otherwise a fresh identifier is drawn,
// escalating lengths so common-case slugs stay short while termination is
// guaranteed under heavy occupancy.
func (g *SlugGenerator) Generate(ctx context.Context, custom string, ns model.Namespace) (string, error) {
	if custom != "" {
		return g.validateCustom(ctx, custom, ns)
	}

	for length := g.minLen; length <= g.maxLen; length++ {
		batch, err := g.randomBatch(length)
		if err != nil {
			return "", err
		}
		occupied, err := g.links.FindBySlugs(ctx, batch, ns.DomainID())
		if err != nil {
			return "", err
		}
		taken := make(map[string]struct{}, len(occupied))
		for _, l := range occupied {
			taken[l.Slug] = struct{}{}
		}
		for _, candidate := range batch {
			if _, ok := taken[candidate]; !ok {
				return candidate, nil
			}
		}
	}

	// Pathological collision density: trade brevity for a guaranteed-unique
	// composite of a monotonic timestamp and a random suffix.
	return g.fallbackSlug()
}

func (g *SlugGenerator) validateCustom(ctx context.Context, candidate string, ns model.Namespace) (string, error) {
	if !slugPattern.MatchString(candidate) {
		return "", ErrInvalidSlug
	}
	if g.reserved.IsReserved(candidate) {
		return "", ErrReservedSlug
	}
	_, err := g.links.GetBySlug(ctx, candidate, ns.DomainID())
	if err == nil {
		return "", ErrSlugTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	return candidate, nil
}

// randomBatch draws random identifiers of the given length until batchSize
// of them survive the reserved-word filter.
func (g *SlugGenerator) randomBatch(length int) ([]string, error) {
	batch := make([]string, 0, g.batchSize)
	for len(batch) < g.batchSize {
		candidate, err := randomSlug(length)
		if err != nil {
			return nil, err
		}
		if g.reserved.IsReserved(candidate) {
			continue
		}
		batch = append(batch, candidate)
	}
	return batch, nil
}

func (g *SlugGenerator) fallbackSlug() (string, error) {
	suffix, err := randomSlug(4)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(g.now().UnixNano(), 36) + suffix, nil
}

func randomSlug(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = slugAlphabet[b&0x3f]
	}
	return string(buf), nil
}
