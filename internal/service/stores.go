package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/nahpet/shortener/internal/model"
	"github.com/nahpet/shortener/internal/repository"
)

// LinkStore is the data-layer contract the services need for links.
// Implementations signal absence with repository.ErrNotFound and slug
// races with repository.ErrSlugConflict.
type LinkStore interface {
	Create(ctx context.Context, link *model.Link) error
	GetBySlug(ctx context.Context, slug string, domainID *uuid.UUID) (*model.Link, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Link, error)
	FindBySlugs(ctx context.Context, slugs []string, domainID *uuid.UUID) ([]model.Link, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Link, error)
	Update(ctx context.Context, link *model.Link) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

// DomainStore is the data-layer contract for custom domains.
type DomainStore interface {
	GetVerifiedByHost(ctx context.Context, host string) (*model.CustomDomain, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.CustomDomain, error)
}

// ClickStore reads click history for the stats surface.
type ClickStore interface {
	CountByLink(ctx context.Context, linkID uuid.UUID) (int64, error)
	ListRecentByLink(ctx context.Context, linkID uuid.UUID, limit int) ([]model.ClickEvent, error)
}

// ClickRecorder appends one click event. Recording is best-effort from the
// redirect engine's point of view: failures are logged, never propagated.
type ClickRecorder interface {
	Record(ctx context.Context, click *model.ClickEvent) error
}

// PasswordVerifier checks a passphrase candidate against a stored hash in
// constant time.
type PasswordVerifier interface {
	Verify(hash, candidate string) bool
}

// Compile-time checks that the repository layer satisfies the contracts.
var (
	_ LinkStore   = (*repository.LinkRepository)(nil)
	_ LinkStore   = (*repository.CachedLinkRepository)(nil)
	_ DomainStore = (*repository.DomainRepository)(nil)
	_ ClickStore  = (*repository.ClickRepository)(nil)
)
