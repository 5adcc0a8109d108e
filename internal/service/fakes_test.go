package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nahpet/shortener/internal/model"
	"github.com/nahpet/shortener/internal/repository"
	"github.com/nahpet/shortener/internal/reserved"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry() *reserved.Registry {
	return reserved.NewRegistry(func() []string { return nil })
}

func strPtr(s string) *string { return &s }

// fakeLinkStore is an in-memory LinkStore keyed by (slug, namespace).
type fakeLinkStore struct {
	mu    sync.Mutex
	links map[string]*model.Link

	createErr error
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{links: make(map[string]*model.Link)}
}

func nsKey(slug string, domainID *uuid.UUID) string {
	if domainID == nil {
		return "primary/" + slug
	}
	return domainID.String() + "/" + slug
}

func (s *fakeLinkStore) Create(ctx context.Context, link *model.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	key := nsKey(link.Slug, link.CustomDomainID)
	if _, ok := s.links[key]; ok {
		return repository.ErrSlugConflict
	}
	cp := *link
	s.links[key] = &cp
	return nil
}

func (s *fakeLinkStore) GetBySlug(ctx context.Context, slug string, domainID *uuid.UUID) (*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[nsKey(slug, domainID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (s *fakeLinkStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, link := range s.links {
		if link.ID == id {
			cp := *link
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeLinkStore) FindBySlugs(ctx context.Context, slugs []string, domainID *uuid.UUID) ([]model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Link
	for _, slug := range slugs {
		if link, ok := s.links[nsKey(slug, domainID)]; ok {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (s *fakeLinkStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Link
	for _, link := range s.links {
		if link.OwnerID == ownerID {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (s *fakeLinkStore) Update(ctx context.Context, link *model.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := nsKey(link.Slug, link.CustomDomainID)
	existing, ok := s.links[key]
	if !ok || existing.OwnerID != link.OwnerID {
		return repository.ErrNotFound
	}
	cp := *link
	s.links[key] = &cp
	return nil
}

func (s *fakeLinkStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, link := range s.links {
		if link.ID == id && link.OwnerID == ownerID {
			delete(s.links, key)
			return nil
		}
	}
	return repository.ErrNotFound
}

// fakeDomainStore serves custom domains from a fixed set.
type fakeDomainStore struct {
	domains []*model.CustomDomain
}

func (s *fakeDomainStore) GetVerifiedByHost(ctx context.Context, host string) (*model.CustomDomain, error) {
	for _, d := range s.domains {
		if d.Domain == host && d.Verified {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeDomainStore) GetByID(ctx context.Context, id uuid.UUID) (*model.CustomDomain, error) {
	for _, d := range s.domains {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

// fakeClickStore returns canned click history.
type fakeClickStore struct {
	count  int64
	recent []model.ClickEvent
}

func (s *fakeClickStore) CountByLink(ctx context.Context, linkID uuid.UUID) (int64, error) {
	return s.count, nil
}

func (s *fakeClickStore) ListRecentByLink(ctx context.Context, linkID uuid.UUID, limit int) ([]model.ClickEvent, error) {
	if limit < len(s.recent) {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

// fakeRecorder captures recorded clicks and optionally fails.
type fakeRecorder struct {
	mu     sync.Mutex
	clicks []model.ClickEvent
	err    error
}

func (r *fakeRecorder) Record(ctx context.Context, click *model.ClickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.clicks = append(r.clicks, *click)
	return nil
}

func (r *fakeRecorder) recorded() []model.ClickEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ClickEvent(nil), r.clicks...)
}

// plainHasher avoids bcrypt cost in tests that do not verify hashes.
type plainHasher struct{}

func (plainHasher) Hash(passphrase string) (string, error) { return "hashed:" + passphrase, nil }
