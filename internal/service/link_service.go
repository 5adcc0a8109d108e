package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nahpet/shortener/internal/model"
	"github.com/nahpet/shortener/internal/repository"
)

const (
	maxTitleLength  = 255
	bulkConcurrency = 8
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// Hasher derives a storable hash from a passphrase.
type Hasher interface {
	Hash(passphrase string) (string, error)
}

// LinkService owns link lifecycle: creation with slug assignment, reads,
// deletion, and click statistics.
type LinkService struct {
	links   LinkStore
	domains DomainStore
	clicks  ClickStore
	slugs   *SlugGenerator
	hasher  Hasher
	logger  *slog.Logger

	now func() time.Time
}

func NewLinkService(links LinkStore, domains DomainStore, clicks ClickStore,
	slugs *SlugGenerator, hasher Hasher, logger *slog.Logger) *LinkService {
	return &LinkService{
		links:   links,
		domains: domains,
		clicks:  clicks,
		slugs:   slugs,
		hasher:  hasher,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateLink validates the request, assigns a slug within the target
// namespace and persists the link.
func (s *LinkService) CreateLink(ctx context.Context, ownerID uuid.UUID, req *model.CreateLinkRequest) (*model.Link, error) {
	if err := validateDestination(req.URL); err != nil {
		return nil, err
	}

	ns, err := s.targetNamespace(ctx, ownerID, req.CustomDomainID)
	if err != nil {
		return nil, err
	}

	expiresAt, err := s.parseExpiry(req.ExpiresAt)
	if err != nil {
		return nil, err
	}

	slug, err := s.slugs.Generate(ctx, req.CustomSlug, ns)
	if err != nil {
		return nil, err
	}

	link := &model.Link{
		ID:             uuid.New(),
		Slug:           slug,
		OriginalURL:    req.URL,
		ExpiresAt:      expiresAt,
		OwnerID:        ownerID,
		CustomDomainID: ns.DomainID(),
	}
	if title := sanitizeTitle(req.Title); title != "" {
		link.Title = &title
	}
	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		link.PasswordHash = &hash
	}

	if err := s.links.Create(ctx, link); err != nil {
		if errors.Is(err, repository.ErrSlugConflict) {
			// Lost the race between the occupancy pre-check and the insert.
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "link created",
		slog.String("slug", link.Slug),
		slog.String("owner_id", ownerID.String()))
	return link, nil
}

// BulkOutcome is the result of one entry of a bulk creation. Exactly one
// of Link and Err is set.
type BulkOutcome struct {
	Index int
	Link  *model.Link
	Err   error
}

// CreateLinks processes a batch concurrently. Entries fail independently;
// the result slice is index-aligned with the request.
func (s *LinkService) CreateLinks(ctx context.Context, ownerID uuid.UUID, reqs []model.CreateLinkRequest) []BulkOutcome {
	results := make([]BulkOutcome, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)
	for i := range reqs {
		g.Go(func() error {
			link, err := s.CreateLink(gctx, ownerID, &reqs[i])
			results[i] = BulkOutcome{Index: i, Link: link, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// UpdateLink applies a partial update to a link the owner controls. Nil
// request fields are left unchanged; empty strings clear the title,
// password or expiry. The slug and namespace are immutable.
func (s *LinkService) UpdateLink(ctx context.Context, slug string, ns model.Namespace, ownerID uuid.UUID, req *model.UpdateLinkRequest) (*model.Link, error) {
	link, err := s.GetLink(ctx, slug, ns)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != ownerID {
		return nil, ErrLinkNotFound
	}

	if req.URL != nil {
		if err := validateDestination(*req.URL); err != nil {
			return nil, err
		}
		link.OriginalURL = *req.URL
	}
	if req.Title != nil {
		if title := sanitizeTitle(*req.Title); title != "" {
			link.Title = &title
		} else {
			link.Title = nil
		}
	}
	if req.ExpiresAt != nil {
		if *req.ExpiresAt == "" {
			link.ExpiresAt = nil
		} else {
			expiresAt, err := s.parseExpiry(*req.ExpiresAt)
			if err != nil {
				return nil, err
			}
			link.ExpiresAt = expiresAt
		}
	}
	if req.Password != nil {
		if *req.Password == "" {
			link.PasswordHash = nil
		} else {
			hash, err := s.hasher.Hash(*req.Password)
			if err != nil {
				return nil, err
			}
			link.PasswordHash = &hash
		}
	}

	if err := s.links.Update(ctx, link); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "link updated", slog.String("slug", slug))
	return link, nil
}

// ListLinks returns every link the owner has created, across namespaces.
func (s *LinkService) ListLinks(ctx context.Context, ownerID uuid.UUID) ([]model.Link, error) {
	return s.links.ListByOwner(ctx, ownerID)
}

// GetLink fetches a link by slug within the given namespace, without any
// of the redirect-time gating.
func (s *LinkService) GetLink(ctx context.Context, slug string, ns model.Namespace) (*model.Link, error) {
	link, err := s.links.GetBySlug(ctx, slug, ns.DomainID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}

// DeleteLink removes a link the owner controls.
func (s *LinkService) DeleteLink(ctx context.Context, slug string, ns model.Namespace, ownerID uuid.UUID) error {
	link, err := s.GetLink(ctx, slug, ns)
	if err != nil {
		return err
	}
	if err := s.links.Delete(ctx, link.ID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLinkNotFound
		}
		return err
	}
	s.logger.InfoContext(ctx, "link deleted", slog.String("slug", slug))
	return nil
}

// DeleteLinks removes a batch of the owner's links. Entries fail
// independently; the response lists the deleted slugs and the failures.
func (s *LinkService) DeleteLinks(ctx context.Context, slugs []string, ns model.Namespace, ownerID uuid.UUID) *model.BulkDeleteResponse {
	resp := &model.BulkDeleteResponse{
		Deleted: []string{},
		Errors:  []model.BulkDeleteError{},
	}
	for _, slug := range slugs {
		if err := s.DeleteLink(ctx, slug, ns, ownerID); err != nil {
			msg := "failed to delete link"
			if errors.Is(err, ErrLinkNotFound) {
				msg = "link not found"
			}
			resp.Errors = append(resp.Errors, model.BulkDeleteError{Slug: slug, Error: msg})
			continue
		}
		resp.Deleted = append(resp.Deleted, slug)
	}
	return resp
}

// GetStats returns click totals and recent events for one of the owner's
// links. Links of other owners look absent.
func (s *LinkService) GetStats(ctx context.Context, slug string, ns model.Namespace, ownerID uuid.UUID, recentLimit int) (*model.StatsResponse, error) {
	link, err := s.GetLink(ctx, slug, ns)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != ownerID {
		return nil, ErrLinkNotFound
	}
	total, err := s.clicks.CountByLink(ctx, link.ID)
	if err != nil {
		return nil, err
	}
	recent, err := s.clicks.ListRecentByLink(ctx, link.ID, recentLimit)
	if err != nil {
		return nil, err
	}

	stats := &model.StatsResponse{
		Slug:        link.Slug,
		TotalClicks: total,
		Recent:      make([]model.ClickSummary, 0, len(recent)),
	}
	for _, c := range recent {
		summary := model.ClickSummary{
			IP:        c.IP,
			UserAgent: c.UserAgent,
			CreatedAt: c.CreatedAt,
		}
		if c.Country != nil {
			summary.Country = *c.Country
		}
		if c.City != nil {
			summary.City = *c.City
		}
		stats.Recent = append(stats.Recent, summary)
	}
	return stats, nil
}

// targetNamespace resolves the namespace a new link should live in. An
// explicit domain id must reference a verified domain owned by the caller.
func (s *LinkService) targetNamespace(ctx context.Context, ownerID uuid.UUID, domainID string) (model.Namespace, error) {
	if domainID == "" {
		return model.Primary(), nil
	}
	id, err := uuid.Parse(domainID)
	if err != nil {
		return model.Unknown(), ErrDomainNotFound
	}
	domain, err := s.domains.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Unknown(), ErrDomainNotFound
		}
		return model.Unknown(), err
	}
	if !domain.Verified || domain.OwnerID != ownerID {
		return model.Unknown(), ErrDomainNotFound
	}
	return model.Custom(domain), nil
}

func (s *LinkService) parseExpiry(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, ErrInvalidExpiry
	}
	if !t.After(s.now()) {
		return nil, ErrInvalidExpiry
	}
	return &t, nil
}

// validateDestination accepts only absolute http/https URLs.
func validateDestination(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// sanitizeTitle strips markup, trims whitespace and caps the length.
// The cap counts characters, not bytes, so multibyte titles are never
// cut mid-rune.
func sanitizeTitle(raw string) string {
	title := htmlTagPattern.ReplaceAllString(raw, "")
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > maxTitleLength {
		runes := []rune(title)
		title = string(runes[:maxTitleLength])
	}
	return title
}
