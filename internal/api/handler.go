package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/nahpet/shortener/internal/middleware"
	"github.com/nahpet/shortener/internal/model"
	"github.com/nahpet/shortener/internal/observability"
	"github.com/nahpet/shortener/internal/service"
)

const (
	statsRecentLimit   = 50
	maxBulkDeleteSlugs = 100
)

// LinkManager is the link lifecycle surface the handler needs.
type LinkManager interface {
	CreateLink(ctx context.Context, ownerID uuid.UUID, req *model.CreateLinkRequest) (*model.Link, error)
	CreateLinks(ctx context.Context, ownerID uuid.UUID, reqs []model.CreateLinkRequest) []service.BulkOutcome
	ListLinks(ctx context.Context, ownerID uuid.UUID) ([]model.Link, error)
	GetLink(ctx context.Context, slug string, ns model.Namespace) (*model.Link, error)
	UpdateLink(ctx context.Context, slug string, ns model.Namespace, ownerID uuid.UUID, req *model.UpdateLinkRequest) (*model.Link, error)
	DeleteLink(ctx context.Context, slug string, ns model.Namespace, ownerID uuid.UUID) error
	DeleteLinks(ctx context.Context, slugs []string, ns model.Namespace, ownerID uuid.UUID) *model.BulkDeleteResponse
	GetStats(ctx context.Context, slug string, ns model.Namespace, ownerID uuid.UUID, recentLimit int) (*model.StatsResponse, error)
}

// LinkResolver resolves a (namespace, slug) pair for the redirect surface.
type LinkResolver interface {
	ResolveLink(ctx context.Context, ns model.Namespace, slug string) (*model.Link, error)
}

// Decider evaluates a resolved link for one request.
type Decider interface {
	Decide(ctx context.Context, link *model.Link, req service.RequestContext) service.Decision
}

// DBInterface defines the database operations needed for health checks.
type DBInterface interface {
	Ping(ctx context.Context) error
}

// CacheInterface defines the cache operations needed for health checks.
type CacheInterface interface {
	Ping(ctx context.Context) error
}

// Handler holds the HTTP handlers and their dependencies. It receives
// interfaces rather than concrete implementations for testability.
type Handler struct {
	links    LinkManager
	resolver LinkResolver
	redirect Decider
	verifier service.PasswordVerifier
	domains  service.DomainStore
	metrics  *observability.Metrics
	db       DBInterface
	cache    CacheInterface
	baseURL  string
	logger   *slog.Logger
}

func NewHandler(links LinkManager, resolver LinkResolver, redirect Decider,
	verifier service.PasswordVerifier, domains service.DomainStore,
	metrics *observability.Metrics, db DBInterface, cache CacheInterface,
	baseURL string, logger *slog.Logger) *Handler {
	return &Handler{
		links:    links,
		resolver: resolver,
		redirect: redirect,
		verifier: verifier,
		domains:  domains,
		metrics:  metrics,
		db:       db,
		cache:    cache,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// RegisterRoutes registers all route definitions on the given Gin engine.
// The caller creates the engine and installs global middleware first.
// tenant resolves the host namespace; it is skipped for /health so probes
// work regardless of the Host header. primaryOnly guards the management
// API so custom domains serve nothing but slug resolution; apiLimiter
// rate-limits the management API.
func (h *Handler) RegisterRoutes(r *gin.Engine, tenant, primaryOnly, apiLimiter gin.HandlerFunc) {
	r.GET("/health", h.healthCheck)

	v1 := r.Group("/api/v1", tenant, primaryOnly, apiLimiter)
	{
		v1.POST("/links", h.createLink)
		v1.GET("/links", h.listLinks)
		v1.GET("/links/:slug", h.getLink)
		v1.PUT("/links/:slug", h.updateLink)
		v1.DELETE("/links/:slug", h.deleteLink)
		v1.POST("/links/bulk", h.createLinksBulk)
		v1.DELETE("/links/bulk", h.deleteLinksBulk)
		v1.GET("/stats/:slug", h.getStats)
	}

	// Resolution routes come last so they do not shadow system routes.
	r.GET("/:slug", tenant, h.resolve)
	r.POST("/:slug/verify", tenant, h.verifyPassword)
}

// healthCheck handles GET /health.
func (h *Handler) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	dbErr := h.db.Ping(ctx)
	cacheErr := h.cache.Ping(ctx)

	status := "ok"
	code := http.StatusOK
	deps := gin.H{"cache": "up", "database": "up"}

	if cacheErr != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		deps["cache"] = "down"
	}
	if dbErr != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		deps["database"] = "down"
	}

	c.JSON(code, gin.H{"status": status, "dependencies": deps})
}

// resolve handles GET /:slug, the redirect surface.
// Response codes:
//   - 302 Found: redirect to the destination (possibly a deep link)
//   - 200 OK: password challenge payload
//   - 404 Not Found: no link in this namespace
//   - 410 Gone: link expired
func (h *Handler) resolve(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")
	ns := middleware.NamespaceFrom(c)

	link, err := h.resolver.ResolveLink(ctx, ns, slug)
	if err != nil {
		h.linkError(c, err, slug)
		return
	}

	decision := h.redirect.Decide(ctx, link, h.requestContext(c, false))
	h.metrics.Redirects.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", string(decision.Outcome))))

	switch decision.Outcome {
	case service.OutcomeExpired:
		h.errorResponse(c, http.StatusGone, "link has expired")
	case service.OutcomePasswordChallenge:
		c.JSON(http.StatusOK, model.PasswordChallengeResponse{
			Slug:        link.Slug,
			Title:       titleOf(link),
			HasPassword: true,
		})
	default:
		c.Redirect(http.StatusFound, decision.Destination)
	}
}

type verifyRequest struct {
	Password string `json:"password" binding:"required"`
}

// verifyPassword handles POST /:slug/verify: checks the passphrase, then
// re-enters the decision flow so expiry still wins and the click is
// recorded on success.
func (h *Handler) verifyPassword(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")
	ns := middleware.NamespaceFrom(c)

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := h.resolver.ResolveLink(ctx, ns, slug)
	if err != nil {
		h.linkError(c, err, slug)
		return
	}

	if !link.HasPassword() || !h.verifier.Verify(*link.PasswordHash, req.Password) {
		h.errorResponse(c, http.StatusBadRequest, "invalid password")
		return
	}

	decision := h.redirect.Decide(ctx, link, h.requestContext(c, true))
	h.metrics.Redirects.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", string(decision.Outcome))))

	if decision.Outcome == service.OutcomeExpired {
		h.errorResponse(c, http.StatusGone, "link has expired")
		return
	}
	c.Redirect(http.StatusFound, decision.Destination)
}

// createLink handles POST /api/v1/links.
// Response codes:
//   - 201 Created
//   - 400 Bad Request: invalid URL, slug, expiry, domain or password input
//   - 409 Conflict: slug already taken
func (h *Handler) createLink(c *gin.Context) {
	ctx := c.Request.Context()

	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req model.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body",
			slog.String("error", err.Error()),
			slog.String("path", c.Request.URL.Path))
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := h.links.CreateLink(ctx, owner, &req)
	if err != nil {
		h.createError(c, err)
		return
	}
	h.countSlug(ctx, &req)

	c.JSON(http.StatusCreated, h.linkResponse(ctx, link))
}

// createLinksBulk handles POST /api/v1/links/bulk. Entries succeed or fail
// independently; the response preserves request order.
func (h *Handler) createLinksBulk(c *gin.Context) {
	ctx := c.Request.Context()

	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req model.BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Links) == 0 {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	outcomes := h.links.CreateLinks(ctx, owner, req.Links)

	results := make([]model.BulkCreateResult, len(outcomes))
	for i, out := range outcomes {
		results[i] = model.BulkCreateResult{Index: out.Index}
		if out.Err != nil {
			results[i].Error = out.Err.Error()
			continue
		}
		h.countSlug(ctx, &req.Links[out.Index])
		resp := h.linkResponse(ctx, out.Link)
		results[i].Link = &resp
	}

	c.JSON(http.StatusCreated, gin.H{"results": results})
}

// listLinks handles GET /api/v1/links, returning the caller's links.
func (h *Handler) listLinks(c *gin.Context) {
	ctx := c.Request.Context()

	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	links, err := h.links.ListLinks(ctx, owner)
	if err != nil {
		h.internalError(c, err, "listing links")
		return
	}

	resps := make([]model.LinkResponse, 0, len(links))
	for i := range links {
		resps = append(resps, h.linkResponse(ctx, &links[i]))
	}
	c.JSON(http.StatusOK, gin.H{"links": resps})
}

// getLink handles GET /api/v1/links/:slug without recording a click.
func (h *Handler) getLink(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")

	link, err := h.links.GetLink(ctx, slug, middleware.NamespaceFrom(c))
	if err != nil {
		h.linkError(c, err, slug)
		return
	}
	c.JSON(http.StatusOK, h.linkResponse(ctx, link))
}

// updateLink handles PUT /api/v1/links/:slug, a partial update of the
// destination, title, password or expiry.
func (h *Handler) updateLink(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")

	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req model.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := h.links.UpdateLink(ctx, slug, middleware.NamespaceFrom(c), owner, &req)
	if err != nil {
		h.updateError(c, err, slug)
		return
	}
	c.JSON(http.StatusOK, h.linkResponse(ctx, link))
}

// deleteLinksBulk handles DELETE /api/v1/links/bulk. Entries fail
// independently, mirroring bulk creation.
func (h *Handler) deleteLinksBulk(c *gin.Context) {
	ctx := c.Request.Context()

	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req model.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Slugs) == 0 || len(req.Slugs) > maxBulkDeleteSlugs {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	c.JSON(http.StatusOK, h.links.DeleteLinks(ctx, req.Slugs, middleware.NamespaceFrom(c), owner))
}

// deleteLink handles DELETE /api/v1/links/:slug.
func (h *Handler) deleteLink(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")

	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	if err := h.links.DeleteLink(ctx, slug, middleware.NamespaceFrom(c), owner); err != nil {
		h.linkError(c, err, slug)
		return
	}
	c.Status(http.StatusNoContent)
}

// getStats handles GET /api/v1/stats/:slug.
func (h *Handler) getStats(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")

	owner, ok := h.ownerID(c)
	if !ok {
		return
	}

	stats, err := h.links.GetStats(ctx, slug, middleware.NamespaceFrom(c), owner, statsRecentLimit)
	if err != nil {
		h.linkError(c, err, slug)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ownerID extracts the authenticated owner propagated by the fronting auth
// layer. Requests without it cannot use the management API.
func (h *Handler) ownerID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader("X-Owner-ID")
	id, err := uuid.Parse(raw)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "missing or invalid owner identity")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) requestContext(c *gin.Context, verified bool) service.RequestContext {
	return service.RequestContext{
		IP:                 c.ClientIP(),
		UserAgent:          c.Request.UserAgent(),
		Country:            optionalHeader(c, "X-Geo-Country"),
		City:               optionalHeader(c, "X-Geo-City"),
		PassphraseVerified: verified,
	}
}

func (h *Handler) countSlug(ctx context.Context, req *model.CreateLinkRequest) {
	mode := "generated"
	if req.CustomSlug != "" {
		mode = "custom"
	}
	h.metrics.SlugsGenerated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode)))
}

func optionalHeader(c *gin.Context, name string) *string {
	if v := c.GetHeader(name); v != "" {
		return &v
	}
	return nil
}

// linkResponse renders a link, resolving the short URL host through the
// link's namespace.
func (h *Handler) linkResponse(ctx context.Context, link *model.Link) model.LinkResponse {
	shortURL := h.baseURL + "/" + link.Slug
	if link.CustomDomainID != nil {
		if domain, err := h.domains.GetByID(ctx, *link.CustomDomainID); err == nil {
			shortURL = "https://" + domain.Domain + "/" + link.Slug
		}
	}

	resp := model.LinkResponse{
		ID:          link.ID.String(),
		Slug:        link.Slug,
		OriginalURL: link.OriginalURL,
		ShortURL:    shortURL,
		Title:       titleOf(link),
		HasPassword: link.HasPassword(),
		CreatedAt:   link.CreatedAt.Format(time.RFC3339),
	}
	if link.ExpiresAt != nil {
		resp.ExpiresAt = link.ExpiresAt.Format(time.RFC3339)
	}
	return resp
}

func titleOf(link *model.Link) string {
	if link.Title != nil {
		return *link.Title
	}
	return ""
}

func (h *Handler) linkError(c *gin.Context, err error, slug string) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		h.errorResponse(c, http.StatusNotFound, "link not found")
	default:
		h.logger.ErrorContext(c.Request.Context(), "unexpected error resolving link",
			slog.String("error", err.Error()),
			slog.String("slug", slug))
		h.errorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) createError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		h.errorResponse(c, http.StatusBadRequest, "invalid URL")
	case errors.Is(err, service.ErrInvalidSlug):
		h.errorResponse(c, http.StatusBadRequest, "invalid custom slug")
	case errors.Is(err, service.ErrReservedSlug):
		h.errorResponse(c, http.StatusBadRequest, "custom slug is reserved")
	case errors.Is(err, service.ErrInvalidExpiry):
		h.errorResponse(c, http.StatusBadRequest, "expiration date must be a future RFC 3339 timestamp")
	case errors.Is(err, service.ErrDomainNotFound):
		h.errorResponse(c, http.StatusBadRequest, "custom domain not found or not verified")
	case errors.Is(err, service.ErrSlugTaken):
		h.errorResponse(c, http.StatusConflict, "slug already taken")
	default:
		h.internalError(c, err, "creating link")
	}
}

func (h *Handler) updateError(c *gin.Context, err error, slug string) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		h.errorResponse(c, http.StatusNotFound, "link not found")
	case errors.Is(err, service.ErrInvalidURL):
		h.errorResponse(c, http.StatusBadRequest, "invalid URL")
	case errors.Is(err, service.ErrInvalidExpiry):
		h.errorResponse(c, http.StatusBadRequest, "expiration date must be a future RFC 3339 timestamp")
	default:
		h.logger.ErrorContext(c.Request.Context(), "unexpected error updating link",
			slog.String("error", err.Error()),
			slog.String("slug", slug))
		h.errorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) internalError(c *gin.Context, err error, during string) {
	h.logger.ErrorContext(c.Request.Context(), "unexpected error "+during,
		slog.String("error", err.Error()))
	h.errorResponse(c, http.StatusInternalServerError, "internal server error")
}

func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, model.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
