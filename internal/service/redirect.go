package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nahpet/shortener/internal/model"
)

// Outcome is the terminal state of a redirect decision.
type Outcome string

const (
	OutcomeExpired           Outcome = "expired"
	OutcomePasswordChallenge Outcome = "password_challenge"
	OutcomeRedirect          Outcome = "redirect"
)

// Decision is the result of evaluating a resolved link for one request.
// Destination is only set for OutcomeRedirect.
type Decision struct {
	Outcome     Outcome
	Destination string
}

// RequestContext carries the per-request facts the decision depends on.
// PassphraseVerified is true once the visitor has passed the password
// challenge for this link.
type RequestContext struct {
	IP                 string
	UserAgent          string
	Country            *string
	City               *string
	PassphraseVerified bool
}

// RedirectEngine turns a resolved link plus request context into a
// decision, recording the click as a side effect of successful redirects.
type RedirectEngine struct {
	clicks ClickRecorder
	logger *slog.Logger
	now    func() time.Time
}

func NewRedirectEngine(clicks ClickRecorder, logger *slog.Logger) *RedirectEngine {
	return &RedirectEngine{
		clicks: clicks,
		logger: logger,
		now:    time.Now,
	}
}

// Decide evaluates expiry, then the password gate, then redirects. A click
// is recorded only when the outcome is a redirect; recording failures are
// logged and never block the visitor. The destination is rewritten to a
// native app URI when the visitor's platform and the URL both qualify.
func (e *RedirectEngine) Decide(ctx context.Context, link *model.Link, req RequestContext) Decision {
	if link.ExpiresAt != nil && !link.ExpiresAt.After(e.now()) {
		return Decision{Outcome: OutcomeExpired}
	}

	if link.HasPassword() && !req.PassphraseVerified {
		return Decision{Outcome: OutcomePasswordChallenge}
	}

	e.recordClick(ctx, link, req)

	destination := link.OriginalURL
	if deep := DeepLink(link.OriginalURL, req.UserAgent); deep != "" {
		destination = deep
	}
	return Decision{Outcome: OutcomeRedirect, Destination: destination}
}

func (e *RedirectEngine) recordClick(ctx context.Context, link *model.Link, req RequestContext) {
	click := &model.ClickEvent{
		LinkID:    link.ID,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		Country:   req.Country,
		City:      req.City,
	}
	if err := e.clicks.Record(ctx, click); err != nil {
		e.logger.WarnContext(ctx, "failed to record click",
			slog.String("slug", link.Slug),
			slog.Any("error", err))
	}
}
