package service

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"

	"github.com/nahpet/shortener/internal/model"
	"github.com/nahpet/shortener/internal/repository"
	"github.com/nahpet/shortener/internal/reserved"
)

// Resolver maps inbound hosts to namespaces and (namespace, slug) pairs to
// links, enforcing per-domain isolation and reserved-word shadowing.
type Resolver struct {
	links    LinkStore
	domains  DomainStore
	reserved *reserved.Registry
	logger   *slog.Logger

	primaryDomain string
	port          string
}

// NewResolver creates a resolver. primaryDomain is the hostname the
// application itself is served on; port is the listen port stripped during
// host normalization.
func NewResolver(links LinkStore, domains DomainStore, registry *reserved.Registry,
	primaryDomain, port string, logger *slog.Logger) *Resolver {
	return &Resolver{
		links:         links,
		domains:       domains,
		reserved:      registry,
		logger:        logger,
		primaryDomain: strings.ToLower(primaryDomain),
		port:          port,
	}
}

// ResolveNamespace classifies an inbound request host. The primary domain
// (with or without a port) and loopback development aliases map to the
// primary namespace; verified custom domains map to their own namespace;
// everything else, including hosts with an unverified domain row, is
// Unknown and must not be served.
func (r *Resolver) ResolveNamespace(ctx context.Context, host string) (model.Namespace, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return model.Unknown(), nil
	}
	host = strings.TrimSuffix(host, ":"+r.port)

	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}

	if isLoopback(hostname) {
		return model.Primary(), nil
	}
	if hostname == r.primaryDomain {
		return model.Primary(), nil
	}

	domain, err := r.domains.GetVerifiedByHost(ctx, host)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Unknown(), nil
		}
		return model.Unknown(), err
	}
	return model.Custom(domain), nil
}

// ResolveLink fetches the link at (namespace, slug). On custom domains,
// reserved words never resolve even when a row exists, and a link whose
// owner differs from the domain's owner is treated as absent; both cases
// are indistinguishable from a plain miss to the caller.
func (r *Resolver) ResolveLink(ctx context.Context, ns model.Namespace, slug string) (*model.Link, error) {
	switch ns.Kind {
	case model.NamespacePrimary:
		return r.lookup(ctx, slug, ns)

	case model.NamespaceCustom:
		if r.reserved.IsReserved(slug) {
			return nil, ErrLinkNotFound
		}
		link, err := r.lookup(ctx, slug, ns)
		if err != nil {
			return nil, err
		}
		if link.OwnerID != ns.Domain.OwnerID {
			r.logger.WarnContext(ctx, "link owner does not match domain owner",
				slog.String("slug", slug),
				slog.String("domain", ns.Domain.Domain))
			return nil, ErrLinkNotFound
		}
		return link, nil

	default:
		// Unknown namespaces must be rejected before link resolution.
		return nil, ErrLinkNotFound
	}
}

func (r *Resolver) lookup(ctx context.Context, slug string, ns model.Namespace) (*model.Link, error) {
	link, err := r.links.GetBySlug(ctx, slug, ns.DomainID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}

func isLoopback(hostname string) bool {
	switch hostname {
	case "localhost", "127.0.0.1", "0.0.0.0", "::1":
		return true
	}
	return strings.HasSuffix(hostname, ".localhost")
}
