package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahpet/shortener/internal/model"
)

func newTestResolver(t *testing.T, store *fakeLinkStore, domains *fakeDomainStore) *Resolver {
	t.Helper()
	return NewResolver(store, domains, testRegistry(), "short.example.com", "8080", testLogger())
}

func TestResolver_ResolveNamespace(t *testing.T) {
	ctx := context.Background()
	verified := &model.CustomDomain{ID: uuid.New(), Domain: "go.acme.com", Verified: true, OwnerID: uuid.New()}
	domains := &fakeDomainStore{domains: []*model.CustomDomain{
		verified,
		{ID: uuid.New(), Domain: "pending.acme.com", Verified: false, OwnerID: uuid.New()},
	}}
	resolver := newTestResolver(t, newFakeLinkStore(), domains)

	tests := []struct {
		name string
		host string
		want model.NamespaceKind
	}{
		{"primary domain", "short.example.com", model.NamespacePrimary},
		{"primary domain with listen port", "short.example.com:8080", model.NamespacePrimary},
		{"primary domain uppercase", "SHORT.EXAMPLE.COM", model.NamespacePrimary},
		{"localhost", "localhost", model.NamespacePrimary},
		{"localhost with port", "localhost:8080", model.NamespacePrimary},
		{"loopback address", "127.0.0.1:8080", model.NamespacePrimary},
		{"localhost subdomain", "app.localhost:3000", model.NamespacePrimary},
		{"verified custom domain", "go.acme.com", model.NamespaceCustom},
		{"unverified custom domain", "pending.acme.com", model.NamespaceUnknown},
		{"unrecognized host", "evil.example.org", model.NamespaceUnknown},
		{"empty host", "", model.NamespaceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, err := resolver.ResolveNamespace(ctx, tt.host)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ns.Kind)
		})
	}

	t.Run("custom namespace carries its domain", func(t *testing.T) {
		ns, err := resolver.ResolveNamespace(ctx, "go.acme.com")
		require.NoError(t, err)
		require.NotNil(t, ns.Domain)
		assert.Equal(t, verified.ID, ns.Domain.ID)
	})
}

func TestResolver_ResolveLink_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	domain := &model.CustomDomain{ID: uuid.New(), Domain: "go.acme.com", Verified: true, OwnerID: owner}
	store := newFakeLinkStore()
	resolver := newTestResolver(t, store, &fakeDomainStore{domains: []*model.CustomDomain{domain}})

	require.NoError(t, store.Create(ctx, &model.Link{
		ID: uuid.New(), Slug: "sale", OriginalURL: "https://primary.example.com", OwnerID: owner,
	}))
	require.NoError(t, store.Create(ctx, &model.Link{
		ID: uuid.New(), Slug: "sale", OriginalURL: "https://custom.example.com",
		OwnerID: owner, CustomDomainID: &domain.ID,
	}))

	primary, err := resolver.ResolveLink(ctx, model.Primary(), "sale")
	require.NoError(t, err)
	assert.Equal(t, "https://primary.example.com", primary.OriginalURL)

	custom, err := resolver.ResolveLink(ctx, model.Custom(domain), "sale")
	require.NoError(t, err)
	assert.Equal(t, "https://custom.example.com", custom.OriginalURL)
}

func TestResolver_ResolveLink_ReservedShadowing(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	domain := &model.CustomDomain{ID: uuid.New(), Domain: "go.acme.com", Verified: true, OwnerID: owner}
	store := newFakeLinkStore()
	resolver := newTestResolver(t, store, &fakeDomainStore{domains: []*model.CustomDomain{domain}})

	// A row exists under a reserved word on the custom domain; it must not
	// resolve there, but reserved words do not shadow on the primary domain.
	require.NoError(t, store.Create(ctx, &model.Link{
		ID: uuid.New(), Slug: "admin", OriginalURL: "https://sneaky.example.com",
		OwnerID: owner, CustomDomainID: &domain.ID,
	}))

	_, err := resolver.ResolveLink(ctx, model.Custom(domain), "admin")
	assert.ErrorIs(t, err, ErrLinkNotFound)

	_, err = resolver.ResolveLink(ctx, model.Primary(), "admin")
	assert.ErrorIs(t, err, ErrLinkNotFound, "no primary row exists under the reserved word")
}

func TestResolver_ResolveLink_OwnerMismatch(t *testing.T) {
	ctx := context.Background()
	domain := &model.CustomDomain{ID: uuid.New(), Domain: "go.acme.com", Verified: true, OwnerID: uuid.New()}
	store := newFakeLinkStore()
	resolver := newTestResolver(t, store, &fakeDomainStore{domains: []*model.CustomDomain{domain}})

	require.NoError(t, store.Create(ctx, &model.Link{
		ID: uuid.New(), Slug: "orphan", OriginalURL: "https://example.com",
		OwnerID: uuid.New(), CustomDomainID: &domain.ID,
	}))

	_, err := resolver.ResolveLink(ctx, model.Custom(domain), "orphan")
	assert.ErrorIs(t, err, ErrLinkNotFound, "owner mismatch must look like a plain miss")
}

func TestResolver_ResolveLink_UnknownNamespace(t *testing.T) {
	ctx := context.Background()
	store := newFakeLinkStore()
	resolver := newTestResolver(t, store, &fakeDomainStore{})

	require.NoError(t, store.Create(ctx, &model.Link{
		ID: uuid.New(), Slug: "sale", OriginalURL: "https://example.com", OwnerID: uuid.New(),
	}))

	_, err := resolver.ResolveLink(ctx, model.Unknown(), "sale")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}
