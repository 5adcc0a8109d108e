package model

import "github.com/google/uuid"

// NamespaceKind classifies the slug-uniqueness scope an inbound host maps to.
type NamespaceKind string

const (
	// NamespacePrimary is the application's own domain.
	NamespacePrimary NamespaceKind = "primary"
	// NamespaceCustom is one verified custom domain.
	NamespaceCustom NamespaceKind = "custom"
	// NamespaceUnknown is a host this deployment does not serve. Callers
	// must not resolve links under it.
	NamespaceUnknown NamespaceKind = "unknown"
)

// Namespace is the result of resolving an inbound request host.
// Domain is set only when Kind == NamespaceCustom.
type Namespace struct {
	Kind   NamespaceKind
	Domain *CustomDomain
}

// Primary is the namespace of the application's main domain.
func Primary() Namespace {
	return Namespace{Kind: NamespacePrimary}
}

// Custom wraps a verified custom domain as a namespace.
func Custom(d *CustomDomain) Namespace {
	return Namespace{Kind: NamespaceCustom, Domain: d}
}

// Unknown is the rejection namespace.
func Unknown() Namespace {
	return Namespace{Kind: NamespaceUnknown}
}

// DomainID returns the custom-domain id scoping slug uniqueness, or nil for
// the primary namespace.
func (n Namespace) DomainID() *uuid.UUID {
	if n.Kind == NamespaceCustom && n.Domain != nil {
		id := n.Domain.ID
		return &id
	}
	return nil
}
