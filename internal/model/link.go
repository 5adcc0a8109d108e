package model

import (
	"time"

	"github.com/google/uuid"
)

// Link represents one shortened URL. A link lives in exactly one slug
// namespace: the primary domain (CustomDomainID == nil) or one verified
// custom domain.
type Link struct {
	ID             uuid.UUID  `json:"id"`
	Slug           string     `json:"slug"`
	OriginalURL    string     `json:"original_url"`
	Title          *string    `json:"title,omitempty"`
	PasswordHash   *string    `json:"-"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	OwnerID        uuid.UUID  `json:"owner_id"`
	CustomDomainID *uuid.UUID `json:"custom_domain_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// HasPassword reports whether resolving this link requires a passphrase.
func (l *Link) HasPassword() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// CustomDomain represents a tenant-owned hostname. Only verified domains
// participate in routing; unverified rows are invisible to resolution.
type CustomDomain struct {
	ID        uuid.UUID `json:"id"`
	Domain    string    `json:"domain"`
	Verified  bool      `json:"verified"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ClickEvent is an immutable record appended when a resolution delivers a
// redirect. Country and city are optional enrichment supplied by the caller.
type ClickEvent struct {
	ID        uuid.UUID `json:"id"`
	LinkID    uuid.UUID `json:"link_id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Country   *string   `json:"country,omitempty"`
	City      *string   `json:"city,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
