package model

import "time"

// CreateLinkRequest is the request body for creating a short link.
type CreateLinkRequest struct {
	URL            string `json:"url" binding:"required"`
	CustomSlug     string `json:"custom_slug,omitempty"`
	Title          string `json:"title,omitempty"`
	Password       string `json:"password,omitempty"`
	ExpiresAt      string `json:"expires_at,omitempty"` // RFC 3339
	CustomDomainID string `json:"custom_domain_id,omitempty"`
}

// UpdateLinkRequest carries a partial link update. Pointer fields
// distinguish "leave unchanged" (absent) from "clear" (empty string).
type UpdateLinkRequest struct {
	URL       *string `json:"url,omitempty"`
	Title     *string `json:"title,omitempty"`
	Password  *string `json:"password,omitempty"`
	ExpiresAt *string `json:"expires_at,omitempty"` // RFC 3339
}

// LinkResponse is the JSON shape returned for a created or fetched link.
type LinkResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	OriginalURL string `json:"original_url"`
	ShortURL    string `json:"short_url"`
	Title       string `json:"title,omitempty"`
	HasPassword bool   `json:"has_password"`
	CreatedAt   string `json:"created_at"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

// BulkCreateRequest carries several link creations in one call.
type BulkCreateRequest struct {
	Links []CreateLinkRequest `json:"links" binding:"required"`
}

// BulkCreateResult reports the outcome of one entry of a bulk creation.
type BulkCreateResult struct {
	Index int           `json:"index"`
	Link  *LinkResponse `json:"link,omitempty"`
	Error string        `json:"error,omitempty"`
}

// BulkDeleteRequest names the slugs to delete in one call.
type BulkDeleteRequest struct {
	Slugs []string `json:"slugs" binding:"required"`
}

// BulkDeleteResponse reports per-slug outcomes of a bulk delete.
type BulkDeleteResponse struct {
	Deleted []string          `json:"deleted"`
	Errors  []BulkDeleteError `json:"errors"`
}

// BulkDeleteError is one failed entry of a bulk delete.
type BulkDeleteError struct {
	Slug  string `json:"slug"`
	Error string `json:"error"`
}

// StatsResponse summarizes click activity for one link.
type StatsResponse struct {
	Slug        string         `json:"slug"`
	TotalClicks int64          `json:"total_clicks"`
	Recent      []ClickSummary `json:"recent"`
}

// ClickSummary is one click event as exposed by the stats endpoint.
type ClickSummary struct {
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Country   string    `json:"country,omitempty"`
	City      string    `json:"city,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PasswordChallengeResponse is rendered instead of a redirect when a link
// is password protected.
type PasswordChallengeResponse struct {
	Slug        string `json:"slug"`
	Title       string `json:"title,omitempty"`
	HasPassword bool   `json:"has_password"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
