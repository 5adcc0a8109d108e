package service

import "errors"

var (
	ErrInvalidURL     = errors.New("invalid URL format")
	ErrInvalidSlug    = errors.New("invalid slug format")
	ErrReservedSlug   = errors.New("slug is a reserved word")
	ErrSlugTaken      = errors.New("slug already taken")
	ErrLinkNotFound   = errors.New("link not found")
	ErrDomainNotFound = errors.New("custom domain not found or not verified")
	ErrInvalidExpiry  = errors.New("invalid expiration date")
)
