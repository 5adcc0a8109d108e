package repository

import (
	"errors"

	"go.opentelemetry.io/otel"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrSlugConflict = errors.New("slug already exists in namespace")
)

var tracer = otel.Tracer("github.com/nahpet/shortener/internal/repository")

// uniqueViolation is the PostgreSQL error code for unique-constraint hits.
const uniqueViolation = "23505"
