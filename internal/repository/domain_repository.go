package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nahpet/shortener/internal/model"
)

// DomainRepository handles database operations for custom domains.
type DomainRepository struct {
	db *pgxpool.Pool
}

// NewDomainRepository creates a new custom-domain repository.
func NewDomainRepository(db *pgxpool.Pool) *DomainRepository {
	return &DomainRepository{db: db}
}

// GetVerifiedByHost retrieves the verified custom domain for an exact
// hostname. Unverified rows are deliberately filtered at the query so a
// claimed-but-unverified domain is indistinguishable from an absent one.
func (r *DomainRepository) GetVerifiedByHost(ctx context.Context, host string) (*model.CustomDomain, error) {
	ctx, span := tracer.Start(ctx, "db.select",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.sql.table", "custom_domains"),
			attribute.String("host", host),
		),
	)
	defer span.End()

	query := `SELECT id, domain, verified, owner_id, created_at
		FROM custom_domains
		WHERE domain = $1 AND verified = TRUE`
	var d model.CustomDomain
	err := r.db.QueryRow(ctx, query, host).Scan(&d.ID, &d.Domain, &d.Verified, &d.OwnerID, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, err
	}
	return &d, nil
}

// GetByID retrieves a custom domain by id, verified or not. Link creation
// uses this to validate ownership and verification explicitly.
func (r *DomainRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CustomDomain, error) {
	ctx, span := tracer.Start(ctx, "db.select",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.sql.table", "custom_domains"),
		),
	)
	defer span.End()

	query := `SELECT id, domain, verified, owner_id, created_at FROM custom_domains WHERE id = $1`
	var d model.CustomDomain
	err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.Domain, &d.Verified, &d.OwnerID, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, err
	}
	return &d, nil
}
