package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nahpet/shortener/internal/model"
)

// LinkRepository handles database operations for links.
type LinkRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewLinkRepository creates a new link repository.
func NewLinkRepository(db *pgxpool.Pool, logger *slog.Logger) *LinkRepository {
	return &LinkRepository{db: db, logger: logger}
}

const linkColumns = `id, slug, original_url, title, password_hash, expires_at, owner_id, custom_domain_id, created_at`

func scanLink(row pgx.Row) (*model.Link, error) {
	var l model.Link
	err := row.Scan(&l.ID, &l.Slug, &l.OriginalURL, &l.Title, &l.PasswordHash,
		&l.ExpiresAt, &l.OwnerID, &l.CustomDomainID, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a new link. A unique-constraint hit on the per-namespace
// slug index is mapped to ErrSlugConflict so callers can handle races
// between the generator's pre-check and the insert.
func (r *LinkRepository) Create(ctx context.Context, link *model.Link) error {
	ctx, span := tracer.Start(ctx, "db.insert",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "INSERT"),
			attribute.String("db.sql.table", "links"),
			attribute.String("slug", link.Slug),
		),
	)
	defer span.End()

	query := `
		INSERT INTO links (id, slug, original_url, title, password_hash, expires_at, owner_id, custom_domain_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		link.ID,
		link.Slug,
		link.OriginalURL,
		link.Title,
		link.PasswordHash,
		link.ExpiresAt,
		link.OwnerID,
		link.CustomDomainID,
	).Scan(&link.CreatedAt)

	if err != nil {
		span.RecordError(err)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlugConflict
		}
		return err
	}

	return nil
}

// GetBySlug retrieves the link at (slug, namespace). domainID nil means the
// primary namespace. The per-namespace unique index guarantees at most one
// row; should the data layer ever return more, the oldest row wins and the
// anomaly is logged.
func (r *LinkRepository) GetBySlug(ctx context.Context, slug string, domainID *uuid.UUID) (*model.Link, error) {
	ctx, span := tracer.Start(ctx, "db.select",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.sql.table", "links"),
			attribute.String("slug", slug),
		),
	)
	defer span.End()

	query := `SELECT ` + linkColumns + `
		FROM links
		WHERE slug = $1 AND custom_domain_id IS NOT DISTINCT FROM $2
		ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, slug, domainID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Link, error) {
		return scanLink(row)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(links) == 0 {
		return nil, ErrNotFound
	}
	if len(links) > 1 {
		r.logger.ErrorContext(ctx, "duplicate links for namespace key",
			slog.String("slug", slug),
			slog.Int("rows", len(links)))
	}
	return links[0], nil
}

// GetByID retrieves a link by its id.
func (r *LinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Link, error) {
	ctx, span := tracer.Start(ctx, "db.select",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.sql.table", "links"),
		),
	)
	defer span.End()

	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`
	link, err := scanLink(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, err
	}
	return link, nil
}

// FindBySlugs returns the links occupying any of the given slugs within one
// namespace. Used as the batch occupancy check during slug generation.
func (r *LinkRepository) FindBySlugs(ctx context.Context, slugs []string, domainID *uuid.UUID) ([]model.Link, error) {
	ctx, span := tracer.Start(ctx, "db.select",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.sql.table", "links"),
			attribute.Int("batch_size", len(slugs)),
		),
	)
	defer span.End()

	query := `SELECT ` + linkColumns + `
		FROM links
		WHERE slug = ANY($1) AND custom_domain_id IS NOT DISTINCT FROM $2`
	rows, err := r.db.Query(ctx, query, slugs, domainID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Link, error) {
		l, err := scanLink(row)
		if err != nil {
			return model.Link{}, err
		}
		return *l, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return links, nil
}

// Update rewrites the mutable fields of a link. The slug and namespace
// are immutable after creation.
func (r *LinkRepository) Update(ctx context.Context, link *model.Link) error {
	ctx, span := tracer.Start(ctx, "db.update",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "UPDATE"),
			attribute.String("db.sql.table", "links"),
			attribute.String("slug", link.Slug),
		),
	)
	defer span.End()

	query := `
		UPDATE links
		SET original_url = $2, title = $3, password_hash = $4, expires_at = $5
		WHERE id = $1 AND owner_id = $6
	`
	result, err := r.db.Exec(ctx, query,
		link.ID,
		link.OriginalURL,
		link.Title,
		link.PasswordHash,
		link.ExpiresAt,
		link.OwnerID,
	)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner returns all links owned by the given account, newest first.
func (r *LinkRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Link, error) {
	ctx, span := tracer.Start(ctx, "db.select",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.sql.table", "links"),
		),
	)
	defer span.End()

	query := `SELECT ` + linkColumns + ` FROM links WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Link, error) {
		l, err := scanLink(row)
		if err != nil {
			return model.Link{}, err
		}
		return *l, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return links, nil
}

// Delete removes a link owned by ownerID. Associated click events are
// removed by the schema's ON DELETE CASCADE.
func (r *LinkRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "db.delete",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "DELETE"),
			attribute.String("db.sql.table", "links"),
		),
	)
	defer span.End()

	result, err := r.db.Exec(ctx, `DELETE FROM links WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
