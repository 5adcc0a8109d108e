package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nahpet/shortener/internal/model"
)

// ClickRepository handles database operations for click events.
type ClickRepository struct {
	db *pgxpool.Pool
}

// NewClickRepository creates a new click repository.
func NewClickRepository(db *pgxpool.Pool) *ClickRepository {
	return &ClickRepository{db: db}
}

// Insert appends one click event.
func (r *ClickRepository) Insert(ctx context.Context, click *model.ClickEvent) error {
	ctx, span := tracer.Start(ctx, "db.insert",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "INSERT"),
			attribute.String("db.sql.table", "clicks"),
		),
	)
	defer span.End()

	query := `
		INSERT INTO clicks (id, link_id, ip, user_agent, country, city)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		click.ID, click.LinkID, click.IP, click.UserAgent, click.Country, click.City,
	).Scan(&click.CreatedAt)
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// CountByLink returns the total number of clicks recorded for a link.
func (r *ClickRepository) CountByLink(ctx context.Context, linkID uuid.UUID) (int64, error) {
	ctx, span := tracer.Start(ctx, "db.select",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.sql.table", "clicks"),
		),
	)
	defer span.End()

	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clicks WHERE link_id = $1`, linkID).Scan(&count)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return count, nil
}

// ListRecentByLink returns the most recent click events for a link.
func (r *ClickRepository) ListRecentByLink(ctx context.Context, linkID uuid.UUID, limit int) ([]model.ClickEvent, error) {
	ctx, span := tracer.Start(ctx, "db.select",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.sql.table", "clicks"),
		),
	)
	defer span.End()

	query := `SELECT id, link_id, ip, user_agent, country, city, created_at
		FROM clicks
		WHERE link_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, linkID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	clicks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ClickEvent, error) {
		var c model.ClickEvent
		err := row.Scan(&c.ID, &c.LinkID, &c.IP, &c.UserAgent, &c.Country, &c.City, &c.CreatedAt)
		return c, err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return clicks, nil
}
