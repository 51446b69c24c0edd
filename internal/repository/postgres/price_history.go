package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	"github.com/ckcelina/my-wishlist-sub005/pkg/database"
	apperrors "github.com/ckcelina/my-wishlist-sub005/pkg/errors"
)

// PriceHistoryRepository implements repository.PriceHistoryRepository using
// PostgreSQL. Price records are append-only.
type PriceHistoryRepository struct {
	pool database.DBTX
}

// NewPriceHistoryRepository creates a new PostgreSQL-backed price ledger.
func NewPriceHistoryRepository(pool database.DBTX) *PriceHistoryRepository {
	return &PriceHistoryRepository{pool: pool}
}

// Append inserts a new price record for an item.
func (r *PriceHistoryRepository) Append(ctx context.Context, rec *domain.PriceRecord) error {
	query := `
		INSERT INTO price_records (id, item_id, price_cents, currency, recorded_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, rec.ID, rec.ItemID, rec.PriceCents, rec.Currency, rec.RecordedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("item", rec.ItemID)
		}
		return fmt.Errorf("append price record: %w", err)
	}

	return nil
}

// Oldest returns the earliest recorded price for an item.
func (r *PriceHistoryRepository) Oldest(ctx context.Context, itemID string) (*domain.PriceRecord, error) {
	query := `
		SELECT id, item_id, price_cents, currency, recorded_at
		FROM price_records
		WHERE item_id = $1
		ORDER BY recorded_at ASC, id ASC
		LIMIT 1`

	var rec domain.PriceRecord
	err := r.pool.QueryRow(ctx, query, itemID).Scan(
		&rec.ID, &rec.ItemID, &rec.PriceCents, &rec.Currency, &rec.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan oldest price record: %w", err)
	}

	return &rec, nil
}

// List returns an item's price records, newest first, with the total count.
func (r *PriceHistoryRepository) List(ctx context.Context, itemID string, page, perPage int) ([]domain.PriceRecord, int, error) {
	query := `
		SELECT id, item_id, price_cents, currency, recorded_at,
			   count(*) OVER() AS total_count
		FROM price_records
		WHERE item_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	rows, err := r.pool.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list price records: %w", err)
	}
	defer rows.Close()

	var totalCount int
	records := make([]domain.PriceRecord, 0)

	for rows.Next() {
		var rec domain.PriceRecord
		if err := rows.Scan(
			&rec.ID, &rec.ItemID, &rec.PriceCents, &rec.Currency, &rec.RecordedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan price record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate price record rows: %w", err)
	}

	return records, totalCount, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}
