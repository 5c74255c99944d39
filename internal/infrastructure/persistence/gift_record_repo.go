package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gift_tracker/internal/domain"
	"gift_tracker/internal/domain/entity"
	"gift_tracker/internal/domain/value"
	"gift_tracker/pkg/errcodes"
)

type GiftRecordRepository struct {
	db *sqlx.DB
}

func NewGiftRecordRepository(db *sqlx.DB) *GiftRecordRepository {
	return &GiftRecordRepository{db: db}
}

// Create inserts the record and fills ID and CreatedAt from the database.
func (r *GiftRecordRepository) Create(ctx context.Context, record *entity.GiftRecord) error {
	query := `
		INSERT INTO gift_records (sender, gift_name, gift_image, repeat_count, count, recipient)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	row := r.db.QueryRowxContext(ctx, query,
		record.Sender,
		record.GiftName,
		record.GiftImage,
		record.RepeatCount,
		record.Count,
		record.Recipient.String(),
	)

	if err := row.Scan(&record.ID, &record.CreatedAt); err != nil {
		return fmt.Errorf("insert gift record: %w", err)
	}

	return nil
}

// List returns all records, most recent first. Ties on created_at are broken
// by id so the order is stable and matches the ingestor's prepend order.
func (r *GiftRecordRepository) List(ctx context.Context) ([]entity.GiftRecord, error) {
	query := `
		SELECT id, sender, gift_name, gift_image, repeat_count, count, recipient, created_at
		FROM gift_records
		ORDER BY created_at DESC, id DESC`

	var schemas []giftRecordSchema
	if err := r.db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, fmt.Errorf("list gift records: %w", err)
	}

	records := make([]entity.GiftRecord, 0, len(schemas))
	for i := range schemas {
		records = append(records, schemas[i].toDomain())
	}

	return records, nil
}

// UpdateRecipient reassigns the record. Last write wins; every other field
// is left untouched.
func (r *GiftRecordRepository) UpdateRecipient(
	ctx context.Context,
	id int64,
	recipient value.Recipient,
) (*entity.GiftRecord, error) {
	query := `
		UPDATE gift_records
		SET recipient = $1
		WHERE id = $2
		RETURNING id, sender, gift_name, gift_image, repeat_count, count, recipient, created_at`

	var schema giftRecordSchema
	if err := r.db.GetContext(ctx, &schema, query, recipient.String(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound(errcodes.GiftRecordNotFound, "gift record not found")
		}

		return nil, fmt.Errorf("update recipient: %w", err)
	}

	record := schema.toDomain()

	return &record, nil
}

// SumRepeatCountByType computes the per-type aggregate over all records.
func (r *GiftRecordRepository) SumRepeatCountByType(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT gift_name, SUM(repeat_count) AS total
		FROM gift_records
		GROUP BY gift_name`

	var schemas []typeTotalSchema
	if err := r.db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, fmt.Errorf("aggregate by type: %w", err)
	}

	totals := make(map[string]int64, len(schemas))
	for _, s := range schemas {
		totals[s.GiftName] = s.Total
	}

	return totals, nil
}

// SumCount returns the grand total over all records regardless of recipient.
func (r *GiftRecordRepository) SumCount(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(count), 0) FROM gift_records`

	var total int64
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("sum count: %w", err)
	}

	return total, nil
}
