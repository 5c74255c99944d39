package persistence

import (
	"time"

	"gift_tracker/internal/domain/entity"
	"gift_tracker/internal/domain/value"
)

// giftRecordSchema maps a gift_records row.
type giftRecordSchema struct {
	ID          int64     `db:"id"`
	Sender      string    `db:"sender"`
	GiftName    string    `db:"gift_name"`
	GiftImage   string    `db:"gift_image"`
	RepeatCount int       `db:"repeat_count"`
	Count       int64     `db:"count"`
	Recipient   string    `db:"recipient"`
	CreatedAt   time.Time `db:"created_at"`
}

func (s *giftRecordSchema) toDomain() entity.GiftRecord {
	return entity.GiftRecord{
		ID:          s.ID,
		Sender:      s.Sender,
		GiftName:    s.GiftName,
		GiftImage:   s.GiftImage,
		RepeatCount: s.RepeatCount,
		Count:       s.Count,
		Recipient:   value.Recipient(s.Recipient),
		CreatedAt:   s.CreatedAt,
	}
}

// typeTotalSchema maps one row of the per-type aggregate query.
type typeTotalSchema struct {
	GiftName string `db:"gift_name"`
	Total    int64  `db:"total"`
}
