package entity

import (
	"time"

	"gift_tracker/internal/domain/value"
)

// GiftRecord is one persisted gift from the live feed. Count is derived at
// ingestion time (diamond value multiplied by the repeat count) and never
// recomputed afterwards; Recipient is the only field mutated post-creation.
type GiftRecord struct {
	ID          int64           `json:"id"`
	Sender      string          `json:"sender"`
	GiftName    string          `json:"giftName"`
	GiftImage   string          `json:"giftImage"`
	RepeatCount int             `json:"repeatCount"`
	Count       int64           `json:"count"`
	Recipient   value.Recipient `json:"recipient"`
	CreatedAt   time.Time       `json:"timestamp"`
}
