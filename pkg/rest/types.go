package rest

// GiftRecord is the wire form of a stored gift.
type GiftRecord struct {
	ID          int64  `json:"id"`
	Sender      string `json:"sender"`
	GiftName    string `json:"giftName"`
	GiftImage   string `json:"giftImage"`
	RepeatCount int    `json:"repeatCount"`
	Count       int64  `json:"count"`
	Recipient   string `json:"recipient"`
	Timestamp   string `json:"timestamp"`
}

// CreateGiftRecordRequest is the POST /api/gifts body. Count arrives already
// multiplied; it is never recomputed server-side.
type CreateGiftRecordRequest struct {
	Sender      string `json:"sender" validate:"required"`
	GiftName    string `json:"giftName" validate:"required"`
	GiftImage   string `json:"giftImage"`
	RepeatCount int    `json:"repeatCount" validate:"gte=1"`
	Count       int64  `json:"count" validate:"gte=0"`
	Recipient   string `json:"recipient"`
}

// AssignRecipientRequest is the PUT /api/gifts/{id} body. An empty recipient
// puts the record back to unassigned.
type AssignRecipientRequest struct {
	Recipient string `json:"recipient"`
}

// FeedStatus reports the ingestor connection state.
type FeedStatus struct {
	Status string `json:"status"`
}

// SnapshotAccepted is returned when an export snapshot task is enqueued.
type SnapshotAccepted struct {
	TaskID string `json:"taskId"`
}

// Error is the common error envelope.
type Error struct {
	Code ErrorCode `json:"code"`

	// Message is safe to show in the UI.
	Message string `json:"message"`
}

type ErrorCode string
