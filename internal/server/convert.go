package server

import (
	"fmt"
	"time"

	"gift_tracker/internal/domain/entity"
	"gift_tracker/internal/domain/value"
	"gift_tracker/pkg/lox"
	"gift_tracker/pkg/rest"
)

func newRESTGiftRecord(record entity.GiftRecord) rest.GiftRecord {
	return rest.GiftRecord{
		ID:          record.ID,
		Sender:      record.Sender,
		GiftName:    record.GiftName,
		GiftImage:   record.GiftImage,
		RepeatCount: record.RepeatCount,
		Count:       record.Count,
		Recipient:   record.Recipient.String(),
		Timestamp:   record.CreatedAt.Format(time.RFC3339Nano),
	}
}

func newRESTGiftRecords(records []entity.GiftRecord) []rest.GiftRecord {
	return lox.Map(records, newRESTGiftRecord)
}

func newDomainGiftRecord(request rest.CreateGiftRecordRequest) (entity.GiftRecord, error) {
	recipient, err := value.ParseRecipient(request.Recipient)
	if err != nil {
		return entity.GiftRecord{}, fmt.Errorf("value.ParseRecipient: %w", err)
	}

	return entity.GiftRecord{
		Sender:      request.Sender,
		GiftName:    request.GiftName,
		GiftImage:   request.GiftImage,
		RepeatCount: request.RepeatCount,
		Count:       request.Count,
		Recipient:   recipient,
	}, nil
}
