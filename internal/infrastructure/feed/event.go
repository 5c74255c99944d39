package feed

import (
	"encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"gift_tracker/internal/domain"
	"gift_tracker/internal/domain/entity"
	"gift_tracker/internal/domain/value"
	"gift_tracker/pkg/errcodes"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const EventGift = "gift"

// Gift type 1 is the combo kind: the feed streams intermediate frames while
// the viewer keeps tapping, and only the frame with repeatEnd carries the
// final cumulative repeat count.
const comboGiftType = 1

// Envelope is one feed frame. Data stays raw until the event tag is known.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type GiftData struct {
	Nickname       string   `json:"nickname"`
	GiftName       string   `json:"giftName"`
	RepeatCount    int      `json:"repeatCount"`
	RepeatEnd      bool     `json:"repeatEnd"`
	DiamondCount   int64    `json:"diamondCount"`
	Gift           GiftInfo `json:"gift"`
	GiftPictureURL string   `json:"giftPictureUrl"`
}

type GiftInfo struct {
	GiftType int `json:"gift_type"`
}

func ParseEnvelope(payload []byte) (Envelope, error) {
	var envelope Envelope
	if err := codec.Unmarshal(payload, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	return envelope, nil
}

func (e Envelope) GiftData() (GiftData, error) {
	var data GiftData
	if err := codec.Unmarshal(e.Data, &data); err != nil {
		return GiftData{}, fmt.Errorf("unmarshal gift data: %w", err)
	}

	return data, nil
}

// Qualifies reports whether this frame should be persisted. Combo gifts are
// recorded once at sequence end, everything else immediately; recording
// intermediate combo frames would double-count the burst.
func (g GiftData) Qualifies() bool {
	return g.RepeatEnd || g.Gift.GiftType != comboGiftType
}

// Value is the total diamond value of the frame, multiplied out once here
// and stored as-is.
func (g GiftData) Value() int64 {
	return g.DiamondCount * int64(g.RepeatCount)
}

func (g GiftData) Validate() error {
	if g.RepeatCount < 1 {
		return domain.NewInvalidArgument(errcodes.InvalidGiftEvent, "repeatCount must be >= 1")
	}

	if g.DiamondCount < 0 {
		return domain.NewInvalidArgument(errcodes.InvalidGiftEvent, "diamondCount must be >= 0")
	}

	return nil
}

// Record normalizes the frame into a GiftRecord with no recipient yet.
func (g GiftData) Record() entity.GiftRecord {
	return entity.GiftRecord{
		Sender:      g.Nickname,
		GiftName:    g.GiftName,
		GiftImage:   g.GiftPictureURL,
		RepeatCount: g.RepeatCount,
		Count:       g.Value(),
		Recipient:   value.RecipientUnassigned,
	}
}
