package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	GiftRecordNotFound  failure.ErrorCode = "GiftRecordNotFound"
	InvalidGiftRecordID failure.ErrorCode = "InvalidGiftRecordID"
	InvalidRecipient    failure.ErrorCode = "InvalidRecipient"
	InvalidGiftEvent    failure.ErrorCode = "InvalidGiftEvent"
)
