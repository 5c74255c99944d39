package domain

import (
	"git.appkode.ru/pub/go/failure"
)

// Error constructors shared by repositories and services. They produce
// failure errors so the HTTP reply layer can map them to status codes
// without knowing about this package.

func NewNotFound(code failure.ErrorCode, message string) error {
	return failure.NewNotFoundError(
		message,
		failure.WithCode(code),
		failure.WithDescription(message),
	)
}

func NewInvalidArgument(code failure.ErrorCode, message string) error {
	return failure.NewInvalidArgumentError(
		message,
		failure.WithCode(code),
		failure.WithDescription(message),
	)
}
