package value

import (
	"git.appkode.ru/pub/go/failure"

	"gift_tracker/pkg/errcodes"
)

// Recipient is the person a recorded gift is assigned to. The set is closed:
// a recipient is either one of the known names or empty (not yet assigned).
type Recipient string

const RecipientUnassigned Recipient = ""

//nolint:gochecknoglobals
var recipients = []Recipient{"Simi", "Hana", "Cindy", "Sakura", "Cherry"}

func (r Recipient) String() string {
	return string(r)
}

func (r Recipient) IsAssigned() bool {
	return r != RecipientUnassigned
}

// ParseRecipient validates membership in the closed recipient set. The empty
// string is accepted and means "not assigned yet".
func ParseRecipient(s string) (Recipient, error) {
	if s == "" {
		return RecipientUnassigned, nil
	}

	for _, r := range recipients {
		if string(r) == s {
			return r, nil
		}
	}

	return "", failure.NewInvalidArgumentError(
		"unknown recipient: "+s,
		failure.WithCode(errcodes.InvalidRecipient),
		failure.WithDescription("Recipient is not one of the known names"),
	)
}

// Recipients returns the fixed recipient set in display order.
func Recipients() []Recipient {
	result := make([]Recipient, len(recipients))
	copy(result, recipients)

	return result
}
