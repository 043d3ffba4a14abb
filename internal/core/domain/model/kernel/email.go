package kernel

import (
	"net/mail"
	"strings"

	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var ErrEmailIsNotConstructed = errs.NewValueIsRequiredError("Email must be created via NewEmail")

// Email is a trimmed, syntactically valid recipient address.
type Email struct {
	address string
	guard   guard.ConstructorGuard
}

// NewEmail trims raw and accepts only a bare address, without display name.
func NewEmail(raw string) (Email, error) {
	address := strings.TrimSpace(raw)
	if address == "" {
		return Email{}, errs.NewValueIsRequiredError("email")
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return Email{}, errs.NewValueIsInvalidErrorWithCause("email", err)
	}
	if parsed.Address != address {
		return Email{}, errs.NewValueIsInvalidError("email")
	}
	return Email{address: address, guard: guard.NewConstructorGuard()}, nil
}

// String returns the address as given.
func (e Email) String() string {
	return e.address
}

// IsEqual compares addresses case-insensitively.
func (e Email) IsEqual(other Email) bool {
	return strings.EqualFold(e.address, other.address)
}

// Validate reports an Email that bypassed NewEmail.
func (e Email) Validate() error {
	return e.guard.Validate(ErrEmailIsNotConstructed)
}

// UniqueEmails parses, validates and de-duplicates raw addresses in order.
// Blank and invalid entries are dropped and returned separately.
func UniqueEmails(raw []string) (emails []Email, rejected []string) {
	seen := make(map[string]struct{}, len(raw))
	emails = make([]Email, 0, len(raw))
	for _, r := range raw {
		email, err := NewEmail(r)
		if err != nil {
			rejected = append(rejected, r)
			continue
		}
		key := strings.ToLower(email.address)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		emails = append(emails, email)
	}
	return emails, rejected
}

// EmailStrings flattens emails for serialization.
func EmailStrings(emails []Email) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		out = append(out, e.address)
	}
	return out
}
