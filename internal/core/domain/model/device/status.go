package device

import (
	"fmt"
	"strings"

	"orders/internal/pkg/errs"
)

// Status is the condition of a device as held by the inventory service.
type Status int

const (
	Unknown Status = iota
	GoodCondition
	Fair
	Occupied
	NeedsRepair
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:       "UNKNOWN",
		GoodCondition: "GOOD_CONDITION",
		Fair:          "FAIR",
		Occupied:      "OCCUPIED",
		NeedsRepair:   "NEEDS_REPAIR",
	}
}

// ParseStatus maps the inventory wire value onto Status, ignoring case.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	for s, str := range getStatusStrings() {
		if s != Unknown && str == normalized {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"device status is invalid",
		fmt.Errorf("%q is not a known device status", raw),
	)
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("device status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("device status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the inventory's name for the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsAvailable reports whether a device in this status can be rented out.
func (s Status) IsAvailable() bool {
	return s == GoodCondition || s == Fair
}
