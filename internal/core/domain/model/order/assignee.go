package order

import (
	"errors"
	"fmt"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var ErrAssigneeIsNotConstructed = errors.New("Assignee must be created via NewAssignee")

// AssigneeType tells whether an order belongs to a single employee or to a group.
type AssigneeType int

const (
	UnknownAssignee AssigneeType = iota
	Employee
	Group
)

func getAssigneeTypeStrings() map[AssigneeType]string {
	return map[AssigneeType]string{
		UnknownAssignee: "UNKNOWN",
		Employee:        "EMPLOYEE",
		Group:           "GROUP",
	}
}

// ParseAssigneeType accepts EMPLOYEE or GROUP in any case.
func ParseAssigneeType(raw string) (AssigneeType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "EMPLOYEE":
		return Employee, nil
	case "GROUP":
		return Group, nil
	default:
		return UnknownAssignee, errs.NewValueIsInvalidErrorWithCause(
			"assigneeType",
			fmt.Errorf("%q is not a valid assignee type", raw),
		)
	}
}

// Validate accepts Employee and Group only.
func (t AssigneeType) Validate() error {
	if t != Employee && t != Group {
		return errs.NewValueIsInvalidErrorWithCause("assigneeType", fmt.Errorf("%d is not a valid assignee type", t))
	}
	return nil
}

// String returns the wire name.
func (t AssigneeType) String() string {
	if str, ok := getAssigneeTypeStrings()[t]; ok {
		return str
	}
	return "UNKNOWN"
}

// Assignee identifies who an order is rented to. It is immutable.
type Assignee struct {
	typ   AssigneeType
	id    kernel.UUID
	guard guard.ConstructorGuard
}

// NewAssignee joins the type and id errors.
func NewAssignee(typ AssigneeType, id kernel.UUID) (Assignee, error) {
	if err := errors.Join(typ.Validate(), id.Validate()); err != nil {
		return Assignee{}, err
	}
	return Assignee{typ: typ, id: id, guard: guard.NewConstructorGuard()}, nil
}

// Type and ID never change after construction.
func (a Assignee) Type() AssigneeType { return a.typ }
func (a Assignee) ID() kernel.UUID    { return a.id }

// Validate reports an Assignee that bypassed NewAssignee.
func (a Assignee) Validate() error {
	return a.guard.Validate(ErrAssigneeIsNotConstructed)
}
