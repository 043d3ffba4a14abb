package ports

import (
	"context"
	"errors"

	"orders/internal/core/domain/model/kernel"
)

var (
	// ErrIdentityNotFound wraps a 404 from the identity service.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrIdentityServiceUnavailable wraps transport failures, timeouts and gateway errors.
	ErrIdentityServiceUnavailable = errors.New("identity service unavailable")

	// ErrIdentityDependency wraps any other failed response.
	ErrIdentityDependency = errors.New("identity service request failed")
)

// Group is a named set of employees.
type Group struct {
	ID   kernel.UUID
	Name string
}

// Employee carries the status and address used for notifications. Only
// ACTIVE employees receive events.
type Employee struct {
	ID     kernel.UUID
	Status string
	Email  string
}

// IdentityDirectory is a read-only view of employees and groups.
//
// Every method fails with an error wrapping ErrIdentityNotFound,
// ErrIdentityServiceUnavailable or ErrIdentityDependency.
type IdentityDirectory interface {
	// GetGroup loads a group, mainly to prove it exists.
	GetGroup(ctx context.Context, id kernel.UUID) (Group, error)

	// GetGroupMemberEmails returns the members' addresses unvalidated.
	GetGroupMemberEmails(ctx context.Context, id kernel.UUID) ([]string, error)

	// GetEmployee loads one employee.
	GetEmployee(ctx context.Context, id kernel.UUID) (Employee, error)
}
