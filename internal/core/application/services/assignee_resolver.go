package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const activeEmployeeStatus = "ACTIVE"

var _ ports.RecipientResolver = (*AssigneeResolver)(nil)

// AssigneeResolver validates an assignee against the identity service and
// returns the addresses to notify.
type AssigneeResolver struct {
	directory ports.IdentityDirectory
	logger    *zap.Logger
}

// NewAssigneeResolver wires the resolver.
//
// Parameters:
//   - directory: identity service client
//   - logger: may be nil
//
// Example:
//
//	resolver := NewAssigneeResolver(identityClient, logger)
//	emails, err := resolver.Resolve(ctx, o.Assignee())
func NewAssigneeResolver(directory ports.IdentityDirectory, logger *zap.Logger) *AssigneeResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssigneeResolver{directory: directory, logger: logger.With(zap.String("component", "assignee_resolver"))}
}

// Resolve returns trimmed, valid, de-duplicated addresses. It fails with
// NotFound when nothing usable is left.
func (r *AssigneeResolver) Resolve(ctx context.Context, assignee order.Assignee) ([]kernel.Email, error) {
	if err := assignee.Validate(); err != nil {
		return nil, errs.NewBadRequestError("assignee is invalid", err)
	}

	var raw []string
	var err error
	switch assignee.Type() {
	case order.Group:
		raw, err = r.resolveGroup(ctx, assignee.ID())
	case order.Employee:
		raw, err = r.resolveEmployee(ctx, assignee.ID())
	default:
		return nil, errs.NewBadRequestError(fmt.Sprintf("unsupported assignee type %s", assignee.Type()), nil)
	}
	if err != nil {
		return nil, err
	}

	emails, rejected := kernel.UniqueEmails(raw)
	if len(rejected) > 0 {
		r.logger.Warn("dropping invalid recipient addresses",
			zap.String("assigneeType", assignee.Type().String()),
			zap.String("assigneeId", assignee.ID().String()),
			zap.Int("rejected", len(rejected)))
	}
	if len(emails) == 0 {
		return nil, errs.NewNotFoundError(
			fmt.Sprintf("no valid recipient emails for %s %s", strings.ToLower(assignee.Type().String()), assignee.ID()),
			nil,
		)
	}
	return emails, nil
}

func (r *AssigneeResolver) resolveGroup(ctx context.Context, groupID kernel.UUID) ([]string, error) {
	var (
		groupErr, membersErr error
		members              []string
	)

	// both lookups run to completion; a group failure takes precedence
	var g errgroup.Group
	g.Go(func() error {
		_, groupErr = r.directory.GetGroup(ctx, groupID)
		return groupErr
	})
	g.Go(func() error {
		members, membersErr = r.directory.GetGroupMemberEmails(ctx, groupID)
		return membersErr
	})
	_ = g.Wait()

	if groupErr != nil {
		return nil, r.groupFailure(groupID, groupErr)
	}
	if membersErr != nil {
		return nil, r.groupFailure(groupID, membersErr)
	}

	if len(members) == 0 {
		return nil, errs.NewConflictError(fmt.Sprintf("group %s has no members with valid email", groupID), nil)
	}
	return members, nil
}

func (r *AssigneeResolver) groupFailure(groupID kernel.UUID, err error) error {
	switch {
	case errors.Is(err, ports.ErrIdentityNotFound):
		return errs.NewNotFoundError(fmt.Sprintf("group %s not found", groupID), err)
	case errors.Is(err, ports.ErrIdentityServiceUnavailable):
		r.logger.Error("group lookup failed, identity service unavailable", zap.String("groupId", groupID.String()), zap.Error(err))
		return errs.NewInternalServerError(fmt.Sprintf("group %s is unavailable", groupID), true, err)
	default:
		r.logger.Error("group lookup failed", zap.String("groupId", groupID.String()), zap.Error(err))
		return errs.NewInternalServerError(fmt.Sprintf("group %s could not be resolved", groupID), false, err)
	}
}

func (r *AssigneeResolver) resolveEmployee(ctx context.Context, employeeID kernel.UUID) ([]string, error) {
	employee, err := r.directory.GetEmployee(ctx, employeeID)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrIdentityNotFound):
			return nil, errs.NewNotFoundError(fmt.Sprintf("employee %s not found", employeeID), err)
		case errors.Is(err, ports.ErrIdentityServiceUnavailable):
			r.logger.Error("employee lookup failed, identity service unavailable", zap.String("employeeId", employeeID.String()), zap.Error(err))
			return nil, errs.NewInternalServerError(fmt.Sprintf("employee %s is unavailable", employeeID), true, err)
		default:
			r.logger.Error("employee lookup failed", zap.String("employeeId", employeeID.String()), zap.Error(err))
			return nil, errs.NewInternalServerError(fmt.Sprintf("employee %s could not be resolved", employeeID), false, err)
		}
	}

	if !strings.EqualFold(strings.TrimSpace(employee.Status), activeEmployeeStatus) {
		return nil, errs.NewConflictError(fmt.Sprintf("employee %s is not active", employeeID), nil)
	}

	email := strings.TrimSpace(employee.Email)
	if email == "" || strings.EqualFold(email, "null") {
		return nil, errs.NewConflictError(fmt.Sprintf("employee %s has no registered email", employeeID), nil)
	}
	return []string{email}, nil
}
