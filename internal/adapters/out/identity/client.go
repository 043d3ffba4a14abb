// Package identity is the HTTP adapter for the employee and group directory.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"orders/internal/adapters/out/remote"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/ports"

	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"
)

var _ ports.IdentityDirectory = (*Client)(nil)

type groupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// membersResponse is the object form of the member e-mail listing; the
// service may also answer with a bare array.
type membersResponse struct {
	GroupID   string   `json:"groupId"`
	GroupName string   `json:"groupName"`
	Emails    []string `json:"emails"`
}

type employeeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Email  string `json:"email"`
}

// Client implements ports.IdentityDirectory over the identity service's REST API.
type Client struct {
	remote *remote.Client
	logger *zap.Logger
}

// NewClient builds the client.
//
// Parameters:
//   - cfg: base URL, per-call timeout and service token
//   - logger: may be nil
//
// Returns an error when the base URL does not parse.
//
// Example:
//
//	directory, err := identity.NewClient(remote.Config{
//	    BaseURL: "http://identity:8080",
//	    Timeout: 5 * time.Second,
//	}, logger)
func NewClient(cfg remote.Config, logger *zap.Logger) (*Client, error) {
	rc, err := remote.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{remote: rc, logger: logger.With(zap.String("component", "identity_directory"))}, nil
}

// GetGroup fetches a group. An unknown group wraps ports.ErrIdentityNotFound.
func (c *Client) GetGroup(ctx context.Context, id kernel.UUID) (ports.Group, error) {
	path, err := pathWithID("/groups/%s", id)
	if err != nil {
		return ports.Group{}, err
	}

	var resp groupResponse
	if err = c.remote.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return ports.Group{}, c.failure(err, "group", id)
	}

	return ports.Group{ID: id, Name: resp.Name}, nil
}

// GetGroupMemberEmails returns the raw member addresses. Both a bare JSON
// array and an object with an emails field are accepted.
func (c *Client) GetGroupMemberEmails(ctx context.Context, id kernel.UUID) ([]string, error) {
	path, err := pathWithID("/groups/%s/members/emails", id)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err = c.remote.Do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, c.failure(err, "group members", id)
	}

	emails, err := decodeEmails(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed member list for group %s: %w", ports.ErrIdentityDependency, id, err)
	}
	return emails, nil
}

// GetEmployee fetches an employee with status and address. An unknown
// employee wraps ports.ErrIdentityNotFound.
func (c *Client) GetEmployee(ctx context.Context, id kernel.UUID) (ports.Employee, error) {
	path, err := pathWithID("/api/employees/%s", id)
	if err != nil {
		return ports.Employee{}, err
	}

	var resp employeeResponse
	if err = c.remote.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return ports.Employee{}, c.failure(err, "employee", id)
	}

	return ports.Employee{ID: id, Status: resp.Status, Email: resp.Email}, nil
}

func (c *Client) failure(err error, what string, id kernel.UUID) error {
	_, failure := remote.FailureOf(err)

	switch failure {
	case remote.FailureNotFound:
		return fmt.Errorf("%w: %s %s: %w", ports.ErrIdentityNotFound, what, id, err)
	case remote.FailureUnavailable:
		c.logger.Warn("identity service unavailable", zap.String("lookup", what), zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %w", ports.ErrIdentityServiceUnavailable, what, id, err)
	default:
		c.logger.Warn("identity lookup failed", zap.String("lookup", what), zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %w", ports.ErrIdentityDependency, what, id, err)
	}
}

func pathWithID(format string, id kernel.UUID) (string, error) {
	param, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id.String())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ports.ErrIdentityDependency, err)
	}
	return fmt.Sprintf(format, param), nil
}

func decodeEmails(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped membersResponse
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Emails, nil
}
