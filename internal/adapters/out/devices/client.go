// Package devices is the HTTP adapter for the device inventory service.
package devices

import (
	"context"
	"fmt"
	"net/http"

	"orders/internal/adapters/out/remote"
	"orders/internal/core/domain/model/device"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/ports"

	"go.uber.org/zap"
)

const (
	batchPath   = "/api/devices/batch"
	reservePath = "/api/devices/reserve"
	restorePath = "/api/devices/restore"

	defaultRemoteMessage = "device communication error"
)

var _ ports.DeviceGateway = (*Client)(nil)

type batchRequest struct {
	IDs []string `json:"ids"`
}

type deviceState struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type reserveRequest struct {
	DeviceIDs []string `json:"deviceIds"`
	State     string   `json:"state"`
	OrderID   string   `json:"orderId"`
}

type restoreItem struct {
	DeviceID string `json:"deviceId"`
	State    string `json:"state"`
}

type restoreRequest struct {
	Items []restoreItem `json:"items"`
}

type operationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client implements ports.DeviceGateway over the device service's REST API.
// Every failure is returned as a *device.UnavailableError.
type Client struct {
	remote *remote.Client
	logger *zap.Logger
}

// NewClient builds the gateway.
//
// Parameters:
//   - cfg: base URL, per-call timeout and service token
//   - logger: may be nil
//
// Example:
//
//	gateway, err := devices.NewClient(remote.Config{BaseURL: cfg.DevicesServiceURL}, logger)
//	if err != nil {
//	    return err
//	}
//	states, err := gateway.FetchStates(ctx, ids)
func NewClient(cfg remote.Config, logger *zap.Logger) (*Client, error) {
	rc, err := remote.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{remote: rc, logger: logger.With(zap.String("component", "device_gateway"))}, nil
}

// FetchStates loads the status of every requested device in one batch call.
// It fails with ReasonNotFound when the service omits any of them.
func (c *Client) FetchStates(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]device.Status, error) {
	requested := kernel.UniqueUUIDs(ids)
	if len(requested) == 0 {
		return map[kernel.UUID]device.Status{}, nil
	}

	var resp []deviceState
	if err := c.remote.Do(ctx, http.MethodPost, batchPath, batchRequest{IDs: toStrings(requested)}, &resp); err != nil {
		return nil, c.failure(err, "device states could not be fetched", requested)
	}

	states := make(map[kernel.UUID]device.Status, len(resp))
	for _, item := range resp {
		id, err := kernel.UUIDFromString(item.ID)
		if err != nil {
			return nil, c.reject(device.ReasonInternal, "device service returned an invalid device id", requested, err)
		}
		status, err := device.ParseStatus(item.Status)
		if err != nil {
			return nil, c.reject(device.ReasonInternal,
				fmt.Sprintf("device service returned unknown status %q", item.Status), []kernel.UUID{id}, err)
		}
		states[id] = status
	}

	var missing []kernel.UUID
	for _, id := range requested {
		if _, ok := states[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 || len(resp) < len(requested) {
		return nil, c.reject(device.ReasonNotFound, "devices not found", missing, nil)
	}

	return states, nil
}

// Reserve marks the devices OCCUPIED for orderID. A refusal from the service
// is a ReasonConflict error.
func (c *Client) Reserve(ctx context.Context, ids []kernel.UUID, orderID kernel.UUID) error {
	req := reserveRequest{
		DeviceIDs: toStrings(ids),
		State:     device.Occupied.String(),
		OrderID:   orderID.String(),
	}

	var resp operationResponse
	if err := c.remote.Do(ctx, http.MethodPut, reservePath, req, &resp); err != nil {
		return c.failure(err, "devices could not be reserved", ids)
	}
	if !resp.Success {
		return c.reject(device.ReasonConflict, messageOr(resp.Message, "devices could not be reserved"), ids, nil)
	}

	c.logger.Debug("devices reserved", zap.String("orderId", orderID.String()), zap.Stringers("deviceIds", ids))
	return nil
}

// Restore puts each device back into its snapshot status. An empty list is a
// no-op.
func (c *Client) Restore(ctx context.Context, snapshots []device.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	req := restoreRequest{Items: make([]restoreItem, 0, len(snapshots))}
	ids := make([]kernel.UUID, 0, len(snapshots))
	for _, s := range snapshots {
		req.Items = append(req.Items, restoreItem{DeviceID: s.DeviceID().String(), State: s.State().String()})
		ids = append(ids, s.DeviceID())
	}

	var resp operationResponse
	if err := c.remote.Do(ctx, http.MethodPost, restorePath, req, &resp); err != nil {
		return c.failure(err, "devices could not be restored", ids)
	}
	if !resp.Success {
		return c.reject(device.ReasonInternal, messageOr(resp.Message, "devices could not be restored"), ids, nil)
	}

	c.logger.Debug("devices restored", zap.Stringers("deviceIds", ids))
	return nil
}

// failure translates a failed remote call.
func (c *Client) failure(err error, fallback string, ids []kernel.UUID) error {
	remoteErr, failure := remote.FailureOf(err)

	switch failure {
	case remote.FailureUnavailable:
		return c.reject(device.ReasonServiceUnavailable, "device service is unavailable", ids, err)
	case remote.FailureBadRequest:
		return c.reject(device.ReasonBadRequest, remoteErr.MessageOr(fallback), ids, err)
	case remote.FailureNotFound:
		return c.reject(device.ReasonNotFound, remoteErr.MessageOr("devices not found"), ids, err)
	default:
		msg := defaultRemoteMessage
		if remoteErr != nil {
			msg = remoteErr.MessageOr(defaultRemoteMessage)
		}
		return c.reject(device.ReasonInternal, msg, ids, err)
	}
}

func (c *Client) reject(reason device.Reason, message string, ids []kernel.UUID, cause error) error {
	c.logger.Warn("device call rejected",
		zap.Stringer("reason", reason),
		zap.String("message", message),
		zap.Stringers("deviceIds", ids),
		zap.Error(cause))
	return device.NewUnavailableError(reason, message, ids, cause)
}

func toStrings(ids []kernel.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
