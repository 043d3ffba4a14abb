package http

import (
	"time"

	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/order"
)

type CreateOrderRequest struct {
	Description  string   `json:"description"`
	DeviceIDs    []string `json:"deviceIds"`
	AssigneeType string   `json:"assigneeType"`
	AssigneeID   string   `json:"assigneeId"`
}

type ChangeOrderStateRequest struct {
	State string `json:"state"`
}

type OrderItemResponse struct {
	ID                  string `json:"id"`
	DeviceID            string `json:"deviceId"`
	OriginalDeviceState string `json:"originalDeviceState"`
}

type OrderResponse struct {
	ID                 string              `json:"id"`
	Description        string              `json:"description"`
	State              string              `json:"state"`
	AssigneeType       string              `json:"assigneeType"`
	AssigneeID         string              `json:"assigneeId"`
	NotificationStatus string              `json:"notificationStatus"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
	Version            int64               `json:"version"`
	Items              []OrderItemResponse `json:"items"`
}

type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
}

func orderFromDomain(o *order.Order) OrderResponse {
	items := o.Items()
	resp := OrderResponse{
		ID:                 o.ID().String(),
		Description:        o.Description(),
		State:              o.State().String(),
		AssigneeType:       o.Assignee().Type().String(),
		AssigneeID:         o.Assignee().ID().String(),
		NotificationStatus: o.NotificationStatus().String(),
		CreatedAt:          o.CreatedAt().UTC(),
		UpdatedAt:          o.UpdatedAt().UTC(),
		Version:            o.Version(),
		Items:              make([]OrderItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:                  item.ID().String(),
			DeviceID:            item.DeviceID().String(),
			OriginalDeviceState: item.OriginalDeviceState().String(),
		})
	}
	return resp
}

func orderFromView(v queries.OrderView) OrderResponse {
	resp := OrderResponse{
		ID:                 v.ID.String(),
		Description:        v.Description,
		State:              v.State,
		AssigneeType:       v.AssigneeType,
		AssigneeID:         v.AssigneeID.String(),
		NotificationStatus: v.NotificationStatus,
		CreatedAt:          v.CreatedAt.UTC(),
		UpdatedAt:          v.UpdatedAt.UTC(),
		Version:            v.Version,
		Items:              make([]OrderItemResponse, 0, len(v.Items)),
	}
	for _, item := range v.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:                  item.ID.String(),
			DeviceID:            item.DeviceID.String(),
			OriginalDeviceState: item.OriginalDeviceState,
		})
	}
	return resp
}
