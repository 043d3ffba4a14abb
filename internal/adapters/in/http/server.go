// Package http exposes the order use cases over REST with echo.
package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerIfMatch        = "If-Match"
	headerETag           = "ETag"
)

type (
	OrderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResult, error)
	}

	OrderStateChanger interface {
		Handle(ctx context.Context, cmd commands.ChangeOrderStateCommand) (*order.Order, error)
	}

	OrderGetter interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error)
	}

	OrderLister interface {
		Handle(ctx context.Context, query queries.ListOrdersQuery) ([]queries.OrderView, error)
	}
)

// Server maps REST calls onto command and query handlers.
type Server struct {
	createOrder      OrderCreator
	changeOrderState OrderStateChanger
	getOrder         OrderGetter
	listOrders       OrderLister
}

// NewServer wires the REST handlers.
//
// Example:
//
//	server := orderhttp.NewServer(createHandler, changeHandler, getHandler, listHandler)
//	e, err := orderhttp.NewRouter(server, routerCfg, logger)
func NewServer(
	createOrder OrderCreator,
	changeOrderState OrderStateChanger,
	getOrder OrderGetter,
	listOrders OrderLister,
) *Server {
	return &Server{
		createOrder:      createOrder,
		changeOrderState: changeOrderState,
		getOrder:         getOrder,
		listOrders:       listOrders,
	}
}

// CreateOrder handles POST /api/v1/orders. A replayed idempotency key
// answers 200 with the order created earlier.
func (s *Server) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return errs.NewBadRequestError("invalid request body", err)
	}

	deviceIDs, err := kernel.UUIDsFromStrings(req.DeviceIDs)
	if err != nil {
		return errs.NewBadRequestError("deviceIds must be valid UUIDs", err)
	}

	assignee, err := parseAssignee(req.AssigneeType, req.AssigneeID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(),
		req.Description,
		deviceIDs,
		assignee,
		c.Request().Header.Get(headerIdempotencyKey),
	)
	if err != nil {
		return errs.NewBadRequestError(err.Error(), err)
	}

	result, err := s.createOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	setETag(c, result.Order.Version())
	return c.JSON(status, orderFromDomain(result.Order))
}

// ListOrders handles GET /api/v1/orders.
func (s *Server) ListOrders(c echo.Context) error {
	assigneeID, err := optionalUUID(c.QueryParam("assigneeId"), "assigneeId")
	if err != nil {
		return err
	}
	deviceID, err := optionalUUID(c.QueryParam("deviceId"), "deviceId")
	if err != nil {
		return err
	}

	var state *order.State
	if raw := c.QueryParam("state"); raw != "" {
		parsed, parseErr := order.ParseState(raw)
		if parseErr != nil {
			return errs.NewBadRequestError("state is invalid", parseErr)
		}
		state = &parsed
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return errs.NewBadRequestError("limit must be an integer", err)
		}
	}

	query, err := queries.NewListOrdersQuery(assigneeID, deviceID, state, limit)
	if err != nil {
		return errs.NewBadRequestError(err.Error(), err)
	}

	views, err := s.listOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	resp := make([]OrderResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, orderFromView(v))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetOrder handles GET /api/v1/orders/{id}.
func (s *Server) GetOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return errs.NewBadRequestError(err.Error(), err)
	}

	view, err := s.getOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	setETag(c, view.Version)
	return c.JSON(http.StatusOK, orderFromView(view))
}

// ChangeOrderState handles PATCH /api/v1/orders/{id}/state.
func (s *Server) ChangeOrderState(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req ChangeOrderStateRequest
	if err = c.Bind(&req); err != nil {
		return errs.NewBadRequestError("invalid request body", err)
	}

	state, err := order.ParseState(req.State)
	if err != nil {
		return errs.NewBadRequestError("state is invalid", err)
	}

	expected, err := parseIfMatch(c.Request().Header.Get(headerIfMatch))
	if err != nil {
		return err
	}

	cmd, err := commands.NewChangeOrderStateCommand(id, state, expected)
	if err != nil {
		return errs.NewBadRequestError(err.Error(), err)
	}

	o, err := s.changeOrderState.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	setETag(c, o.Version())
	return c.JSON(http.StatusOK, orderFromDomain(o))
}

func parseAssignee(rawType, rawID string) (order.Assignee, error) {
	typ, typeErr := order.ParseAssigneeType(rawType)
	id, idErr := kernel.UUIDFromString(rawID)
	if err := errors.Join(typeErr, idErr); err != nil {
		return order.Assignee{}, errs.NewBadRequestError("assignee is invalid", err)
	}

	assignee, err := order.NewAssignee(typ, id)
	if err != nil {
		return order.Assignee{}, errs.NewBadRequestError("assignee is invalid", err)
	}
	return assignee, nil
}

func pathID(c echo.Context) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return kernel.UUID{}, errs.NewBadRequestError("id must be a valid UUID", err)
	}
	return id, nil
}

func optionalUUID(raw, name string) (*kernel.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return nil, errs.NewBadRequestError(name+" must be a valid UUID", err)
	}
	return &id, nil
}

// parseIfMatch reads an expected version from If-Match. Quotes and the weak
// prefix are tolerated; an absent header means no expectation.
func parseIfMatch(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return 0, nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)

	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || version < 1 {
		return 0, errs.NewBadRequestError("If-Match must carry a positive order version", err)
	}
	return version, nil
}

func setETag(c echo.Context, version int64) {
	c.Response().Header().Set(headerETag, strconv.Quote(strconv.FormatInt(version, 10)))
}
