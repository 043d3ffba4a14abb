package queries_test

import (
	"fmt"
	"testing"
	"time"

	"orders/internal/adapters/out/postgres/orderrepo"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/device"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type OrderQueriesTestSuite struct {
	suite.Suite
	db    *gorm.DB
	repo  *orderrepo.GormOrderRepository
	get   queries.GetOrderQueryHandler
	list  queries.ListOrdersQueryHandler
	epoch time.Time
}

func TestOrderQueriesTestSuite(t *testing.T) {
	suite.Run(t, new(OrderQueriesTestSuite))
}

func (suite *OrderQueriesTestSuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.OrderItemDTO{}))
	suite.db = db
	suite.repo = orderrepo.NewGormOrderRepository(db)
	suite.get = queries.NewGetOrderQueryHandler(db)
	suite.list = queries.NewListOrdersQueryHandler(db)
	suite.epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (suite *OrderQueriesTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	suite.Require().NoError(sqlDB.Close())
}

// seed stores an order created minutesAfter the suite epoch.
func (suite *OrderQueriesTestSuite) seed(assignee order.Assignee, state order.State, minutesAfter int, deviceIDs ...kernel.UUID) *order.Order {
	items := make([]*order.Item, 0, len(deviceIDs))
	for _, id := range deviceIDs {
		item, err := order.NewItem(id, device.GoodCondition)
		suite.Require().NoError(err)
		items = append(items, item)
	}
	at := suite.epoch.Add(time.Duration(minutesAfter) * time.Minute)
	o, err := order.RestoreOrder(kernel.NewUUID(), "seeded", state, assignee, order.NotificationPending, items, at, at, 1)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Add(suite.T().Context(), o))
	return o
}

func (suite *OrderQueriesTestSuite) assignee(typ order.AssigneeType) order.Assignee {
	a, err := order.NewAssignee(typ, kernel.NewUUID())
	suite.Require().NoError(err)
	return a
}

func (suite *OrderQueriesTestSuite) TestGetOrder_ReturnsViewWithItems() {
	d1, d2 := kernel.NewUUID(), kernel.NewUUID()
	o := suite.seed(suite.assignee(order.Group), order.InProcess, 0, d1, d2)

	query, err := queries.NewGetOrderQuery(o.ID())
	suite.Require().NoError(err)
	view, err := suite.get.Handle(suite.T().Context(), query)

	suite.Require().NoError(err)
	suite.Equal(o.ID(), view.ID)
	suite.Equal("seeded", view.Description)
	suite.Equal("IN_PROCESS", view.State)
	suite.Equal("GROUP", view.AssigneeType)
	suite.Equal(o.Assignee().ID(), view.AssigneeID)
	suite.Equal("PENDING", view.NotificationStatus)
	suite.Equal(int64(1), view.Version)
	suite.True(suite.epoch.Equal(view.CreatedAt))
	suite.Require().Len(view.Items, 2)
	suite.Equal(d1, view.Items[0].DeviceID)
	suite.Equal(d2, view.Items[1].DeviceID)
	suite.Equal("GOOD_CONDITION", view.Items[0].OriginalDeviceState)
}

func (suite *OrderQueriesTestSuite) TestGetOrder_NotFound() {
	query, err := queries.NewGetOrderQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = suite.get.Handle(suite.T().Context(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderQueriesTestSuite) TestGetOrder_NotConstructed() {
	_, err := suite.get.Handle(suite.T().Context(), queries.GetOrderQuery{})

	suite.Require().ErrorIs(err, queries.ErrGetOrderQueryIsNotConstructed)
}

func (suite *OrderQueriesTestSuite) TestListOrders_Filters() {
	alice := suite.assignee(order.Employee)
	team := suite.assignee(order.Group)
	shared := kernel.NewUUID()

	first := suite.seed(alice, order.Created, 0, shared)
	second := suite.seed(team, order.Finished, 10, shared, kernel.NewUUID())
	third := suite.seed(alice, order.Finished, 20, kernel.NewUUID())

	finished := order.Finished
	tests := []struct {
		name       string
		assigneeID *kernel.UUID
		deviceID   *kernel.UUID
		state      *order.State
		want       []kernel.UUID
	}{
		{name: "no filter newest first", want: []kernel.UUID{third.ID(), second.ID(), first.ID()}},
		{name: "by assignee", assigneeID: ptr(alice.ID()), want: []kernel.UUID{third.ID(), first.ID()}},
		{name: "by device", deviceID: ptr(shared), want: []kernel.UUID{second.ID(), first.ID()}},
		{name: "by state", state: &finished, want: []kernel.UUID{third.ID(), second.ID()}},
		{name: "combined", assigneeID: ptr(alice.ID()), state: &finished, want: []kernel.UUID{third.ID()}},
		{name: "no match", assigneeID: ptr(kernel.NewUUID()), want: []kernel.UUID{}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			query, err := queries.NewListOrdersQuery(tt.assigneeID, tt.deviceID, tt.state, 0)
			suite.Require().NoError(err)

			views, err := suite.list.Handle(suite.T().Context(), query)

			suite.Require().NoError(err)
			got := make([]kernel.UUID, 0, len(views))
			for _, v := range views {
				got = append(got, v.ID)
				suite.NotEmpty(v.Items)
			}
			suite.Equal(tt.want, got)
		})
	}
}

func (suite *OrderQueriesTestSuite) TestListOrders_Limit() {
	a := suite.assignee(order.Employee)
	for i := range 3 {
		suite.seed(a, order.Created, i, kernel.NewUUID())
	}

	query, err := queries.NewListOrdersQuery(nil, nil, nil, 2)
	suite.Require().NoError(err)
	views, err := suite.list.Handle(suite.T().Context(), query)

	suite.Require().NoError(err)
	suite.Len(views, 2)
}

func TestNewListOrdersQuery(t *testing.T) {
	query, err := queries.NewListOrdersQuery(nil, nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, queries.DefaultListLimit, query.Limit())

	query, err = queries.NewListOrdersQuery(nil, nil, nil, 10_000)
	require.NoError(t, err)
	assert.Equal(t, queries.MaxListLimit, query.Limit())

	unknown := order.Unknown
	_, err = queries.NewListOrdersQuery(&kernel.UUID{}, nil, &unknown, 0)
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func ptr[T any](v T) *T { return &v }
