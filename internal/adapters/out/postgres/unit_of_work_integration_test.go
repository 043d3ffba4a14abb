package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	postgres_adapter "orders/internal/adapters/out/postgres"
	"orders/internal/core/domain/model/device"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/model/restoration"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite exercises transactions spanning the order
// and restoration repositories on a real PostgreSQL.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(postgres_adapter.Models()...))
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE device_restoration, rental_order_item, rental_order").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Commit(ctx))
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_FinishWritesOrderAndLedgerAtomically() {
	ctx := context.Background()
	o := suite.addOrder(order.Dispatched)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	loaded, err := uow.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(loaded.ChangeState(order.Finished, time.Now().UTC()))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, loaded))
	r, err := restoration.NewRestoration(o.ID(), time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(uow.RestorationRepository().Add(ctx, r))
	suite.Require().NoError(uow.Commit(ctx))

	stored, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Finished, stored.State())
	ledger, err := suite.factory.Create().RestorationRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(restoration.Pending, ledger.Status())
	suite.Nil(ledger.LeaseUntil())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := context.Background()
	o := suite.addOrder(order.Dispatched)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	loaded, err := uow.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(loaded.ChangeState(order.Finished, time.Now().UTC()))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, loaded))
	r, err := restoration.NewRestoration(o.ID(), time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(uow.RestorationRepository().Add(ctx, r))
	suite.Require().NoError(uow.Rollback(ctx))

	stored, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Dispatched, stored.State())
	suite.Equal(int64(1), stored.Version())
	_, err = suite.factory.Create().RestorationRepository().Get(ctx, o.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_ConcurrentClaimsHaveOneWinner() {
	ctx := context.Background()
	o := suite.addOrder(order.Finished)
	r, err := restoration.NewRestoration(o.ID(), time.Now().UTC().Add(-time.Hour))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().RestorationRepository().Add(ctx, r))

	const claimers = 8
	now := time.Now().UTC()
	wins := make(chan bool, claimers)
	var wg sync.WaitGroup
	for range claimers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loaded, err := suite.factory.Create().RestorationRepository().Get(ctx, o.ID())
			if err != nil {
				wins <- false
				return
			}
			if err = loaded.Claim(now, time.Minute); err != nil {
				wins <- false
				return
			}
			won, err := suite.factory.Create().RestorationRepository().Claim(ctx, loaded, now)
			wins <- err == nil && won
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	suite.Equal(1, won)

	stored, err := suite.factory.Create().RestorationRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(restoration.InProgress, stored.Status())
	suite.Require().NotNil(stored.LeaseUntil())

	listed, err := suite.factory.Create().RestorationRepository().ListClaimable(ctx, time.Now().UTC(), 10)
	suite.Require().NoError(err)
	suite.Empty(listed)
}

func (suite *UnitOfWorkIntegrationTestSuite) addOrder(state order.State) *order.Order {
	item, err := order.NewItem(kernel.NewUUID(), device.GoodCondition)
	suite.Require().NoError(err)
	assignee, err := order.NewAssignee(order.Employee, kernel.NewUUID())
	suite.Require().NoError(err)
	now := time.Now().UTC()
	o, err := order.RestoreOrder(kernel.NewUUID(), "", state, assignee, order.NotificationPending,
		[]*order.Item{item}, now, now, 1)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(context.Background(), o))
	return o
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
