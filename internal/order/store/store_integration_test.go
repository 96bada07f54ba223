package store

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	ordererrors "github.com/vinkj/autoshop/internal/order/errors"
	"github.com/vinkj/autoshop/internal/platform/db"

	"github.com/stretchr/testify/suite"
)

const skipIntegrationTests = "AUTOSHOP_SKIP_INTEGRATION_TESTS"

// OrderStoreSuite is a test suite for the OrderStore implementation.
type OrderStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       OrderStore
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite starts a PostgreSQL container and applies the schema.
func (s *OrderStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("autoshop_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	require.NoError(s.T(), db.RunMigrations(connStr, s.logger), "Failed to apply migrations")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for OrderStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *OrderStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest resets the orders and products tables before each test.
func (s *OrderStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE orders RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate orders table")
	_, err = s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

// TestOrderStoreIntegration runs the OrderStore integration tests.
func TestOrderStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(OrderStoreSuite))
}

// seedProduct inserts a product row and returns its ID.
func (s *OrderStoreSuite) seedProduct(name string, price int64, stock int32) int64 {
	s.T().Helper()
	var id int64
	err := s.dbPool.QueryRow(s.ctx,
		`INSERT INTO products (name, price, stock_quantity, is_available) VALUES ($1, $2, $3, $3 > 0) RETURNING id`,
		name, price, stock).Scan(&id)
	require.NoError(s.T(), err, "seedProduct helper failed")
	return id
}

// productStock reads the remaining stock of a product.
func (s *OrderStoreSuite) productStock(id int64) int32 {
	s.T().Helper()
	var stock int32
	err := s.dbPool.QueryRow(s.ctx, `SELECT stock_quantity FROM products WHERE id = $1`, id).Scan(&stock)
	require.NoError(s.T(), err, "productStock helper failed")
	return stock
}

func orderParams() CreateOrderParams {
	return CreateOrderParams{
		FullName:      "Jane Wanjiru",
		PhoneNumber:   "254700000000",
		Estate:        "Kilimani",
		StreetAddress: "Argwings Kodhek Rd 12",
		PaymentMethod: "M-Pesa",
	}
}

func (s *OrderStoreSuite) TestCreateOrder() {
	s.SetupTest()
	// given
	filterID := s.seedProduct("Oil Filter", 1500, 5)
	padsID := s.seedProduct("Brake Pads", 4500, 2)

	// when
	order, items, err := s.store.CreateOrder(s.ctx, orderParams(), []ItemSpec{
		{ProductID: filterID, Quantity: 2},
		{ProductID: padsID, Quantity: 1},
	})

	// then
	require.NoError(s.T(), err, "CreateOrder should not return an error")
	require.NotZero(s.T(), order.ID)
	require.Equal(s.T(), StatusPending, order.Status)
	require.Equal(s.T(), int64(2*1500+4500), order.TotalPrice, "Total should be priced from the product rows")
	require.NotZero(s.T(), order.CreatedAt)

	require.Len(s.T(), items, 2)
	require.Equal(s.T(), filterID, items[0].ProductID)
	require.Equal(s.T(), int64(1500), items[0].UnitPrice)
	require.Equal(s.T(), int64(3000), items[0].Price)

	// stock was reserved
	require.Equal(s.T(), int32(3), s.productStock(filterID))
	require.Equal(s.T(), int32(1), s.productStock(padsID))
}

func (s *OrderStoreSuite) TestCreateOrder_InsufficientStock() {
	s.SetupTest()
	// given
	filterID := s.seedProduct("Oil Filter", 1500, 1)

	// when
	order, items, err := s.store.CreateOrder(s.ctx, orderParams(), []ItemSpec{
		{ProductID: filterID, Quantity: 2},
	})

	// then
	require.ErrorIs(s.T(), err, ordererrors.ErrInsufficientStock)
	require.Nil(s.T(), order)
	require.Nil(s.T(), items)
	// nothing was reserved
	require.Equal(s.T(), int32(1), s.productStock(filterID))
}

func (s *OrderStoreSuite) TestCreateOrder_ProductNotFound() {
	s.SetupTest()
	// given (no products seeded)

	// when
	order, _, err := s.store.CreateOrder(s.ctx, orderParams(), []ItemSpec{
		{ProductID: 12345, Quantity: 1},
	})

	// then
	require.ErrorIs(s.T(), err, ordererrors.ErrProductNotFound)
	require.Nil(s.T(), order)
}

func (s *OrderStoreSuite) TestFindByID() {
	s.SetupTest()
	// given
	filterID := s.seedProduct("Oil Filter", 1500, 5)
	created, createdItems, err := s.store.CreateOrder(s.ctx, orderParams(), []ItemSpec{
		{ProductID: filterID, Quantity: 2},
	})
	require.NoError(s.T(), err)

	// when
	fetched, fetchedItems, err := s.store.FindByID(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "FindByID should not return an error")
	require.Equal(s.T(), created.ID, fetched.ID)
	require.Equal(s.T(), created.TotalPrice, fetched.TotalPrice)
	require.Equal(s.T(), created.FullName, fetched.FullName)
	require.Equal(s.T(), created.Status, fetched.Status)
	require.WithinDuration(s.T(), created.CreatedAt, fetched.CreatedAt, time.Second)

	require.Len(s.T(), fetchedItems, 1)
	require.Equal(s.T(), createdItems[0].ID, fetchedItems[0].ID)
	require.Equal(s.T(), createdItems[0].ProductID, fetchedItems[0].ProductID)
	require.Equal(s.T(), createdItems[0].Quantity, fetchedItems[0].Quantity)
	require.Equal(s.T(), createdItems[0].UnitPrice, fetchedItems[0].UnitPrice)
	require.Equal(s.T(), createdItems[0].Price, fetchedItems[0].Price)
}

func (s *OrderStoreSuite) TestFindByID_NotFound() {
	s.SetupTest()
	// given (no orders created)

	// when
	_, _, err := s.store.FindByID(s.ctx, 12345)

	// then
	require.ErrorIs(s.T(), err, ordererrors.ErrOrderNotFound)
}

func (s *OrderStoreSuite) TestFindAll() {
	s.SetupTest()
	// given
	filterID := s.seedProduct("Oil Filter", 1500, 10)
	first, _, err := s.store.CreateOrder(s.ctx, orderParams(), []ItemSpec{{ProductID: filterID, Quantity: 1}})
	require.NoError(s.T(), err)
	second, _, err := s.store.CreateOrder(s.ctx, orderParams(), []ItemSpec{{ProductID: filterID, Quantity: 2}})
	require.NoError(s.T(), err)

	// when
	orders, err := s.store.FindAll(s.ctx, 0, 10)

	// then: newest first
	require.NoError(s.T(), err)
	require.Len(s.T(), orders, 2)
	require.Equal(s.T(), second.ID, orders[0].ID)
	require.Equal(s.T(), first.ID, orders[1].ID)

	// when: paginated past the end
	orders, err = s.store.FindAll(s.ctx, 2, 10)

	// then
	require.NoError(s.T(), err)
	require.Len(s.T(), orders, 0)
}

func (s *OrderStoreSuite) TestCancelOrder() {
	s.SetupTest()
	// given
	filterID := s.seedProduct("Oil Filter", 1500, 5)
	created, _, err := s.store.CreateOrder(s.ctx, orderParams(), []ItemSpec{{ProductID: filterID, Quantity: 2}})
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(3), s.productStock(filterID))

	// when
	cancelled, err := s.store.CancelOrder(s.ctx, created.ID)

	// then: status flips and the stock is restored
	require.NoError(s.T(), err, "CancelOrder should not return an error")
	require.Equal(s.T(), StatusCancelled, cancelled.Status)
	require.Equal(s.T(), int32(5), s.productStock(filterID))

	// when: cancelling again
	_, err = s.store.CancelOrder(s.ctx, created.ID)

	// then
	require.ErrorIs(s.T(), err, ordererrors.ErrOrderAlreadyCancelled)
}

func (s *OrderStoreSuite) TestCancelOrder_NotFound() {
	s.SetupTest()
	// given (no orders created)

	// when
	_, err := s.store.CancelOrder(s.ctx, 12345)

	// then
	require.ErrorIs(s.T(), err, ordererrors.ErrOrderNotFound)
}
