package service_test

import (
	"context"
	"testing"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/imnamix/be-payplex/internal/repository"
	"github.com/imnamix/be-payplex/internal/service"
	kafka2 "github.com/imnamix/be-payplex/pkg/kafka"
	outboxRepository "github.com/imnamix/be-payplex/pkg/outbox/repository"
	"github.com/imnamix/be-payplex/pkg/outbox/worker"
	"github.com/imnamix/be-payplex/pkg/testsuite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type IntegrationTestSuite struct {
	testsuite.BaseSuite

	CartService     service.CartService
	CheckoutService service.CheckoutService
	OrderService    service.OrderService
	ProductService  service.ProductService
	TestProducer    kafka2.Producer
	OutboxProcessor *worker.OutboxProcessor
	workerCancel    context.CancelFunc
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.BaseSuite.SetupInfrastructure("../../migrations")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.BaseSuite.TearDownInfrastructure()
}

func (s *IntegrationTestSuite) SetupTest() {
	s.BaseSuite.TruncateTable("order_items")
	s.BaseSuite.TruncateTable("orders")
	s.BaseSuite.TruncateTable("cart_items")
	s.BaseSuite.TruncateTable("products")
	s.BaseSuite.TruncateTable("users")
	s.BaseSuite.TruncateTable("outbox")
	s.BaseSuite.TruncateTable("processed_events")

	// the sequence table keeps its single counter row, only the value resets
	_, err := s.DbPool.Exec(s.Ctx, `
		INSERT INTO order_sequence (id, value) VALUES (1, 0)
		ON CONFLICT (id) DO UPDATE SET value = 0
	`)
	s.Require().NoError(err)

	logger := zap.NewNop()
	productRepo := repository.NewProductRepository(s.DbPool, logger)
	cartRepo := repository.NewCartRepository(s.DbPool, logger)
	orderRepo := repository.NewOrderRepository(s.DbPool, logger)
	userRepo := repository.NewUserRepository(s.DbPool, logger)
	seqRepo := repository.NewSequenceRepository(logger)
	outboxRepo := outboxRepository.NewOutboxRepository(s.DbPool, logger)

	taxRate := decimal.NewFromFloat(0.10)

	s.ProductService = service.NewProductService(s.DbPool, productRepo, logger)
	s.CartService = service.NewCartService(cartRepo, productRepo, taxRate, logger)
	s.CheckoutService = service.NewCheckoutService(
		s.DbPool,
		cartRepo,
		productRepo,
		orderRepo,
		userRepo,
		seqRepo,
		outboxRepo,
		taxRate,
		"ORD",
		logger,
	)
	s.OrderService = service.NewOrderService(s.DbPool, orderRepo, productRepo, userRepo, outboxRepo, logger)

	s.TestProducer, err = kafka2.NewProducer(s.KafkaBrokers)
	s.Require().NoError(err, "failed to create kafka producer")

	s.OutboxProcessor = worker.NewOutboxProcessor(s.DbPool, outboxRepo, s.TestProducer, logger)

	workerCtx, cancel := context.WithCancel(s.Ctx)
	s.workerCancel = cancel

	go s.OutboxProcessor.Start(workerCtx)
}

func (s *IntegrationTestSuite) TearDownTest() {
	if s.workerCancel != nil {
		s.workerCancel()
	}
}

func (s *IntegrationTestSuite) seedUser(id int64, email string) {
	query := `
		INSERT INTO users (id, email, name, shipping_address)
		VALUES ($1, $2, 'Test User', '1 Test Street') ON CONFLICT DO NOTHING
	`

	_, err := s.DbPool.Exec(s.Ctx, query, id, email)
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) seedProduct(name, price string, quantity int64) int64 {
	query := `
		INSERT INTO products (seller_id, name, price, available_quantity, status)
		VALUES (1, $1, $2, $3, 'active')
		RETURNING id
	`

	var id int64
	err := s.DbPool.QueryRow(s.Ctx, query, name, price, quantity).Scan(&id)
	s.Require().NoError(err)

	return id
}

func (s *IntegrationTestSuite) stockOf(productID int64) int64 {
	var quantity int64
	err := s.DbPool.QueryRow(s.Ctx,
		"SELECT available_quantity FROM products WHERE id = $1", productID).
		Scan(&quantity)
	s.Require().NoError(err)

	return quantity
}

func (s *IntegrationTestSuite) cartSize(userID int64) int {
	var count int
	err := s.DbPool.QueryRow(s.Ctx,
		"SELECT COUNT(*) FROM cart_items WHERE user_id = $1", userID).
		Scan(&count)
	s.Require().NoError(err)

	return count
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
