package service_test

import (
	"time"

	"github.com/imnamix/be-payplex/internal/domain"
	"github.com/imnamix/be-payplex/internal/repository"
	"github.com/imnamix/be-payplex/internal/service"
)

func (s *IntegrationTestSuite) placeOrder(userID, productID int64, quantity int32) *domain.Order {
	_, err := s.CartService.AddToCart(s.Ctx, userID, productID, quantity)
	s.Require().NoError(err)

	order, err := s.CheckoutService.Checkout(s.Ctx, userID, "")
	s.Require().NoError(err)

	return order
}

func (s *IntegrationTestSuite) TestGetOrder_OwnerOnly() {
	s.seedUser(1, "owner@example.com")
	s.seedUser(2, "stranger@example.com")
	productID := s.seedProduct("Lamp", "20.00", 5)

	order := s.placeOrder(1, productID, 1)

	got, err := s.OrderService.GetOrder(s.Ctx, order.Number, 1)
	s.Require().NoError(err)
	s.Equal(order.Number, got.Number)
	s.Require().Len(got.Items, 1)
	s.Equal("Lamp", got.Items[0].ProductName)

	_, err = s.OrderService.GetOrder(s.Ctx, order.Number, 2)
	s.Require().ErrorIs(err, service.ErrNotOrderOwner)

	_, err = s.OrderService.GetOrder(s.Ctx, "ORD-999999", 1)
	s.Require().ErrorIs(err, repository.ErrOrderNotFound)
}

func (s *IntegrationTestSuite) TestMarkPaid() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Lamp", "20.00", 5)

	order := s.placeOrder(1, productID, 1)

	err := s.OrderService.MarkPaid(s.Ctx, &domain.PaymentSucceededEvent{
		OrderID:   order.ID,
		PaymentID: 77,
		PaidAt:    time.Now(),
	})
	s.Require().NoError(err)

	got, err := s.OrderService.GetOrder(s.Ctx, order.Number, 1)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPaid, got.Status)
	s.Equal(domain.PaymentStatusPaid, got.PaymentStatus)
}

func (s *IntegrationTestSuite) TestCancelOrder_Restocks() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Lamp", "20.00", 5)

	order := s.placeOrder(1, productID, 3)
	s.EqualValues(2, s.stockOf(productID))

	err := s.OrderService.CancelOrder(s.Ctx, &domain.PaymentFailedEvent{
		OrderID:   order.ID,
		PaymentID: 77,
		FailedAt:  time.Now(),
	})
	s.Require().NoError(err)

	got, err := s.OrderService.GetOrder(s.Ctx, order.Number, 1)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, got.Status)
	s.Equal(domain.PaymentStatusFailed, got.PaymentStatus)

	s.EqualValues(5, s.stockOf(productID), "cancellation returns the reserved units")
}

func (s *IntegrationTestSuite) TestCancelOrder_RedeliveredEventRestocksOnce() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Lamp", "20.00", 5)

	order := s.placeOrder(1, productID, 3)
	s.EqualValues(2, s.stockOf(productID))

	// consumer groups deliver at least once; the same outbox event id
	// can arrive again after a rebalance
	event := &domain.PaymentFailedEvent{
		EventID:   501,
		OrderID:   order.ID,
		PaymentID: 77,
		FailedAt:  time.Now(),
	}

	s.Require().NoError(s.OrderService.CancelOrder(s.Ctx, event))
	s.EqualValues(5, s.stockOf(productID))

	s.Require().NoError(s.OrderService.CancelOrder(s.Ctx, event))
	s.EqualValues(5, s.stockOf(productID), "redelivery must not restock a second time")

	var claims int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx,
		"SELECT COUNT(*) FROM processed_events WHERE event_id = 501").Scan(&claims))
	s.Equal(1, claims)
}

func (s *IntegrationTestSuite) TestMarkPaid_RedeliveredEventSkipped() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Lamp", "20.00", 5)

	order := s.placeOrder(1, productID, 1)

	event := &domain.PaymentSucceededEvent{
		EventID:   601,
		OrderID:   order.ID,
		PaymentID: 77,
		PaidAt:    time.Now(),
	}

	s.Require().NoError(s.OrderService.MarkPaid(s.Ctx, event))
	s.Require().NoError(s.OrderService.MarkPaid(s.Ctx, event))

	got, err := s.OrderService.GetOrder(s.Ctx, order.Number, 1)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPaid, got.Status)

	// a different event id is a different payment outcome and still applies
	s.Require().NoError(s.OrderService.CancelOrder(s.Ctx, &domain.PaymentFailedEvent{
		EventID:   602,
		OrderID:   order.ID,
		PaymentID: 78,
		FailedAt:  time.Now(),
	}))
	s.EqualValues(5, s.stockOf(productID))
}

func (s *IntegrationTestSuite) TestHandleUserRegistered() {
	err := s.OrderService.HandleUserRegistered(s.Ctx, &domain.UserRegisteredEvent{
		UserID:          42,
		Email:           "new@example.com",
		Name:            "New User",
		ShippingAddress: "9 New Street",
	})
	s.Require().NoError(err)

	var email string
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx,
		"SELECT email FROM users WHERE id = 42").Scan(&email))
	s.Equal("new@example.com", email)

	// replays of the same event are absorbed
	s.Require().NoError(s.OrderService.HandleUserRegistered(s.Ctx, &domain.UserRegisteredEvent{
		UserID: 42,
		Email:  "new@example.com",
	}))
}
