package service_test

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/imnamix/be-payplex/internal/domain"
	"github.com/imnamix/be-payplex/internal/repository"
	"github.com/imnamix/be-payplex/internal/service"
	"github.com/shopspring/decimal"
)

func (s *IntegrationTestSuite) TestCheckout_Success() {
	s.seedUser(1, "buyer@example.com")
	bookID := s.seedProduct("Kuronami No Yaiba", "10.00", 5)
	penID := s.seedProduct("Fountain Pen", "5.005", 10)

	_, err := s.CartService.AddToCart(s.Ctx, 1, bookID, 2)
	s.Require().NoError(err)
	_, err = s.CartService.AddToCart(s.Ctx, 1, penID, 3)
	s.Require().NoError(err)

	order, err := s.CheckoutService.Checkout(s.Ctx, 1, "")
	s.Require().NoError(err)
	s.Require().NotNil(order)

	s.Equal("ORD-000001", order.Number)
	s.Equal(domain.OrderStatusPending, order.Status)
	s.Equal(domain.PaymentStatusPending, order.PaymentStatus)
	s.Len(order.Items, 2)

	s.True(order.Subtotal.Equal(decimal.RequireFromString("35.02")), "subtotal = %s", order.Subtotal)
	s.True(order.Tax.Equal(decimal.RequireFromString("3.50")), "tax = %s", order.Tax)
	s.True(order.Total.Equal(decimal.RequireFromString("38.52")), "total = %s", order.Total)

	s.EqualValues(3, s.stockOf(bookID))
	s.EqualValues(7, s.stockOf(penID))
	s.Equal(0, s.cartSize(1))

	// the staged OrderCreated event is picked up by the outbox worker
	s.Require().Eventually(func() bool {
		var publishedAt *time.Time
		err := s.DbPool.QueryRow(s.Ctx,
			"SELECT published_at FROM outbox WHERE aggregate_id = $1", order.Number).
			Scan(&publishedAt)

		return err == nil && publishedAt != nil
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *IntegrationTestSuite) TestCheckout_EmptyCart() {
	s.seedUser(1, "buyer@example.com")

	order, err := s.CheckoutService.Checkout(s.Ctx, 1, "")
	s.Require().ErrorIs(err, service.ErrEmptyCart)
	s.Nil(order)
}

func (s *IntegrationTestSuite) TestCheckout_NoOversell() {
	s.seedUser(1, "first@example.com")
	s.seedUser(2, "second@example.com")
	productID := s.seedProduct("Limited Vinyl", "25.00", 5)

	_, err := s.CartService.AddToCart(s.Ctx, 1, productID, 3)
	s.Require().NoError(err)
	_, err = s.CartService.AddToCart(s.Ctx, 2, productID, 3)
	s.Require().NoError(err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userID := range []int64{1, 2} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, errs[i] = s.CheckoutService.Checkout(s.Ctx, userID, "")
		}(i, userID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.Require().ErrorIs(err, repository.ErrInsufficientStock)
		}
	}

	s.Equal(1, succeeded, "exactly one of the competing checkouts may commit")
	s.EqualValues(2, s.stockOf(productID))
}

func (s *IntegrationTestSuite) TestCheckout_ConcurrentOrderNumbersDistinct() {
	const buyers = 8

	productID := s.seedProduct("Sticker Pack", "1.50", 100)
	for i := int64(1); i <= buyers; i++ {
		s.seedUser(i, uuid.NewString()+"@example.com")
		_, err := s.CartService.AddToCart(s.Ctx, i, productID, 1)
		s.Require().NoError(err)
	}

	var wg sync.WaitGroup
	orders := make([]*domain.Order, buyers)
	for i := int64(1); i <= buyers; i++ {
		wg.Add(1)
		go func(i int64) {
			defer wg.Done()
			order, err := s.CheckoutService.Checkout(s.Ctx, i, "")
			s.NoError(err)
			orders[i-1] = order
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, buyers)
	for _, order := range orders {
		s.Require().NotNil(order)
		s.False(seen[order.Number], "order number %s assigned twice", order.Number)
		seen[order.Number] = true
	}

	s.EqualValues(100-buyers, s.stockOf(productID))
}

func (s *IntegrationTestSuite) TestCheckout_FailureLeavesNoTrace() {
	s.seedUser(1, "buyer@example.com")
	cheapID := s.seedProduct("Notebook", "3.00", 50)
	scarceID := s.seedProduct("Rare Print", "90.00", 1)

	_, err := s.CartService.AddToCart(s.Ctx, 1, cheapID, 2)
	s.Require().NoError(err)
	_, err = s.CartService.AddToCart(s.Ctx, 1, scarceID, 1)
	s.Require().NoError(err)

	// a competing buyer takes the last unit before our checkout runs
	_, err = s.DbPool.Exec(s.Ctx,
		"UPDATE products SET available_quantity = 0 WHERE id = $1", scarceID)
	s.Require().NoError(err)

	order, err := s.CheckoutService.Checkout(s.Ctx, 1, "")
	s.Require().ErrorIs(err, repository.ErrInsufficientStock)
	s.Nil(order)

	s.EqualValues(50, s.stockOf(cheapID), "rolled back checkout must not decrement")
	s.Equal(2, s.cartSize(1), "rolled back checkout must keep the cart")

	var orderCount int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx,
		"SELECT COUNT(*) FROM orders WHERE user_id = 1").Scan(&orderCount))
	s.Equal(0, orderCount)

	var seq int64
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx,
		"SELECT value FROM order_sequence WHERE id = 1").Scan(&seq))
	s.EqualValues(0, seq, "sequence increment rolls back with the transaction")
}

func (s *IntegrationTestSuite) TestCheckout_IdempotencyKey() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Mug", "8.00", 10)

	_, err := s.CartService.AddToCart(s.Ctx, 1, productID, 2)
	s.Require().NoError(err)

	key := uuid.NewString()

	first, err := s.CheckoutService.Checkout(s.Ctx, 1, key)
	s.Require().NoError(err)

	// retry with the same key after the cart was already consumed
	second, err := s.CheckoutService.Checkout(s.Ctx, 1, key)
	s.Require().NoError(err)

	s.Equal(first.Number, second.Number)
	s.True(first.Total.Equal(second.Total))
	s.EqualValues(8, s.stockOf(productID), "retry must not decrement again")

	var orderCount int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx,
		"SELECT COUNT(*) FROM orders WHERE user_id = 1").Scan(&orderCount))
	s.Equal(1, orderCount)
}

func (s *IntegrationTestSuite) TestCheckout_SequencerUnavailable() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Wall Clock", "18.00", 5)

	_, err := s.CartService.AddToCart(s.Ctx, 1, productID, 2)
	s.Require().NoError(err)

	// no counter row: the sequencer fails closed and checkout aborts
	// before touching inventory
	_, err = s.DbPool.Exec(s.Ctx, "DELETE FROM order_sequence WHERE id = 1")
	s.Require().NoError(err)

	order, err := s.CheckoutService.Checkout(s.Ctx, 1, "")
	s.Require().ErrorIs(err, repository.ErrSequencerUnavailable)
	s.Nil(order)

	s.EqualValues(5, s.stockOf(productID), "aborted checkout must not decrement")
	s.Equal(1, s.cartSize(1), "aborted checkout must keep the cart")

	var orderCount int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx,
		"SELECT COUNT(*) FROM orders WHERE user_id = 1").Scan(&orderCount))
	s.Equal(0, orderCount)
}

func (s *IntegrationTestSuite) TestCheckout_InactiveProductRejected() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Sunset Lamp", "40.00", 5)

	_, err := s.CartService.AddToCart(s.Ctx, 1, productID, 1)
	s.Require().NoError(err)

	_, err = s.DbPool.Exec(s.Ctx,
		"UPDATE products SET status = 'discontinued' WHERE id = $1", productID)
	s.Require().NoError(err)

	order, err := s.CheckoutService.Checkout(s.Ctx, 1, "")
	s.Require().ErrorIs(err, repository.ErrProductNotPurchasable)
	s.Nil(order)
}
