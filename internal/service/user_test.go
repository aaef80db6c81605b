package service_test

import (
	"github.com/imnamix/be-payplex/internal/repository"
	"github.com/imnamix/be-payplex/internal/service"
	"go.uber.org/zap"
)

func (s *IntegrationTestSuite) newUserService() service.UserService {
	return service.NewUserService(
		repository.NewUserRepository(s.DbPool, zap.NewNop()),
		zap.NewNop(),
	)
}

func (s *IntegrationTestSuite) TestUpdateShippingAddress() {
	s.seedUser(1, "buyer@example.com")
	userService := s.newUserService()

	s.Require().NoError(userService.UpdateShippingAddress(s.Ctx, 1, "  5 Moved Street  "))

	user, err := userService.GetMe(s.Ctx, 1)
	s.Require().NoError(err)
	s.Equal("5 Moved Street", user.ShippingAddress, "address is trimmed before persisting")

	err = userService.UpdateShippingAddress(s.Ctx, 404, "nowhere")
	s.Require().ErrorIs(err, repository.ErrUserNotFound)
}

func (s *IntegrationTestSuite) TestCheckoutSnapshotsShippingAddress() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Globe", "15.00", 5)
	userService := s.newUserService()

	s.Require().NoError(userService.UpdateShippingAddress(s.Ctx, 1, "7 Ship Lane"))

	_, err := s.CartService.AddToCart(s.Ctx, 1, productID, 1)
	s.Require().NoError(err)

	order, err := s.CheckoutService.Checkout(s.Ctx, 1, "")
	s.Require().NoError(err)
	s.Equal("7 Ship Lane", order.ShippingAddress)

	// changing the address afterwards must not rewrite the order
	s.Require().NoError(userService.UpdateShippingAddress(s.Ctx, 1, "8 Other Lane"))

	got, err := s.OrderService.GetOrder(s.Ctx, order.Number, 1)
	s.Require().NoError(err)
	s.Equal("7 Ship Lane", got.ShippingAddress)
}
