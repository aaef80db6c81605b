package service_test

import (
	"github.com/imnamix/be-payplex/internal/repository"
	"github.com/imnamix/be-payplex/internal/service"
	"github.com/shopspring/decimal"
)

func (s *IntegrationTestSuite) TestAddToCart_MergesQuantities() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Keyboard", "49.90", 10)

	_, err := s.CartService.AddToCart(s.Ctx, 1, productID, 2)
	s.Require().NoError(err)

	view, err := s.CartService.AddToCart(s.Ctx, 1, productID, 3)
	s.Require().NoError(err)

	s.Require().Len(view.Items, 1, "repeated adds stay one line")
	s.EqualValues(5, view.Items[0].Quantity)
	s.True(view.Subtotal.Equal(decimal.RequireFromString("249.50")), "subtotal = %s", view.Subtotal)
}

func (s *IntegrationTestSuite) TestAddToCart_BoundedByObservedStock() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Keyboard", "49.90", 4)

	_, err := s.CartService.AddToCart(s.Ctx, 1, productID, 3)
	s.Require().NoError(err)

	// 3 already in the cart, merging 2 more would exceed the 4 in stock
	_, err = s.CartService.AddToCart(s.Ctx, 1, productID, 2)
	s.Require().ErrorIs(err, repository.ErrInsufficientStock)
}

func (s *IntegrationTestSuite) TestAddToCart_RejectsInvalidQuantity() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Keyboard", "49.90", 10)

	_, err := s.CartService.AddToCart(s.Ctx, 1, productID, 0)
	s.Require().ErrorIs(err, service.ErrInvalidQuantity)

	_, err = s.CartService.AddToCart(s.Ctx, 1, productID, -2)
	s.Require().ErrorIs(err, service.ErrInvalidQuantity)
}

func (s *IntegrationTestSuite) TestAddToCart_UnknownProduct() {
	s.seedUser(1, "buyer@example.com")

	_, err := s.CartService.AddToCart(s.Ctx, 1, 424242, 1)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestUpdateQuantity_ReplacesNotMerges() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Keyboard", "49.90", 10)

	_, err := s.CartService.AddToCart(s.Ctx, 1, productID, 2)
	s.Require().NoError(err)

	view, err := s.CartService.UpdateQuantity(s.Ctx, 1, productID, 7)
	s.Require().NoError(err)

	s.Require().Len(view.Items, 1)
	s.EqualValues(7, view.Items[0].Quantity)
}

func (s *IntegrationTestSuite) TestUpdateQuantity_MissingLine() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Keyboard", "49.90", 10)

	_, err := s.CartService.UpdateQuantity(s.Ctx, 1, productID, 3)
	s.Require().ErrorIs(err, repository.ErrCartLineNotFound)
}

func (s *IntegrationTestSuite) TestRemoveAndClearCart() {
	s.seedUser(1, "buyer@example.com")
	aID := s.seedProduct("Pen", "2.00", 10)
	bID := s.seedProduct("Pencil", "1.00", 10)

	_, err := s.CartService.AddToCart(s.Ctx, 1, aID, 1)
	s.Require().NoError(err)
	_, err = s.CartService.AddToCart(s.Ctx, 1, bID, 1)
	s.Require().NoError(err)

	view, err := s.CartService.RemoveFromCart(s.Ctx, 1, aID)
	s.Require().NoError(err)
	s.Len(view.Items, 1)

	s.Require().NoError(s.CartService.ClearCart(s.Ctx, 1))

	view, err = s.CartService.GetCart(s.Ctx, 1)
	s.Require().NoError(err)
	s.Empty(view.Items)
	s.True(view.Total.IsZero())
}

func (s *IntegrationTestSuite) TestGetCart_TotalsFollowTaxRate() {
	s.seedUser(1, "buyer@example.com")
	productID := s.seedProduct("Desk Mat", "30.00", 10)

	_, err := s.CartService.AddToCart(s.Ctx, 1, productID, 2)
	s.Require().NoError(err)

	view, err := s.CartService.GetCart(s.Ctx, 1)
	s.Require().NoError(err)

	s.True(view.Subtotal.Equal(decimal.RequireFromString("60.00")))
	s.True(view.Tax.Equal(decimal.RequireFromString("6.00")))
	s.True(view.Total.Equal(decimal.RequireFromString("66.00")))
}
