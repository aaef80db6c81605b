package service_test

import (
	"github.com/imnamix/be-payplex/internal/domain"
	"github.com/imnamix/be-payplex/internal/repository"
	"github.com/imnamix/be-payplex/internal/service"
	"github.com/shopspring/decimal"
)

func (s *IntegrationTestSuite) TestProductLifecycle() {
	id, err := s.ProductService.Create(s.Ctx, &domain.Product{
		SellerID:          1,
		Name:              "Standing Desk",
		Description:       "Adjustable height",
		Price:             decimal.RequireFromString("299.99"),
		AvailableQuantity: 12,
		Category:          "furniture",
	})
	s.Require().NoError(err)
	s.Require().Positive(id)

	product, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Equal("Standing Desk", product.Name)
	s.Equal(domain.ProductStatusActive, product.Status)
	s.True(product.Price.Equal(decimal.RequireFromString("299.99")))

	newName := "Standing Desk v2"
	err = s.ProductService.Update(s.Ctx, id, &domain.UpdateProductInput{Name: &newName})
	s.Require().NoError(err)

	product, err = s.ProductService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Equal("Standing Desk v2", product.Name)

	s.Require().NoError(s.ProductService.Delete(s.Ctx, id))

	_, err = s.ProductService.FindByID(s.Ctx, id)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestRestock() {
	productID := s.seedProduct("Chair", "80.00", 2)

	s.Require().NoError(s.ProductService.Restock(s.Ctx, productID, 8))
	s.EqualValues(10, s.stockOf(productID))

	err := s.ProductService.Restock(s.Ctx, productID, 0)
	s.Require().ErrorIs(err, service.ErrInvalidQuantity)
}

func (s *IntegrationTestSuite) TestList_SearchAndPaging() {
	s.seedProduct("Blue Mug", "5.00", 10)
	s.seedProduct("Red Mug", "5.00", 10)
	s.seedProduct("Poster", "12.00", 10)

	products, total, err := s.ProductService.List(s.Ctx, 10, 0, "Mug")
	s.Require().NoError(err)
	s.Len(products, 2)
	s.EqualValues(2, total)

	products, total, err = s.ProductService.List(s.Ctx, 2, 0, "")
	s.Require().NoError(err)
	s.Len(products, 2)
	s.EqualValues(3, total)
}
