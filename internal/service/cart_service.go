package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/imnamix/be-payplex/internal/domain"
	"github.com/imnamix/be-payplex/internal/repository"
	"github.com/imnamix/be-payplex/pkg/mylogger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CartService interface {
	AddToCart(ctx context.Context, userID, productID int64, quantity int32) (*domain.CartView, error)
	UpdateQuantity(ctx context.Context, userID, productID int64, quantity int32) (*domain.CartView, error)
	RemoveFromCart(ctx context.Context, userID, productID int64) (*domain.CartView, error)
	ClearCart(ctx context.Context, userID int64) error
	GetCart(ctx context.Context, userID int64) (*domain.CartView, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	taxRate     decimal.Decimal
	logger      *zap.Logger
	tracer      trace.Tracer
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	taxRate decimal.Decimal,
	logger *zap.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		taxRate:     taxRate,
		logger:      logger,
		tracer:      otel.Tracer("cart_service"),
	}
}

// AddToCart merges quantity into the user's line for the product. The
// stock comparison here is advisory: it rejects obviously hopeless
// requests early, but the authoritative check is the conditional
// decrement at checkout.
func (s *cartService) AddToCart(ctx context.Context, userID, productID int64, quantity int32) (*domain.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddToCart")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("product_id", productID),
		attribute.Int("quantity", int(quantity)),
	)

	if quantity <= 0 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, ErrInvalidQuantity)
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if !product.Purchasable() {
		return nil, fmt.Errorf("product %d has status %s: %w", productID, product.Status, repository.ErrProductNotPurchasable)
	}

	merged := int64(quantity)
	line, err := s.cartRepo.GetLine(ctx, userID, productID)
	if err != nil && !errors.Is(err, repository.ErrCartLineNotFound) {
		return nil, err
	}
	if line != nil {
		merged += int64(line.Quantity)
	}

	if merged > product.AvailableQuantity {
		mylogger.Info(
			ctx,
			s.logger,
			"Cart add rejected, exceeds observed stock",
			zap.Int64("product_id", productID),
			zap.Int64("requested", merged),
			zap.Int64("available", product.AvailableQuantity),
		)

		return nil, fmt.Errorf("product %d: requested %d, available %d: %w",
			productID, merged, product.AvailableQuantity, repository.ErrInsufficientStock)
	}

	if err := s.cartRepo.AddOrMerge(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int32) (*domain.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateQuantity")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("product_id", productID),
		attribute.Int("quantity", int(quantity)),
	)

	if quantity <= 0 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, ErrInvalidQuantity)
	}

	if _, err := s.cartRepo.GetLine(ctx, userID, productID); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if int64(quantity) > product.AvailableQuantity {
		return nil, fmt.Errorf("product %d: requested %d, available %d: %w",
			productID, quantity, product.AvailableQuantity, repository.ErrInsufficientStock)
	}

	if err := s.cartRepo.SetQuantity(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) RemoveFromCart(ctx context.Context, userID, productID int64) (*domain.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveFromCart")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("product_id", productID),
	)

	if err := s.cartRepo.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) ClearCart(ctx context.Context, userID int64) error {
	ctx, span := s.tracer.Start(ctx, "CartService.ClearCart")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	return s.cartRepo.Clear(ctx, nil, userID)
}

func (s *cartService) GetCart(ctx context.Context, userID int64) (*domain.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.GetCart")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	items, err := s.cartRepo.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.PricedLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.PricedLine{
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	subtotal, tax, total := domain.CalculateTotals(lines, s.taxRate)

	return &domain.CartView{
		Items:    items,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    total,
	}, nil
}
