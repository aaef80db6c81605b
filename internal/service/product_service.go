package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/imnamix/be-payplex/internal/domain"
	"github.com/imnamix/be-payplex/internal/repository"
	"github.com/imnamix/be-payplex/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ProductService interface {
	Create(ctx context.Context, product *domain.Product) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, limit, offset int64, search string) ([]domain.Product, int64, error)
	Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error
	Delete(ctx context.Context, id int64) error
	Restock(ctx context.Context, id int64, quantity int32) error
}

type productService struct {
	pool        *pgxpool.Pool
	productRepo repository.ProductRepository
	logger      *zap.Logger
	tracer      trace.Tracer
}

func NewProductService(
	pool *pgxpool.Pool,
	productRepo repository.ProductRepository,
	logger *zap.Logger,
) ProductService {
	return &productService{
		pool:        pool,
		productRepo: productRepo,
		logger:      logger,
		tracer:      otel.Tracer("product_service"),
	}
}

func (s *productService) Create(ctx context.Context, product *domain.Product) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("name", product.Name),
	)

	if product.Status == "" {
		product.Status = domain.ProductStatusActive
	}

	return s.productRepo.Create(ctx, product)
}

func (s *productService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) List(ctx context.Context, limit, offset int64, search string) ([]domain.Product, int64, error) {
	return s.productRepo.List(ctx, limit, offset, search)
}

func (s *productService) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error {
	return s.productRepo.Update(ctx, id, input)
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	return s.productRepo.DeleteByID(ctx, id)
}

// Restock is the explicit stock increase path; together with the
// checkout decrement it is the only mutation of available_quantity.
func (s *productService) Restock(ctx context.Context, id int64, quantity int32) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.Restock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.Int("quantity", int(quantity)),
	)

	if quantity <= 0 {
		return fmt.Errorf("quantity %d: %w", quantity, ErrInvalidQuantity)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		if err := tx.Rollback(cleanupCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(cleanupCtx, s.logger, "Failed to rollback transaction", zap.Error(err))
		}
	}()

	if err := s.productRepo.IncreaseStock(ctx, tx, id, quantity); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
