package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/imnamix/be-payplex/internal/domain"
	"github.com/imnamix/be-payplex/internal/repository"
	"github.com/imnamix/be-payplex/pkg/mylogger"
	outboxDomain "github.com/imnamix/be-payplex/pkg/outbox/domain"
	"github.com/imnamix/be-payplex/pkg/outbox/worker"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CheckoutService interface {
	// Checkout converts the user's cart into exactly one committed
	// order, or fails leaving cart and inventory untouched. checkoutKey
	// is an optional client dedupe token: repeating a key returns the
	// order it already committed instead of committing twice.
	Checkout(ctx context.Context, userID int64, checkoutKey string) (*domain.Order, error)
}

type checkoutService struct {
	pool        *pgxpool.Pool
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	seqRepo     repository.SequenceRepository
	outboxRepo  worker.OutboxRepository
	taxRate     decimal.Decimal
	orderPrefix string
	logger      *zap.Logger
	tracer      trace.Tracer
}

func NewCheckoutService(
	pool *pgxpool.Pool,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	seqRepo repository.SequenceRepository,
	outboxRepo worker.OutboxRepository,
	taxRate decimal.Decimal,
	orderPrefix string,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		pool:        pool,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		seqRepo:     seqRepo,
		outboxRepo:  outboxRepo,
		taxRate:     taxRate,
		orderPrefix: orderPrefix,
		logger:      logger,
		tracer:      otel.Tracer("checkout_service"),
	}
}

// Checkout runs the whole pipeline inside one transaction: snapshot
// cart, price, allocate order number, persist order, decrement stock
// per line, clear cart, stage the OrderCreated event. The decrement
// re-checks availability in its UPDATE predicate, so a concurrent
// checkout that wins the race makes this one roll back with
// ErrInsufficientStock and no visible effect.
func (s *checkoutService) Checkout(ctx context.Context, userID int64, checkoutKey string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.Checkout")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	if checkoutKey != "" {
		existing, err := s.orderRepo.GetByCheckoutKey(ctx, checkoutKey)
		if err == nil {
			mylogger.Info(
				ctx,
				s.logger,
				"Checkout key already committed, returning existing order",
				zap.String("order_number", existing.Number),
			)

			return existing, nil
		}
		if !errors.Is(err, repository.ErrOrderNotFound) {
			return nil, err
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)

		err := tx.Rollback(cleanupCtx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(
				cleanupCtx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	items, err := s.cartRepo.SnapshotItems(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	for _, item := range items {
		if item.Status != domain.ProductStatusActive {
			return nil, fmt.Errorf("product %d has status %s: %w",
				item.ProductID, item.Status, repository.ErrProductNotPurchasable)
		}

		if int64(item.Quantity) > item.Available {
			return nil, fmt.Errorf("product %d: requested %d, available %d: %w",
				item.ProductID, item.Quantity, item.Available, repository.ErrInsufficientStock)
		}
	}

	lines := make([]domain.PricedLine, 0, len(items))
	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.PricedLine{
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
		orderItems = append(orderItems, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity)),
		})
	}

	subtotal, tax, total := domain.CalculateTotals(lines, s.taxRate)

	// Fail-closed: the sequencer runs before any inventory mutation.
	seq, err := s.seqRepo.NextOrderNumber(ctx, tx)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Order sequencer failed, aborting checkout",
			zap.Error(err),
		)

		return nil, err
	}

	order := &domain.Order{
		Number:          fmt.Sprintf("%s-%06d", s.orderPrefix, seq),
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		Items:           orderItems,
		Subtotal:        subtotal,
		Tax:             tax,
		Total:           total,
		ShippingAddress: user.ShippingAddress,
	}
	if checkoutKey != "" {
		order.CheckoutKey = &checkoutKey
	}

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateCheckoutKey) {
			// Lost a dedupe race; the other attempt committed.
			return s.orderRepo.GetByCheckoutKey(ctx, checkoutKey)
		}

		mylogger.Error(
			ctx,
			s.logger,
			"Failed to create order",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Decrements follow stored line order. Any failure rolls the whole
	// transaction back: the order row above never becomes visible and
	// no net decrement remains.
	for _, item := range order.Items {
		if err := s.productRepo.DecreaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				mylogger.Info(
					ctx,
					s.logger,
					"Lost stock race, checkout rolled back",
					zap.Int64("product_id", item.ProductID),
				)
			}

			return nil, err
		}
	}

	if err := s.cartRepo.Clear(ctx, tx, userID); err != nil {
		return nil, err
	}

	if err := s.emitOrderCreated(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to commit transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Checkout committed",
		zap.String("order_number", order.Number),
		zap.Int64("user_id", userID),
		zap.Int("items", len(order.Items)),
	)

	return order, nil
}

func (s *checkoutService) emitOrderCreated(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	event := domain.OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		Total:       order.Total,
		Items:       order.Items,
	}

	envelope := map[string]any{
		"event":   "OrderCreated",
		"payload": event,
	}

	payloadBytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		AggregateType: "Order",
		AggregateID:   order.Number,
		EventType:     "OrderCreated",
		Payload:       payloadBytes,
		Topic:         "order_events",
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to save outbox event",
			zap.Error(err),
		)

		return fmt.Errorf("failed to save outbox event: %w", err)
	}

	return nil
}
