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
	outboxUtils "github.com/imnamix/be-payplex/pkg/outbox/utils"
	"github.com/imnamix/be-payplex/pkg/outbox/worker"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderService interface {
	GetOrder(ctx context.Context, orderNumber string, userID int64) (*domain.Order, error)
	MarkPaid(ctx context.Context, event *domain.PaymentSucceededEvent) error
	CancelOrder(ctx context.Context, event *domain.PaymentFailedEvent) error
	HandleUserRegistered(ctx context.Context, event *domain.UserRegisteredEvent) error
}

type orderService struct {
	pool        *pgxpool.Pool
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	outboxRepo  worker.OutboxRepository
	logger      *zap.Logger
	tracer      trace.Tracer
}

func NewOrderService(
	pool *pgxpool.Pool,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	outboxRepo worker.OutboxRepository,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		pool:        pool,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
		tracer:      otel.Tracer("order_service"),
	}
}

func (s *orderService) GetOrder(ctx context.Context, orderNumber string, userID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_number", orderNumber),
		attribute.Int64("user_id", userID),
	)

	order, err := s.orderRepo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		mylogger.Warn(
			ctx,
			s.logger,
			"Order access denied",
			zap.String("order_number", orderNumber),
			zap.Int64("owner", order.UserID),
			zap.Int64("requester", userID),
		)

		return nil, ErrNotOrderOwner
	}

	return order, nil
}

// MarkPaid and CancelOrder arrive over Kafka at least once; both are
// keyed on the producer's outbox event id so a redelivery is skipped
// instead of applied twice.
func (s *orderService) MarkPaid(ctx context.Context, event *domain.PaymentSucceededEvent) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.MarkPaid")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", event.EventID),
		attribute.Int64("order_id", event.OrderID),
	)

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, event.EventID, func() error {
		return s.markPaid(ctx, event)
	})
}

func (s *orderService) markPaid(ctx context.Context, event *domain.PaymentSucceededEvent) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		if err := tx.Rollback(shutdownCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Error(
				shutdownCtx,
				s.logger,
				"Failed to rollback transaction",
				zap.Error(err),
			)
		}
	}()

	if err := s.orderRepo.ChangeOrderStatus(ctx, tx, event.OrderID, domain.OrderStatusPaid); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return fmt.Errorf("order %d not found", event.OrderID)
		}

		return fmt.Errorf("failed to update order status: %w", err)
	}

	if err := s.orderRepo.ChangePaymentStatus(ctx, tx, event.OrderID, domain.PaymentStatusPaid); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return err
	}

	return nil
}

// CancelOrder is the post-commit compensating path: the order flips to
// cancelled and every item quantity is restocked, in one transaction.
func (s *orderService) CancelOrder(ctx context.Context, event *domain.PaymentFailedEvent) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", event.EventID),
		attribute.Int64("order_id", event.OrderID),
	)

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, event.EventID, func() error {
		return s.cancelOrder(ctx, event)
	})
}

func (s *orderService) cancelOrder(ctx context.Context, event *domain.PaymentFailedEvent) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		if err := tx.Rollback(shutdownCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(shutdownCtx, s.logger, "Failed to rollback transaction", zap.Error(err))
		}
	}()

	if err := s.orderRepo.ChangeOrderStatus(ctx, tx, event.OrderID, domain.OrderStatusCancelled); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return fmt.Errorf("order %d not found", event.OrderID)
		}

		return fmt.Errorf("failed to cancel order: %w", err)
	}

	if err := s.orderRepo.ChangePaymentStatus(ctx, tx, event.OrderID, domain.PaymentStatusFailed); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	orderItems, err := s.orderRepo.GetAllItemsOfOrder(ctx, tx, event.OrderID)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to query items of order",
			zap.Int64("order_id", event.OrderID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to query items of order: %w", err)
	}

	for _, item := range orderItems {
		if err := s.productRepo.IncreaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			mylogger.Error(
				ctx,
				s.logger,
				"Failed to restock item",
				zap.Int64("product_id", item.ProductID),
				zap.Int32("quantity", item.Quantity),
				zap.Error(err),
			)

			return err
		}
	}

	if err := s.emitEvent(ctx, tx, "OrderCancelled", &domain.OrderCancelledEvent{
		OrderID: event.OrderID,
		Items:   orderItems,
	}); err != nil {
		return fmt.Errorf("failed to emit event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return err
	}

	return nil
}

func (s *orderService) HandleUserRegistered(ctx context.Context, event *domain.UserRegisteredEvent) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.HandleUserRegistered")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", event.EventID),
		attribute.Int64("user_id", event.UserID),
	)

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, event.EventID, func() error {
		return s.saveRegisteredUser(ctx, event)
	})
}

func (s *orderService) saveRegisteredUser(ctx context.Context, event *domain.UserRegisteredEvent) error {
	if err := s.userRepo.SaveUserDuplication(ctx, event); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)

		mylogger.Warn(
			ctx,
			s.logger,
			"Failed to save user",
			zap.Error(err),
		)

		return err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"User saved successfully",
		zap.Int64("user_id", event.UserID),
	)

	return nil
}

func (s *orderService) emitEvent(ctx context.Context, tx pgx.Tx, eventType string, payload any) error {
	wrapper := map[string]any{
		"event":   eventType,
		"payload": payload,
	}

	wrapperBytes, err := json.Marshal(wrapper)
	if err != nil {
		return fmt.Errorf("failed to marshal wrapper: %w", err)
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		AggregateType: "Order",
		EventType:     eventType,
		Payload:       wrapperBytes,
		Topic:         "order_events",
	}

	return s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent)
}
