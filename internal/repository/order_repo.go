package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/imnamix/be-payplex/internal/domain"
	"github.com/imnamix/be-payplex/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	GetByCheckoutKey(ctx context.Context, key string) (*domain.Order, error)
	GetAllItemsOfOrder(ctx context.Context, tx pgx.Tx, orderID int64) ([]domain.OrderItem, error)
	ChangeOrderStatus(ctx context.Context, tx pgx.Tx, orderID int64, status domain.OrderStatus) error
	ChangePaymentStatus(ctx context.Context, tx pgx.Tx, orderID int64, status domain.PaymentStatus) error
}

type orderRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("order_repository"),
	}
}

func (r *orderRepo) CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", order.UserID),
		attribute.String("order_number", order.Number),
		attribute.Int("items_count", len(order.Items)),
	)

	queryOrder := `
		INSERT INTO orders (order_number, user_id, status, payment_status, subtotal, tax, total, shipping_address, checkout_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	if err := tx.QueryRow(
		ctx,
		queryOrder,
		order.Number,
		order.UserID,
		string(order.Status),
		string(order.PaymentStatus),
		order.Subtotal,
		order.Tax,
		order.Total,
		order.ShippingAddress,
		order.CheckoutKey,
	).Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" && pgError.ConstraintName == "orders_checkout_key_key" {
			return ErrDuplicateCheckoutKey
		}

		span.RecordError(err)

		mylogger.Warn(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.Error(err),
		)

		return err
	}

	queryItem := `
		INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		if err := tx.QueryRow(
			ctx,
			queryItem,
			order.ID,
			item.ProductID,
			item.ProductName,
			item.UnitPrice,
			item.Quantity,
			item.Subtotal,
		).Scan(&item.ID); err != nil {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Failed to insert item",
				zap.Error(err),
			)

			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

const orderColumns = `
	id, order_number, user_id, status, payment_status,
	subtotal, tax, total, shipping_address, checkout_key, created_at, updated_at
`

func (r *orderRepo) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByNumber")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_number", number),
	)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1;`

	return r.getOne(ctx, query, number)
}

func (r *orderRepo) GetByCheckoutKey(ctx context.Context, key string) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByCheckoutKey")
	defer span.End()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE checkout_key = $1;`

	return r.getOne(ctx, query, key)
}

func (r *orderRepo) getOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var order domain.Order
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&order.ID,
		&order.Number,
		&order.UserID,
		&order.Status,
		&order.PaymentStatus,
		&order.Subtotal,
		&order.Tax,
		&order.Total,
		&order.ShippingAddress,
		&order.CheckoutKey,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.GetAllItemsOfOrder(ctx, nil, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

func (r *orderRepo) GetAllItemsOfOrder(ctx context.Context, tx pgx.Tx, orderID int64) ([]domain.OrderItem, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetAllItemsOfOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
	)

	query := `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC;
	`

	var rows pgx.Rows
	var err error
	if tx != nil {
		rows, err = tx.Query(ctx, query, orderID)
	} else {
		rows, err = r.pool.Query(ctx, query, orderID)
	}
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query order_items",
			zap.Error(err),
		)

		return nil, err
	}
	defer rows.Close()

	var result []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.Subtotal,
		); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		mylogger.Error(
			ctx,
			r.logger,
			"Rows error",
			zap.Error(err),
		)

		return nil, err
	}

	return result, nil
}

func (r *orderRepo) ChangeOrderStatus(ctx context.Context, tx pgx.Tx, orderID int64, status domain.OrderStatus) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ChangeOrderStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("status", string(status)),
	)

	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2;
	`

	commandTag, err := tx.Exec(ctx, query, string(status), orderID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update order",
			zap.Error(err),
		)

		return fmt.Errorf("failed to update order: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		mylogger.Warn(
			ctx,
			r.logger,
			"Order not found",
			zap.Int64("order_id", orderID),
		)

		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepo) ChangePaymentStatus(ctx context.Context, tx pgx.Tx, orderID int64, status domain.PaymentStatus) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ChangePaymentStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("payment_status", string(status)),
	)

	query := `
		UPDATE orders
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2;
	`

	commandTag, err := tx.Exec(ctx, query, string(status), orderID)
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}
