package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/imnamix/be-payplex/internal/domain"
	"github.com/imnamix/be-payplex/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CartRepository interface {
	AddOrMerge(ctx context.Context, userID, productID int64, quantity int32) error
	SetQuantity(ctx context.Context, userID, productID int64, quantity int32) error
	GetLine(ctx context.Context, userID, productID int64) (*domain.CartLine, error)
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, tx pgx.Tx, userID int64) error
	ListItems(ctx context.Context, userID int64) ([]domain.CartItem, error)
	SnapshotItems(ctx context.Context, tx pgx.Tx, userID int64) ([]domain.CartItem, error)
}

type cartRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewCartRepository(pool *pgxpool.Pool, logger *zap.Logger) CartRepository {
	return &cartRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("contract/cart_repo"),
	}
}

// AddOrMerge inserts a cart line or, when the (user, product) pair
// already exists, merges the quantities. The composite primary key
// keeps one line per pair.
func (r *cartRepo) AddOrMerge(ctx context.Context, userID, productID int64, quantity int32) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.AddOrMerge")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("product_id", productID),
		attribute.Int("quantity", int(quantity)),
	)

	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW();
	`

	_, err := r.pool.Exec(ctx, query, userID, productID, quantity)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to upsert cart line",
			zap.Int64("user_id", userID),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to upsert cart line: %w", err)
	}

	return nil
}

func (r *cartRepo) SetQuantity(ctx context.Context, userID, productID int64, quantity int32) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.SetQuantity")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("product_id", productID),
		attribute.Int("quantity", int(quantity)),
	)

	query := `
		UPDATE cart_items
		SET quantity = $3, updated_at = NOW()
		WHERE user_id = $1 AND product_id = $2;
	`

	commandTag, err := r.pool.Exec(ctx, query, userID, productID, quantity)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update cart line",
			zap.Int64("user_id", userID),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to update cart line: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrCartLineNotFound
	}

	return nil
}

func (r *cartRepo) GetLine(ctx context.Context, userID, productID int64) (*domain.CartLine, error) {
	ctx, span := r.tracer.Start(ctx, "CartRepository.GetLine")
	defer span.End()

	query := `
		SELECT user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2;
	`

	var line domain.CartLine
	err := r.pool.QueryRow(ctx, query, userID, productID).
		Scan(&line.UserID, &line.ProductID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartLineNotFound
		}

		span.RecordError(err)

		return nil, fmt.Errorf("failed to query cart line: %w", err)
	}

	return &line, nil
}

func (r *cartRepo) Remove(ctx context.Context, userID, productID int64) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.Remove")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("product_id", productID),
	)

	query := `
		DELETE FROM cart_items
		WHERE user_id = $1 AND product_id = $2;
	`

	if _, err := r.pool.Exec(ctx, query, userID, productID); err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to remove cart line: %w", err)
	}

	return nil
}

// Clear wipes the user's cart. Pass a transaction to make the clear
// part of a checkout commit; a nil tx clears against the pool.
func (r *cartRepo) Clear(ctx context.Context, tx pgx.Tx, userID int64) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.Clear")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	query := `
		DELETE FROM cart_items
		WHERE user_id = $1;
	`

	var err error
	if tx != nil {
		_, err = tx.Exec(ctx, query, userID)
	} else {
		_, err = r.pool.Exec(ctx, query, userID)
	}

	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to clear cart",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

func (r *cartRepo) ListItems(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	ctx, span := r.tracer.Start(ctx, "CartRepository.ListItems")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	rows, err := r.pool.Query(ctx, snapshotQuery, userID)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	return scanCartItems(rows)
}

// SnapshotItems reads the user's cart joined with live product rows
// inside the checkout transaction, preserving stored line order.
func (r *cartRepo) SnapshotItems(ctx context.Context, tx pgx.Tx, userID int64) ([]domain.CartItem, error) {
	ctx, span := r.tracer.Start(ctx, "CartRepository.SnapshotItems")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	rows, err := tx.Query(ctx, snapshotQuery, userID)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to snapshot cart items: %w", err)
	}
	defer rows.Close()

	return scanCartItems(rows)
}

const snapshotQuery = `
	SELECT c.product_id, c.quantity, p.name, p.price, p.available_quantity, p.status
	FROM cart_items c
	LEFT JOIN products p ON p.id = c.product_id AND p.deleted_at IS NULL
	WHERE c.user_id = $1
	ORDER BY c.created_at ASC, c.product_id ASC;
`

func scanCartItems(rows pgx.Rows) ([]domain.CartItem, error) {
	var items []domain.CartItem
	for rows.Next() {
		var (
			item      domain.CartItem
			name      *string
			price     *decimal.Decimal
			available *int64
			status    *domain.ProductStatus
		)

		if err := rows.Scan(&item.ProductID, &item.Quantity, &name, &price, &available, &status); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		// NULL product columns mean the referenced product is gone.
		if name == nil || price == nil || available == nil || status == nil {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, ErrProductNotFound)
		}

		item.ProductName = *name
		item.UnitPrice = *price
		item.Available = *available
		item.Status = *status

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return items, nil
}
