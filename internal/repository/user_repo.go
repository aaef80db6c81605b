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

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	SaveUserDuplication(ctx context.Context, event *domain.UserRegisteredEvent) error
	UpdateShippingAddress(ctx context.Context, id int64, address string) error
}

type userRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewUserRepository(pool *pgxpool.Pool, logger *zap.Logger) UserRepository {
	return &userRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("contract/user_repo"),
	}
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		SELECT id, email, name, shipping_address, created_at, updated_at
		FROM users
		WHERE id = $1;
	`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.Name, &user.ShippingAddress, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// SaveUserDuplication mirrors the registration event into the local
// users table so checkout can snapshot the shipping address without a
// remote call. Replays are ignored.
func (r *userRepo) SaveUserDuplication(ctx context.Context, event *domain.UserRegisteredEvent) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.SaveUserDuplication")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", event.UserID),
		attribute.String("email", event.Email),
	)

	query := `
		INSERT INTO users (id, email, name, shipping_address)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, event.UserID, event.Email, event.Name, event.ShippingAddress)
	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) {
			if pgError.Code == "23505" {
				mylogger.Warn(
					ctx,
					r.logger,
					"User already exists, skipping",
					zap.Int64("user_id", event.UserID),
				)

				return nil
			}
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error inserting into users",
			zap.Int64("user_id", event.UserID),
			zap.Error(err),
		)

		return err
	}

	return nil
}

func (r *userRepo) UpdateShippingAddress(ctx context.Context, id int64, address string) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.UpdateShippingAddress")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		UPDATE users
		SET shipping_address = $1, updated_at = NOW()
		WHERE id = $2;
	`

	commandTag, err := r.pool.Exec(ctx, query, address, id)
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to update shipping address: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
