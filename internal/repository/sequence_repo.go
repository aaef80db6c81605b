package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SequenceRepository interface {
	NextOrderNumber(ctx context.Context, tx pgx.Tx) (int64, error)
}

type sequenceRepo struct {
	logger *zap.Logger
	tracer trace.Tracer
}

func NewSequenceRepository(logger *zap.Logger) SequenceRepository {
	return &sequenceRepo{
		logger: logger,
		tracer: otel.Tracer("contract/sequence_repo"),
	}
}

// NextOrderNumber bumps the order counter row and returns the new
// value. The row lock taken by the UPDATE makes concurrent
// allocations strictly increasing with no duplicates; an aborted
// checkout leaves a gap, which is acceptable. Any failure here is
// surfaced as ErrSequencerUnavailable so checkout aborts before any
// inventory mutation.
func (r *sequenceRepo) NextOrderNumber(ctx context.Context, tx pgx.Tx) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "SequenceRepository.NextOrderNumber")
	defer span.End()

	query := `
		UPDATE order_sequence
		SET value = value + 1, updated_at = NOW()
		WHERE id = 1
		RETURNING value;
	`

	var value int64
	if err := tx.QueryRow(ctx, query).Scan(&value); err != nil {
		span.RecordError(err)

		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSequencerUnavailable
		}

		return 0, fmt.Errorf("%w: %v", ErrSequencerUnavailable, err)
	}

	span.SetAttributes(
		attribute.Int64("value", value),
	)

	return value, nil
}
