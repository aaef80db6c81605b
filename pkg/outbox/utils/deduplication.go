package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imnamix/be-payplex/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ProcessWithDeduplication runs action at most once per outbox event
// id. The id is claimed in processed_events first; the claim commits
// only after action succeeds, so a consumer crash mid-action releases
// it and the redelivery retries. A redelivered id hits the primary key
// and is skipped, which keeps at-least-once Kafka delivery from
// running side effects like restocking twice.
func ProcessWithDeduplication(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger *zap.Logger,
	eventID int64,
	action func() error,
) error {
	if eventID == 0 {
		// No id to claim, the event cannot be deduplicated.
		return action()
	}

	span := trace.SpanFromContext(ctx)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)

		if err := tx.Rollback(cleanupCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(
				cleanupCtx,
				logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	query := `
		INSERT INTO processed_events (event_id)
		VALUES ($1);
	`

	if _, err := tx.Exec(ctx, query, eventID); err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			mylogger.Info(
				ctx,
				logger,
				"Event already processed, skipping",
				zap.Int64("event_id", eventID),
			)

			return nil
		}

		span.RecordError(err)
		return err
	}

	done := false
	for attempt := 0; attempt < 3; attempt++ {
		if err = action(); err == nil {
			done = true
			break
		}

		if attempt < 2 {
			time.Sleep(500 * time.Millisecond)
		}
	}

	if !done {
		mylogger.Error(
			ctx,
			logger,
			"Event processing failed after retries",
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)

		return fmt.Errorf("event %d processing failed: %w", eventID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to commit processed event mark: %w", err)
	}

	return nil
}
