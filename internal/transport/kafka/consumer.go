package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/imnamix/be-payplex/internal/domain"
	"github.com/imnamix/be-payplex/internal/service"
	"github.com/imnamix/be-payplex/pkg/kafka"
	"github.com/imnamix/be-payplex/pkg/mylogger"
	"go.uber.org/zap"
)

type Consumer struct {
	orderService service.OrderService
	logger       *zap.Logger
}

func NewConsumer(orderService service.OrderService, logger *zap.Logger) *Consumer {
	return &Consumer{
		orderService: orderService,
		logger:       logger,
	}
}

func (c *Consumer) Start(ctx context.Context, brokers []string) {
	consumerGroup := kafka.NewConsumerGroup(
		brokers,
		"fulfillment-group-v1",
		[]string{"payment_events", "user_events"},
		c.processMessage,
		c.logger,
	)

	consumerGroup.Run(ctx)
}

func (c *Consumer) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	mylogger.Info(
		ctx,
		c.logger,
		"Processing message",
		zap.String("topic", msg.Topic),
	)

	// EventID is injected by the producer's outbox worker and keys
	// consumer-side deduplication.
	type EventWrapper struct {
		Event   string          `json:"event"`
		EventID int64           `json:"event_id"`
		Payload json.RawMessage `json:"payload"`
	}

	var wrapper EventWrapper
	if err := json.Unmarshal(msg.Value, &wrapper); err != nil {
		mylogger.Error(ctx, c.logger, "Error unmarshalling wrapper", zap.Error(err))
		return err
	}

	switch wrapper.Event {
	case "UserRegistered":
		var event domain.UserRegisteredEvent
		if err := json.Unmarshal(wrapper.Payload, &event); err != nil {
			mylogger.Error(ctx, c.logger, "Failed to unmarshal payload", zap.Error(err))
			return err
		}
		event.EventID = wrapper.EventID

		if err := c.orderService.HandleUserRegistered(ctx, &event); err != nil {
			mylogger.Error(ctx, c.logger, "Failed to handle register event", zap.Error(err))
			return err
		}
	case "PaymentSucceeded":
		var event domain.PaymentSucceededEvent
		if err := json.Unmarshal(wrapper.Payload, &event); err != nil {
			mylogger.Error(ctx, c.logger, "Failed to unmarshal payload", zap.Error(err))
			return err
		}
		event.EventID = wrapper.EventID

		if err := c.orderService.MarkPaid(ctx, &event); err != nil {
			mylogger.Error(ctx, c.logger, "Failed to mark order paid", zap.Error(err))
			return err
		}
	case "PaymentFailed":
		var event domain.PaymentFailedEvent
		if err := json.Unmarshal(wrapper.Payload, &event); err != nil {
			mylogger.Error(ctx, c.logger, "Failed to unmarshal payload", zap.Error(err))
			return err
		}
		event.EventID = wrapper.EventID

		if err := c.orderService.CancelOrder(ctx, &event); err != nil {
			mylogger.Error(ctx, c.logger, "Failed to cancel order", zap.Error(err))
			return err
		}
	default:
		mylogger.Warn(ctx, c.logger, "Ignored event type", zap.String("event_type", wrapper.Event))
	}

	return nil
}
