package handler

import (
	"context"
	"encoding/json"

	"github.com/gymboard/booking-service/internal/model"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type changeHandler func(ctx context.Context, event model.BookingEvent)

type Consumer struct {
	handleChange changeHandler
	log          *zap.Logger
	ready        chan bool
}

func NewConsumer(handleChange changeHandler, log *zap.Logger) *Consumer {
	return &Consumer{
		handleChange: handleChange,
		log:          log.Named("consumer"),
		ready:        make(chan bool),
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	// Mark the consumer as ready
	close(consumer.ready)
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var event model.BookingEvent
			if err := json.Unmarshal(message.Value, &event); err != nil {
				consumer.log.Error("unmarshal booking event", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			consumer.handleChange(context.Background(), event)

			consumer.log.Debug("Message claimed:", zap.String("value", string(message.Value)), zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
