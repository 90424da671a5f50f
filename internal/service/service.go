package service

import (
	"context"
	"encoding/json"

	"github.com/gymboard/booking-service/config"
	"github.com/gymboard/booking-service/internal/cache"
	"github.com/gymboard/booking-service/internal/model"
	"github.com/gymboard/booking-service/internal/repository"
	"github.com/gymboard/booking-service/pkg/kafka"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type Service struct {
	log      *zap.Logger
	repo     repository.Repository
	notifier *Notifier
	producer sarama.SyncProducer
	cache    *cache.Cache
	booking  config.Booking
}

// NewService wires the booking engine. producer and cache may be nil;
// both are best-effort layers on top of the authoritative store.
func NewService(repo repository.Repository, notifier *Notifier, producer sarama.SyncProducer, c *cache.Cache, booking config.Booking, log *zap.Logger) *Service {
	return &Service{
		log:      log,
		repo:     repo,
		notifier: notifier,
		producer: producer,
		cache:    c,
		booking:  booking,
	}
}

// Subscribe exposes the notifier's per-section invalidation stream.
func (s *Service) Subscribe(sectionID string) (<-chan model.InvalidationEvent, func()) {
	return s.notifier.Subscribe(sectionID)
}

// HandleRemoteEvent applies a mutation event consumed from the broker:
// local subscribers get invalidated the same way as for local writes.
func (s *Service) HandleRemoteEvent(ctx context.Context, event model.BookingEvent) {
	s.invalidate(ctx, event.SectionID)
}

// publishChange records a reservation mutation: local subscribers and
// cache first, then the broker so other replicas follow. Failures are
// logged and swallowed; the write already committed.
func (s *Service) publishChange(ctx context.Context, event model.BookingEvent) {
	s.invalidate(ctx, event.SectionID)

	if s.producer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("marshal booking event", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: kafka.BookingEventsTopic,
		Key:   sarama.StringEncoder(event.SectionID),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		s.log.Error("publish booking event", zap.Error(err), zap.String("section", event.SectionID))
	}
}

func (s *Service) invalidate(ctx context.Context, sectionID string) {
	s.notifier.Notify(sectionID)
	s.cache.InvalidateSection(ctx, sectionID)
}
