package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gymboard/booking-service/config"
	"github.com/gymboard/booking-service/internal/cache"
	"github.com/gymboard/booking-service/internal/handler"
	"github.com/gymboard/booking-service/internal/repository"
	"github.com/gymboard/booking-service/internal/server"
	"github.com/gymboard/booking-service/internal/service"
	"github.com/gymboard/booking-service/migrations"
	"github.com/gymboard/booking-service/pkg/kafka"
	"github.com/gymboard/booking-service/pkg/logger"
	"github.com/gymboard/booking-service/pkg/postgres"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "booking")

	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %w", err)
	}
	defer db.Close()

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo booking %w", err)
	}

	// Broker and cache are best-effort layers; the service runs without
	// them when they are unreachable.
	var producer sarama.SyncProducer
	if producer, err = kafka.NewProducer(cfg.Kafka); err != nil {
		log.Warn("kafka producer unavailable", zap.Error(err))
		producer = nil
	}
	slotCache := cache.New(cfg.Redis, log)
	defer slotCache.Close() //nolint:errcheck

	notifier := service.NewNotifier(log)
	svc := service.NewService(repo, notifier, producer, slotCache, cfg.Booking, log)
	h := handler.New(svc, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.BookingConsumerGroup)
		if err != nil {
			log.Warn("kafka consumer unavailable", zap.Error(err))
			return nil
		}
		defer consumer.Close() //nolint:errcheck
		kafka.Consume(gCtx, consumer, handler.NewConsumer(svc.HandleRemoteEvent, log), log, kafka.BookingEventsTopic)
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Graceful shutdown")

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := srv.Stop(closeCtx); err != nil {
			log.Error("srv.Stop", zap.Error(err))
		}
		if producer != nil {
			_ = producer.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Graceful shutdown finished")
	return nil
}
