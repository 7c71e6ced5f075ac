package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/Domenick1991/airline-booking/config"
	"github.com/Domenick1991/airline-booking/internal/cache"
	"github.com/Domenick1991/airline-booking/internal/email"
	"github.com/Domenick1991/airline-booking/internal/kafka"
	"github.com/Domenick1991/airline-booking/internal/repository"
	"github.com/Domenick1991/airline-booking/internal/service/tickets"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTL)*time.Second)

	flightRepo := repository.NewFlightRepository(pool)
	passengerRepo := repository.NewPassengerRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	ticketService := tickets.NewTicketService(
		ticketRepo,
		flightRepo,
		passengerRepo,
		redisCache,
		producer,
		cfg.Kafka.TicketTopic,
		time.Duration(cfg.Booking.PayLockTTLSeconds)*time.Second,
		time.Duration(cfg.Booking.UnpaidTTLHours)*time.Hour,
		tickets.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.TicketEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	cleanupTicker := time.NewTicker(time.Duration(cfg.Worker.CleanupSweepMinutes) * time.Minute)
	defer cleanupTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-cleanupTicker.C:
			stale, err := ticketService.ExpireUnpaidTickets(ctx)
			if err != nil {
				log.Printf("cleanup unpaid tickets error: %v", err)
				continue
			}
			if len(stale) > 0 {
				log.Printf("removed %d stale unpaid tickets", len(stale))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
