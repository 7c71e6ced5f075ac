package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/airline-booking/config"
	"github.com/Domenick1991/airline-booking/internal/bootstrap"
	"github.com/Domenick1991/airline-booking/internal/cache"
	"github.com/Domenick1991/airline-booking/internal/kafka"
	"github.com/Domenick1991/airline-booking/internal/repository"
	"github.com/Domenick1991/airline-booking/internal/service/flights"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	airportRepo := repository.NewAirportRepository(pool)
	passengerRepo := repository.NewPassengerRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	flightService := flights.NewFlightService(flightRepo, airportRepo, redisCache)
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

	if err := bootstrap.Run(ctx, cfg, flightService, ticketService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
