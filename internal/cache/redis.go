package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/airline-booking/config"
	"github.com/Domenick1991/airline-booking/internal/domain"
)

type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.searchTTL).Err()
}

func (c *RedisCache) GetLocations(ctx context.Context, term string) ([]domain.Location, error) {
	data, err := c.client.Get(ctx, locationsKey(term)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var locations []domain.Location
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (c *RedisCache) SetLocations(ctx context.Context, term string, locations []domain.Location) error {
	payload, err := json.Marshal(locations)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, locationsKey(term), payload, c.searchTTL).Err()
}

// AcquirePayLock takes a short exclusive lock on a ticket while a payment
// attempt is in flight, narrowing the window between concurrent pay
// requests before the database row lock takes over.
func (c *RedisCache) AcquirePayLock(ctx context.Context, ticketNumber string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, payLockKey(ticketNumber), "locked", ttl).Result()
}

func (c *RedisCache) ReleasePayLock(ctx context.Context, ticketNumber string) error {
	return c.client.Del(ctx, payLockKey(ticketNumber)).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func locationsKey(term string) string {
	return fmt.Sprintf("cache:locations:%s", term)
}

func payLockKey(ticketNumber string) string {
	return fmt.Sprintf("lock:ticket:%s:pay", ticketNumber)
}
