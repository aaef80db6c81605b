package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imnamix/be-payplex/internal/domain"
	"github.com/imnamix/be-payplex/pkg/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// cachedProductService is a read-through cache over ProductService.
// Redis calls run behind a circuit breaker: a flapping cache degrades
// to plain repository reads instead of failing product lookups.
type cachedProductService struct {
	next        ProductService
	redisClient *redis.Client
	cb          *gobreaker.CircuitBreaker
	cacheTTL    time.Duration
	logger      *zap.Logger
}

func NewCachedProductService(next ProductService, redisClient *redis.Client, logger *zap.Logger) ProductService {
	settings := gobreaker.Settings{
		Name:        "ProductCache",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(
				"Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &cachedProductService{
		next:        next,
		redisClient: redisClient,
		cb:          gobreaker.NewCircuitBreaker(settings),
		cacheTTL:    time.Minute * 10,
		logger:      logger,
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *cachedProductService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	val, err := utils.ExecuteWithBreaker(s.cb, func() (string, error) {
		return s.redisClient.Get(ctx, cacheKey(id)).Result()
	})
	if err == nil {
		var product domain.Product
		if err := json.Unmarshal([]byte(val), &product); err == nil {
			return &product, nil
		}
	}

	product, err := s.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		_, _ = utils.ExecuteWithBreaker(s.cb, func() (string, error) {
			return s.redisClient.Set(ctx, cacheKey(id), data, s.cacheTTL).Result()
		})
	}

	return product, nil
}

func (s *cachedProductService) Create(ctx context.Context, product *domain.Product) (int64, error) {
	return s.next.Create(ctx, product)
}

func (s *cachedProductService) List(ctx context.Context, limit, offset int64, search string) ([]domain.Product, int64, error) {
	return s.next.List(ctx, limit, offset, search)
}

func (s *cachedProductService) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error {
	if err := s.next.Update(ctx, id, input); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *cachedProductService) Delete(ctx context.Context, id int64) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *cachedProductService) Restock(ctx context.Context, id int64, quantity int32) error {
	if err := s.next.Restock(ctx, id, quantity); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *cachedProductService) invalidate(ctx context.Context, id int64) {
	_, _ = utils.ExecuteWithBreaker(s.cb, func() (int64, error) {
		return s.redisClient.Del(ctx, cacheKey(id)).Result()
	})
}
