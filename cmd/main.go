package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/imnamix/be-payplex/internal/repository"
	"github.com/imnamix/be-payplex/internal/service"
	"github.com/imnamix/be-payplex/internal/transport/http"
	"github.com/imnamix/be-payplex/internal/transport/http/handler"
	kafkaTransport "github.com/imnamix/be-payplex/internal/transport/kafka"
	"github.com/imnamix/be-payplex/pkg/config"
	"github.com/imnamix/be-payplex/pkg/db"
	pkgKafka "github.com/imnamix/be-payplex/pkg/kafka"
	"github.com/imnamix/be-payplex/pkg/mylogger"
	outboxRepository "github.com/imnamix/be-payplex/pkg/outbox/repository"
	"github.com/imnamix/be-payplex/pkg/outbox/worker"
	"github.com/imnamix/be-payplex/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "fulfillment-service")
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("failed to create pool: %v", err)
	}

	loggerCfg := config.LoggerConfig{
		Level: cfg.Log.Level,
		Env:   cfg.Env,
	}
	logger, err := config.NewLogger(loggerCfg)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Printf("failed to sync logger: %v", err)
		}
	}()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})

	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	seqRepo := repository.NewSequenceRepository(logger)
	outboxRepo := outboxRepository.NewOutboxRepository(pool, logger)

	taxRate := decimal.NewFromFloat(cfg.Checkout.TaxRate)

	productService := service.NewCachedProductService(
		service.NewProductService(pool, productRepo, logger),
		redisClient,
		logger,
	)
	cartService := service.NewCartService(cartRepo, productRepo, taxRate, logger)
	checkoutService := service.NewCheckoutService(
		pool,
		cartRepo,
		productRepo,
		orderRepo,
		userRepo,
		seqRepo,
		outboxRepo,
		taxRate,
		cfg.Checkout.OrderPrefix,
		logger,
	)
	orderService := service.NewOrderService(pool, orderRepo, productRepo, userRepo, outboxRepo, logger)
	userService := service.NewUserService(userRepo, logger)

	kafkaProducer, err := pkgKafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("error creating kafka producer: %v", err)
	}

	outboxProcessor := worker.NewOutboxProcessor(pool, outboxRepo, kafkaProducer, logger)
	go outboxProcessor.Start(ctx)

	consumer := kafkaTransport.NewConsumer(orderService, logger)
	go consumer.Start(ctx, cfg.Kafka.Brokers)

	app := fiber.New(fiber.Config{
		ReadTimeout: cfg.HTTP.Timeout,
	})

	app.Use(otelfiber.Middleware())

	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 5 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Try again later.",
			})
		},
	}))

	handlers := &http.Handlers{
		Product: handler.NewProductHandler(productService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Order:   handler.NewOrderHandler(checkoutService, orderService, logger),
		User:    handler.NewUserHandler(userService, logger),
	}

	http.RegisterRoutes(app, handlers, cfg.Auth.AccessSecret)

	go func() {
		log.Println("HTTP service listening on: " + cfg.HTTP.Port)
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("Error listening on HTTP port %v: %v\n", cfg.HTTP.Port, err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, exit := context.WithTimeout(context.Background(), time.Second*5)
	defer exit()

	mylogger.Info(
		shutdownCtx,
		logger,
		"Shutting down fulfillment server",
	)

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP app: %v\n", err)
	} else {
		log.Println("HTTP app stopped gracefully")
	}

	if err := tp.Shutdown(shutdownCtx); err != nil {
		mylogger.Warn(
			shutdownCtx,
			logger,
			"Failed to shut down telemetry",
			zap.Error(err),
		)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing redis client: %v\n", err)
	}

	pool.Close()
}
