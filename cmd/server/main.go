package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/avdeyev/storefront/internal/auth"
	"github.com/avdeyev/storefront/internal/cache"
	"github.com/avdeyev/storefront/internal/cart"
	"github.com/avdeyev/storefront/internal/catalog"
	"github.com/avdeyev/storefront/internal/checkout"
	"github.com/avdeyev/storefront/internal/events"
	storefronthttp "github.com/avdeyev/storefront/internal/http"
	"github.com/avdeyev/storefront/internal/payment"
	"github.com/avdeyev/storefront/internal/repository"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    string
	JWTSecret       string
	AllowedOrigins  string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Set up MongoDB connection
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	cartRepo := repository.NewMongoCartRepository(mongoDB)
	productRepo := repository.NewMongoProductRepository(mongoDB)
	orderRepo := repository.NewMongoOrderRepository(mongoDB)
	userRepo := repository.NewMongoUserRepository(mongoDB)

	if err := cartRepo.CreateIndexes(ctx); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}
	if err := userRepo.CreateIndexes(ctx); err != nil {
		log.Fatalf("Failed to create user indexes: %v", err)
	}
	if err := productRepo.CreateIndexes(ctx); err != nil {
		log.Fatalf("Failed to create product indexes: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	var publisher checkout.EventPublisher
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := events.NewPublisher(strings.Split(cfg.KafkaBrokers, ",")...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Printf("Order events enabled, brokers: %s", cfg.KafkaBrokers)
	}

	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret))
	authService := auth.NewService(userRepo, tokens)
	catalogService := catalog.NewService(productRepo)
	cartService := cart.NewService(cartRepo, cache.NewRedisCache(redisClient), catalogService)
	composer := checkout.NewComposer(orderRepo, catalogService, payment.NewLocalProvider(), publisher)

	router := storefronthttp.NewRouter(storefronthttp.RouterConfig{
		Tokens:         tokens,
		Auth:           storefronthttp.NewAuthHandler(authService),
		Products:       storefronthttp.NewProductHandler(catalogService),
		Cart:           storefronthttp.NewCartHandler(cartService),
		Orders:         storefronthttp.NewOrderHandler(composer, cartService),
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: strings.Split(cfg.AllowedOrigins, ","),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
		log.Printf("mongo disconnect error: %v", err)
	}

	log.Println("server exited")
}
