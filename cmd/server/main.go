package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"orders-service/internal/config"
	httpctrl "orders-service/internal/controllers/http"
	"orders-service/internal/infra"
	mmysql "orders-service/internal/infra/mysql"
	"orders-service/internal/infra/rabbitmq"
	"orders-service/internal/metrics"
	mysqlrepo "orders-service/internal/repository/mysql"
	"orders-service/internal/services"
	"orders-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("config: load")
	}
	setupLogger(cfg)

	decimal.MarshalJSONWithoutQuotes = true
	tp, err := telemetry.NewTracerProvider(httpctrl.ServiceName, cfg.App.TraceExporter, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing")
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	db, err := mmysql.NewMySQL(cfg.MySQL)
	if err != nil {
		log.Fatal().Err(err).Msg("db: connect")
	}
	repo := mysqlrepo.NewOrderRepository(db)

	users, err := infra.NewUserClient(cfg.Users, cfg.UpstreamTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("users client")
	}
	catalog, err := infra.NewCatalogClient(cfg.Books, cfg.UpstreamTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("books client")
	}
	cart := infra.NewCartClient(cfg.Cart, cfg.CartTimeout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			DB:           0,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer redisClient.Close()
	} else {
		log.Warn().Msg("REDIS_ADDR not set, caching disabled")
	}

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init publisher")
		}
		defer p.Close()
		publisher = p
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, order events disabled")
	}

	inventory := services.NewInventoryValidator(catalog, cfg.CatalogConcurrency, m)
	if redisClient != nil {
		inventory.SetRedisClient(redisClient, cfg.BookCacheTTL)
	}

	s := services.NewOrderService(repo, users, inventory, cart, publisher, m)
	s.SetCartTimeout(cfg.CartTimeout)

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpctrl.NewRouter(httpctrl.NewHandler(s, redisClient), m, reg)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("starting orders service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server run")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	s.Wait()
	if err := tp.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown")
	}
	log.Info().Msg("stopped")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Development() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	log.Logger = log.With().Str("service", httpctrl.ServiceName).Logger()
	zerolog.DefaultContextLogger = &log.Logger
}
