package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/httpserver"
	"github.com/Skotchmaster/apparel_shop/internal/repo"
	"github.com/Skotchmaster/apparel_shop/internal/service"
	"github.com/Skotchmaster/apparel_shop/pkg/authclient"
	"github.com/Skotchmaster/apparel_shop/pkg/config"
	pkgdb "github.com/Skotchmaster/apparel_shop/pkg/db"
	"github.com/Skotchmaster/apparel_shop/pkg/kafka"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
	"github.com/Skotchmaster/apparel_shop/pkg/metrics"
	middleware "github.com/Skotchmaster/apparel_shop/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/apparel_shop/pkg/middleware/logging"
	"github.com/Skotchmaster/apparel_shop/pkg/ratelimit"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	shippingFee, err := decimal.NewFromString(cfg.DefaultShippingFee)
	if err != nil {
		log.Fatalf("DEFAULT_SHIPPING_FEE: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics("apparel", reg)

	var publisher kafka.Publisher = kafka.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafka.NewProducer(cfg.KafkaBrokers)
	} else {
		logger.Warn("kafka disabled: KAFKA_BROKERS is empty")
	}

	var limiter *ratelimit.Limiter
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		limiter = ratelimit.New(rdb, "checkout", cfg.CheckoutRateLimit, time.Minute)
	} else {
		logger.Warn("rate limiting disabled: REDIS_ADDR is empty")
	}

	var refresher middleware.Refresher
	if cfg.AuthHTTPURL != "" {
		refresher = authclient.NewClient(cfg.AuthHTTPURL)
	}

	r := repo.New(db)
	e := newEcho(logger, m)
	httpserver.Register(e, &httpserver.Deps{
		CartHandler: &httpserver.CartHTTP{
			Svc: service.NewCartService(r, publisher),
			CheckoutSvc: service.NewCheckoutService(r, publisher,
				service.WithMetrics(m),
				service.WithDefaultShippingFee(shippingFee),
			),
		},
		OrderHandler:    &httpserver.OrderHTTP{Svc: service.NewOrderService(r, publisher, m)},
		DiscountHandler: &httpserver.DiscountHTTP{Svc: service.NewDiscountService(r)},
		JWTSecret:       cfg.JWTAccessSecret,
		AuthClient:      refresher,
		SecureCookies:   cfg.SecureCookies,
		Limiter:         limiter,
		Gatherer:        reg,
		Ready: func(ctx context.Context) error {
			return pkgdb.Ping(ctx, db)
		},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           otelhttp.NewHandler(e, cfg.ServiceName),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	shutdown(logger, db, publisher, rdb)
	logger.Info("stopped")
}

func newEcho(logger *slog.Logger, m *metrics.ServerMetrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(m.Middleware())
	return e
}

func shutdown(logger *slog.Logger, db *gorm.DB, publisher kafka.Publisher, rdb *redis.Client) {
	if err := publisher.Close(); err != nil {
		logger.Warn("kafka close", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warn("redis close", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Warn("db close", "error", err)
	}
}
