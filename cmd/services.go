package cmd

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-order-payments/app/events"
	"github.com/vibast-solutions/ms-go-order-payments/app/factory"
	"github.com/vibast-solutions/ms-go-order-payments/app/gateway"
	"github.com/vibast-solutions/ms-go-order-payments/app/metrics"
	"github.com/vibast-solutions/ms-go-order-payments/app/repository"
	"github.com/vibast-solutions/ms-go-order-payments/app/service"
	"github.com/vibast-solutions/ms-go-order-payments/app/tracing"
	"github.com/vibast-solutions/ms-go-order-payments/config"
	"go.opentelemetry.io/otel"
)

const (
	metricsNamespace = "order_payments"
	tracerName       = "github.com/vibast-solutions/ms-go-order-payments"
)

type services struct {
	payments *service.PaymentService
	orders   *service.OrderService
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}
	return cfg
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Log.Level, err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return nil
}

func mustOpenDatabase(cfg *config.Config) *sql.DB {
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}
	return db
}

func mustCreateServices() (*config.Config, *services, func()) {
	cfg := mustLoadConfig()

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var (
		orderRepo   service.OrderStore
		paymentRepo service.PaymentStore
		eventRepo   service.OrderEventStore
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logrus.Warn("Using in-memory store; data is lost on restart")
		orderRepo = repository.NewMemoryOrderRepository()
		paymentRepo = repository.NewMemoryPaymentRepository()
		eventRepo = repository.NewMemoryOrderEventRepository()
	default:
		db := mustOpenDatabase(cfg)
		cleanups = append(cleanups, func() {
			if err := db.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close database")
			}
		})
		orderRepo = repository.NewOrderRepository(db)
		paymentRepo = repository.NewPaymentRepository(db)
		eventRepo = repository.NewOrderEventRepository(db)
	}

	registry := gateway.NewRegistry(gateway.NewStripeGateway(gateway.StripeConfig{
		SupportedCurrencies: cfg.Gateway.SupportedCurrencies,
		DeclineAboveAmount:  cfg.Gateway.DeclineAboveAmount,
	}))
	gw, err := registry.Get(cfg.Gateway.Name)
	if err != nil {
		cleanup()
		logrus.WithError(err).WithField("gateway", cfg.Gateway.Name).Fatal("Failed to resolve payment gateway")
	}
	gw = gateway.WithChargeTimeout(gw, cfg.Gateway.ChargeTimeout)

	opts := []service.Option{}
	if cfg.RabbitMQ.URL != "" {
		publisher, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			cleanup()
			logrus.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		cleanups = append(cleanups, func() {
			if err := publisher.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close event publisher")
			}
		})
		opts = append(opts, service.WithPublisher(publisher))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, service.WithMetrics(metrics.NewPrometheusRecorder(metricsNamespace, prometheus.DefaultRegisterer)))
	}
	if cfg.Tracing.Enabled {
		provider := tracing.NewProvider(cfg.App.ServiceName, factory.NewModuleLogger("tracing"))
		otel.SetTracerProvider(provider)
		cleanups = append(cleanups, func() {
			if err := provider.Shutdown(context.Background()); err != nil {
				logrus.WithError(err).Warn("Failed to shut down tracer provider")
			}
		})
		opts = append(opts, service.WithTracer(provider.Tracer(tracerName)))
	}

	idGen := gateway.NewUUIDGenerator()
	return cfg, &services{
		payments: service.NewPaymentService(orderRepo, paymentRepo, eventRepo, gw, idGen, cfg.Orders, opts...),
		orders:   service.NewOrderService(orderRepo, paymentRepo, eventRepo, idGen),
	}, cleanup
}
