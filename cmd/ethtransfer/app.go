package main

import (
	"context"
	"os"

	"github.com/Aidin1998/ethtransfer/internal/config"
	"github.com/Aidin1998/ethtransfer/internal/events"
	"github.com/Aidin1998/ethtransfer/internal/ledger"
	"github.com/Aidin1998/ethtransfer/internal/wallet"
	"github.com/Aidin1998/ethtransfer/pkg/logger"
	"go.uber.org/zap"
)

// app holds everything a command needs, built once per invocation
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	client    *ledger.Client
	publisher events.Publisher
	wallet    *wallet.WalletService
	shutdown  []func(context.Context) error
}

type globalFlags struct {
	configFile string
	endpoint   string
	logLevel   string
}

func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	var paths []string
	if flags.configFile != "" {
		paths = append(paths, flags.configFile)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}
	if flags.endpoint != "" {
		cfg.Ledger.Endpoint = flags.endpoint
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// stdout carries command output
	zapLogger := logger.NewLoggerTo(cfg.Logging.Level, os.Stderr)

	a := &app{cfg: cfg, logger: zapLogger}

	if cfg.Tracing.Enabled {
		shutdown, err := setupTracing()
		if err != nil {
			return nil, err
		}
		a.shutdown = append(a.shutdown, shutdown)
	}

	client, err := ledger.Dial(ctx, cfg.Ledger.Endpoint, zapLogger)
	if err != nil {
		a.runShutdown()
		return nil, err
	}
	a.client = client

	a.publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		a.publisher = events.NewKafkaPublisher(events.KafkaConfig{
			Brokers:      cfg.Events.Brokers,
			Topic:        cfg.Events.Topic,
			WriteTimeout: cfg.Events.WriteTimeout,
		}, zapLogger)
	}

	a.wallet = wallet.NewWalletService(client, a.publisher, zapLogger)
	return a, nil
}

// callContext bounds a single ledger call by the configured request timeout
func (a *app) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.Ledger.RequestTimeout)
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("Failed to close event publisher", zap.Error(err))
	}
	a.client.Close()
	a.runShutdown()
}

func (a *app) runShutdown() {
	for _, fn := range a.shutdown {
		if err := fn(context.Background()); err != nil {
			a.logger.Warn("Shutdown hook failed", zap.Error(err))
		}
	}
	a.shutdown = nil
	_ = a.logger.Sync()
}
