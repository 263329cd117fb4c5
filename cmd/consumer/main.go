// Package main starts the queue consumer binary.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quarkmq/consumer/internal/broker"
	"github.com/quarkmq/consumer/internal/config"
	"github.com/quarkmq/consumer/internal/consume"
	"github.com/quarkmq/consumer/internal/log"
	"github.com/quarkmq/consumer/internal/message"
	"github.com/quarkmq/consumer/internal/offset"
	"github.com/quarkmq/consumer/internal/pipeline"
	"github.com/quarkmq/consumer/internal/stats"
	"github.com/quarkmq/consumer/internal/tracking"
)

func run() int {
	logger := log.New()
	logger.Info("Starting queue consumer")

	cfg, err := loadAndLogConfig(logger)
	if err != nil {
		return 1
	}

	offsetStore, mqttPool, engine, pl, err := initializeServices(cfg, logger)
	if err != nil {
		return 1
	}
	defer closeServices(offsetStore, mqttPool, engine, pl, logger)

	return runMainLoop(pl, cfg, logger)
}

func loadAndLogConfig(logger *log.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	logger.Info("Configuration loaded successfully")
	logger.Info("Consumer: group=%s model=%s threads=%d-%d batch=%d",
		cfg.Consumer.Group, cfg.Consumer.Model,
		cfg.Consumer.ConsumeThreadMin, cfg.Consumer.ConsumeThreadMax, cfg.Consumer.ConsumeBatchMaxSize)
	logger.Info("Redis: %s, Key prefix: %s", cfg.Redis.Address, cfg.Redis.KeyPrefix)
	logger.Info("MQTT: %s, Ingest: %s, Send-back: %s", cfg.MQTT.Broker, cfg.MQTT.IngestTopic, cfg.MQTT.SendBackTopic)
	logger.Info("Pipeline: Buffer=%d", cfg.Pipeline.BufferCapacity)
	return cfg, nil
}

func initializeServices(cfg *config.Config, logger *log.Logger) (offset.Store, *broker.Pool, *consume.Service, *pipeline.Pipeline, error) {
	offsetStore, err := newOffsetStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create offset store: %v", err)
	}

	mqttPool, err := broker.NewPool(&cfg.MQTT, cfg.MQTT.PoolSize, logger)
	if err != nil {
		logger.Fatal("Failed to create MQTT pool: %v", err)
	}
	logger.Info("Connected to MQTT broker with %d connections", cfg.MQTT.PoolSize)

	collector, err := stats.NewCollector()
	if err != nil {
		logger.Error("Failed to create stats collector, continuing without metrics: %v", err)
		collector = nil
	}

	engine := consume.NewService(&cfg.Consumer, defaultListener(logger), mqttPool, offsetStore, collector, logger)
	pl := pipeline.New(mqttPool, engine, tracking.NewRegistry(), offsetStore, &cfg.Pipeline, logger)
	return offsetStore, mqttPool, engine, pl, nil
}

// newOffsetStore picks the offset backend for the delivery model:
// clustering progress is shared through Redis, broadcasting progress is
// per-instance and stays in memory.
func newOffsetStore(cfg *config.Config, logger *log.Logger) (offset.Store, error) {
	if cfg.Consumer.Model == config.ModelBroadcasting {
		logger.Info("Broadcasting model, using in-memory offset store")
		return offset.NewMemoryStore(), nil
	}

	store, err := offset.NewRedisStore(&cfg.Redis, cfg.Consumer.Group, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to Redis")
	return store, nil
}

// defaultListener acknowledges every message after logging it. Real
// deployments replace this with their business logic.
func defaultListener(logger *log.Logger) consume.Listener {
	return consume.ListenerFunc(func(msgs []*message.Message, _ *consume.Context) consume.Outcome {
		for _, msg := range msgs {
			logger.Info("consumed %s", msg)
		}
		return consume.ConsumeSuccess
	})
}

func closeServices(offsetStore offset.Store, mqttPool *broker.Pool, engine *consume.Service, pl *pipeline.Pipeline, logger *log.Logger) {
	engine.Shutdown()
	if err := pl.Close(); err != nil {
		logger.Error("Error closing pipeline: %v", err)
	}
	if err := mqttPool.Close(); err != nil {
		logger.Error("Error closing MQTT pool: %v", err)
	}
	if closer, ok := offsetStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Error closing offset store: %v", err)
		}
	}
}

func runMainLoop(pl *pipeline.Pipeline, cfg *config.Config, logger *log.Logger) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := pl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()

	logger.Info("Consumer pipeline started")

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, initiating graceful shutdown", sig)
		cancel()
		return handleGracefulShutdown(cfg, logger)

	case err := <-errChan:
		logger.Error("Pipeline error: %v", err)
		cancel()
		return 1
	}
}

func handleGracefulShutdown(cfg *config.Config, logger *log.Logger) int {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Pipeline.ShutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		time.Sleep(100 * time.Millisecond) // Give goroutines time to exit
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Graceful shutdown completed")
		logger.Info("Consumer stopped")
		return 0
	case <-shutdownCtx.Done():
		logger.Error("Shutdown timeout exceeded")
		return 1
	}
}

func main() {
	// Keep main minimal to ensure defers in run() execute correctly.
	os.Exit(run())
}
