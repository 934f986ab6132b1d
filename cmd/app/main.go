package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sweetsavoury/battletally/internal/battle"
	"github.com/sweetsavoury/battletally/internal/classifier"
	"github.com/sweetsavoury/battletally/internal/config"
	"github.com/sweetsavoury/battletally/internal/httpapi"
	"github.com/sweetsavoury/battletally/internal/ledger"
	"github.com/sweetsavoury/battletally/internal/observability"
	"github.com/sweetsavoury/battletally/internal/pkg/breaker"
	"github.com/sweetsavoury/battletally/internal/relay"
	"github.com/sweetsavoury/battletally/internal/shopify"
	"github.com/sweetsavoury/battletally/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := store.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("redis connect failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	defer kv.Close()

	metrics := observability.NewInmem(1000)

	api := shopify.NewClient(cfg.Shopify, shopify.StaticTokens(cfg.Shopify.Tokens), logger)
	cls := classifier.New(kv, api, cfg.Cache.Size, cfg.Cache.TTL, logger, metrics)

	orders := ledger.NewOrderStore(kv)
	totals := ledger.NewTotals(kv)

	service := battle.NewService(orders, totals, cls, logger, metrics)
	router := battle.NewRouter(service, logger)

	if cfg.Kafka.Enabled() {
		reader := kafkago.NewReader(kafkago.ReaderConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.Group,
			Topic:   cfg.Kafka.Topic,
		})
		defer reader.Close()

		handler := relay.NewHandler(router, breaker.New(cfg.Breaker), cfg.Retry, logger)
		consumer := relay.NewConsumer(handler, reader, cfg.Kafka.Workers, logger)
		go consumer.Start(ctx)
	}

	server := httpapi.New(router, totals, cfg.Shopify.APISecret, logger, metrics)

	logger.Info("battletally listening", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
