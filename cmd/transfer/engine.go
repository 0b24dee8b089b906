package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/steveandroulakis/money-transfer-demo/internal/config"
	"github.com/steveandroulakis/money-transfer-demo/internal/engine"
	"github.com/steveandroulakis/money-transfer-demo/internal/engine/httpengine"
	"github.com/steveandroulakis/money-transfer-demo/internal/engine/pgengine"
	"github.com/steveandroulakis/money-transfer-demo/internal/mq"
)

// buildEngine собирает драйвер движка по cfg.Driver.
// Возвращаемая функция закрывает все соединения драйвера.
func buildEngine(ctx context.Context, cfg config.Config, logger *slog.Logger) (engine.Client, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return buildPostgresEngine(ctx, cfg, logger)
	default:
		return buildHTTPEngine(cfg, logger)
	}
}

func buildHTTPEngine(cfg config.Config, logger *slog.Logger) (engine.Client, func(), error) {
	tlsCfg, err := cfg.TLSConfig()
	if err != nil {
		return nil, nil, engine.NewConnectivityError("load tls", err)
	}

	client := httpengine.New(httpengine.Config{
		BaseURL:   cfg.BaseURL(),
		Namespace: cfg.Namespace,
		TLS:       tlsCfg,
		Logger:    logger,
	})
	return client, func() { _ = client.Close() }, nil
}

func buildPostgresEngine(ctx context.Context, cfg config.Config, logger *slog.Logger) (engine.Client, func(), error) {
	pool, err := pgengine.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, engine.NewConnectivityError("db connect", err)
	}
	if err := pgengine.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Debug("db connected")

	pgCfg := pgengine.Config{
		Pool:      pool,
		Namespace: cfg.Namespace,
		Logger:    logger,
	}

	var conn *mq.Connection
	if cfg.AMQPURL != "" {
		amqpTLS, err := cfg.AMQPTLSConfig()
		if err != nil {
			pool.Close()
			return nil, nil, engine.NewConnectivityError("load amqp tls", err)
		}

		conn, err = mq.NewConnection(mq.ConnectionConfig{
			URL:    cfg.AMQPURL,
			TLS:    amqpTLS,
			Logger: logger,
		})
		if err != nil {
			pool.Close()
			return nil, nil, engine.NewConnectivityError("amqp connect", err)
		}
		if err := mq.SetupTopology(ctx, conn, cfg.TaskQueue); err != nil {
			_ = conn.Close()
			pool.Close()
			return nil, nil, fmt.Errorf("setup amqp topology: %w", err)
		}
		pgCfg.Announcer = mq.NewPublisher(conn, logger)
	}

	client := pgengine.New(pgCfg)
	return client, func() {
		_ = client.Close()
		if conn != nil {
			_ = conn.Close()
		}
	}, nil
}
