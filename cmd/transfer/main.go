// transfer — клиент переводов между счетами поверх durable execution движка.
//
// Использование:
//
//	transfer [--json] [--metrics-addr ADDR] <command> <subcommand> [flags]
//
// Команды:
//
//	transfer  Запуск и просмотр переводов
//	schedule  Периодические переводы
//
// Подключение к движку настраивается переменными окружения
// (TEMPORAL_ADDRESS, TEMPORAL_NAMESPACE, ENGINE_DRIVER, ...) или YAML-файлом
// из TRANSFER_CONFIG.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/steveandroulakis/money-transfer-demo/internal/cli"
	"github.com/steveandroulakis/money-transfer-demo/internal/config"
	"github.com/steveandroulakis/money-transfer-demo/internal/engine"
	"github.com/steveandroulakis/money-transfer-demo/internal/telemetry"
	"github.com/steveandroulakis/money-transfer-demo/internal/transfer"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var jsonOutput bool
	var metricsAddr string

	var (
		service  *transfer.Service
		closeAll func()
	)

	rootCmd := &cobra.Command{
		Use:           "transfer",
		Short:         "Money transfer client for the durable execution engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := telemetry.SetupLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			metrics := telemetry.NewMetrics(reg)
			stopMetrics := serveMetrics(metricsAddr, reg, logger)

			client, closeEngine, err := buildEngine(cmd.Context(), cfg, logger)
			if err != nil {
				stopMetrics()
				return err
			}

			service = transfer.New(transfer.Config{
				Engine:    engine.Instrument(client, metrics, logger),
				Namespace: cfg.Namespace,
				TaskQueue: cfg.TaskQueue,
				Logger:    logger,
				Metrics:   metrics,
			})
			closeAll = func() {
				closeEngine()
				stopMetrics()
			}

			logger.Debug("engine client ready",
				"driver", cfg.Driver,
				"namespace", cfg.Namespace,
				"task_queue", cfg.TaskQueue,
			)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeAll != nil {
				closeAll()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")

	clientFn := func() cli.Transfers { return service }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewTransferCmd(clientFn, outputFn),
		cli.NewScheduleCmd(clientFn, outputFn),
	)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && closeAll != nil {
		// PersistentPostRun не вызывается, если RunE вернул ошибку.
		closeAll()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// serveMetrics поднимает /metrics, если addr задан. Возвращает функцию остановки.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
