// Package telemetry обеспечивает наблюдаемость клиента переводов.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики вызовов движка и операций
//
// Все команды используют единый формат логирования;
// метрики экспортируются на /metrics, если задан --metrics-addr.
package telemetry
