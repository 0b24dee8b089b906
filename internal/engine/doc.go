// Package engine описывает границу RPC с движком durable executions.
//
// Включает:
//   - client.go       — интерфейс Client и типы запросов/ответов
//   - errors.go       — ошибки движка (NotFound, AlreadyExists, Connectivity, WorkflowFailed)
//   - instrumented.go — обёртка Client с метриками и логированием
//
// Драйверы:
//   - httpengine — JSON/HTTP API движка поверх TLS
//   - pgengine   — Postgres-хранилище движка + анонсы в RabbitMQ
//
// Клиент ничего не хранит: каждый вызов самостоятельный и унарный,
// порядок эффектов на одной execution обеспечивает сам движок.
package engine
