// Package mq публикует анонсы executions в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange и очередей task queue
//   - publisher.go  — публикация сообщений
//
// Типы сообщений:
//   - execution.pending — execution создана и ждёт воркера
//   - schedule.changed  — schedule создан, обновлён или снят с паузы
//
// Exchanges:
//   - money-transfer.executions — routing key = имя task queue
//   - money-transfer.schedules  — routing key = "changed"
package mq
