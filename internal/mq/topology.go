package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeExecutions Exchange = "money-transfer.executions"
	ExchangeSchedules  Exchange = "money-transfer.schedules"
)

// RoutingKeyScheduleChanged — ключ событий schedule.
const RoutingKeyScheduleChanged RoutingKey = "changed"

// QueueScheduleEvents — очередь событий schedule.
const QueueScheduleEvents = "schedules.changed"

// TaskQueueName возвращает имя AMQP очереди для task queue движка.
func TaskQueueName(taskQueue string) string {
	return "executions." + taskQueue
}

// SetupTopology объявляет exchanges и очереди для переданных task queues.
// Операция идемпотентна: повторное объявление с теми же параметрами ничего не меняет.
func SetupTopology(ctx context.Context, conn *Connection, taskQueues ...string) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range []Exchange{ExchangeExecutions, ExchangeSchedules} {
			err := ch.ExchangeDeclare(
				string(ex), // name
				"direct",   // type
				true,       // durable
				false,      // auto-deleted
				false,      // internal
				false,      // no-wait
				nil,        // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		bindings := []struct {
			queue      string
			routingKey RoutingKey
			exchange   Exchange
		}{
			{QueueScheduleEvents, RoutingKeyScheduleChanged, ExchangeSchedules},
		}
		for _, tq := range taskQueues {
			bindings = append(bindings, struct {
				queue      string
				routingKey RoutingKey
				exchange   Exchange
			}{TaskQueueName(tq), RoutingKey(tq), ExchangeExecutions})
		}

		for _, b := range bindings {
			if _, err := ch.QueueDeclare(
				b.queue, // name
				true,    // durable
				false,   // delete when unused
				false,   // exclusive
				false,   // no-wait
				nil,     // arguments
			); err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}

			if err := ch.QueueBind(
				b.queue,              // queue name
				string(b.routingKey), // routing key
				string(b.exchange),   // exchange
				false,                // no-wait
				nil,                  // arguments
			); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}

		return nil
	})
}
