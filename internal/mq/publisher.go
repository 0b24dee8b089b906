package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения.
type MessageType string

// Типы сообщений.
const (
	MessageTypeExecutionPending MessageType = "execution.pending"
	MessageTypeScheduleChanged  MessageType = "schedule.changed"
)

// Message — сообщение для публикации.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// ExecutionPendingPayload — payload анонса новой execution.
type ExecutionPendingPayload struct {
	WorkflowID   string    `json:"workflow_id"`
	RunID        uuid.UUID `json:"run_id"`
	WorkflowType string    `json:"workflow_type"`
	TaskQueue    string    `json:"task_queue"`
	ScheduleID   string    `json:"schedule_id,omitempty"`
}

// ScheduleChangedPayload — payload события schedule.
type ScheduleChangedPayload struct {
	ScheduleID string `json:"schedule_id"`
	Change     string `json:"change"` // created, updated, unpaused
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, logger: logger}
}

// NewMessage собирает сообщение с новым ID и текущим временем.
func NewMessage(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Publish публикует сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,              // mandatory
			false,              // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishExecutionPending анонсирует новую execution в её task queue.
func (p *Publisher) PublishExecutionPending(ctx context.Context, payload ExecutionPendingPayload) error {
	msg := NewMessage(MessageTypeExecutionPending, payload)
	return p.Publish(ctx, ExchangeExecutions, RoutingKey(payload.TaskQueue), msg)
}

// PublishScheduleChanged сообщает об изменении schedule.
func (p *Publisher) PublishScheduleChanged(ctx context.Context, scheduleID, change string) error {
	msg := NewMessage(MessageTypeScheduleChanged, ScheduleChangedPayload{ScheduleID: scheduleID, Change: change})
	return p.Publish(ctx, ExchangeSchedules, RoutingKeyScheduleChanged, msg)
}
