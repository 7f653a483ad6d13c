package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ReconciliationPayload describes a paid-but-unfulfilled purchase: the buyer
// was charged but a different confirmation won the lead. Consumed by the
// reconciliation worker for refund and alerting.
type ReconciliationPayload struct {
	IntentID             string    `json:"intent_id"`
	LeadID               string    `json:"lead_id"`
	BuyerID              string    `json:"buyer_id"`
	GatewayTransactionID string    `json:"gateway_transaction_id"`
	AmountCents          int64     `json:"amount_cents"`
	Reason               string    `json:"reason"`
	OccurredAt           time.Time `json:"occurred_at"`
}

// Kinds of lead change notifications.
const (
	LeadCreated         = "created"
	LeadPurchased       = "purchased"
	LeadPipelineChanged = "pipeline_changed"
)

type LeadChangedPayload struct {
	LeadID     string    `json:"lead_id"`
	Change     string    `json:"change"` // created, purchased, pipeline_changed
	Status     string    `json:"status"`
	LeadStatus string    `json:"lead_status,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

type QueueProducerInterface interface {
	PublishReconciliation(ctx context.Context, payload ReconciliationPayload) error
	PublishLeadChanged(ctx context.Context, payload LeadChangedPayload) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishReconciliation(ctx context.Context, payload ReconciliationPayload) error {
	return p.publish(ctx, SettlementExchange, ReconciliationKey, payload)
}

func (p *RabbitMQProducer) PublishLeadChanged(ctx context.Context, payload LeadChangedPayload) error {
	return p.publish(ctx, LeadEventsExchange, "", payload)
}

func (p *RabbitMQProducer) publish(ctx context.Context, exchange, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %w", err)
	}
	return nil
}
