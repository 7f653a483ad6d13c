package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RefundGateway is the slice of the payment gateway the worker needs.
type RefundGateway interface {
	Refund(ctx context.Context, paymentIntentID string) (string, error)
}

// AlertSender notifies support about a reconciliation that needs follow-up.
type AlertSender interface {
	SendReconciliationAlert(p ReconciliationPayload, refundID string) error
}

// ReconciliationWorker consumes lost-race settlements, refunds the charge
// and alerts support. A failed refund is nacked without requeue and lands in
// the DLQ for manual replay.
type ReconciliationWorker struct {
	Channel *amqp.Channel
	Gateway RefundGateway
	Alerts  AlertSender
}

func NewReconciliationWorker(ch *amqp.Channel, gateway RefundGateway, alerts AlertSender) *ReconciliationWorker {
	return &ReconciliationWorker{
		Channel: ch,
		Gateway: gateway,
		Alerts:  alerts,
	}
}

func (w *ReconciliationWorker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("❌ failed to register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload ReconciliationPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [RECONCILE] malformed message: %s", err)
				d.Nack(false, false)
				continue
			}

			log.Printf("🔧 [RECONCILE] refunding buyer %s for lead %s (txn=%s)",
				payload.BuyerID, payload.LeadID, payload.GatewayTransactionID)

			if err := w.process(context.Background(), payload); err != nil {
				log.Printf("❌ [RECONCILE] failed: %s", err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] reconciliation worker waiting on queue '%s'", queueName)
	<-forever
}

func (w *ReconciliationWorker) process(ctx context.Context, payload ReconciliationPayload) error {
	refundID, err := w.Gateway.Refund(ctx, payload.GatewayTransactionID)
	if err != nil {
		return err
	}

	log.Printf("✅ [RECONCILE] refund %s issued for intent %s", refundID, payload.IntentID)

	if w.Alerts != nil {
		if err := w.Alerts.SendReconciliationAlert(payload, refundID); err != nil {
			// Refund already happened; the alert is best-effort.
			log.Printf("⚠️ [RECONCILE] refund issued but alert mail failed: %v", err)
		}
	}
	return nil
}
