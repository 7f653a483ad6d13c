package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// Reconciliation path: lost purchase races that need a refund and a
	// support follow-up. Failed deliveries dead-letter for manual replay.
	SettlementExchange = "ex.settlement"
	ReconciliationKey  = "k.reconciliation"
	ReconciliationQ    = "q.reconciliations"
	DLQName            = "q.reconciliations.dlq"
	DLXName            = "ex.dlx"

	// Lead change notifications fan out to whoever keeps a live view
	// (dashboards bind their own queues).
	LeadEventsExchange = "ex.leads"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(user, pass, host, port string) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func setupTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(DLQName, true, false, false, false, nil)
	if err != nil {
		return err
	}

	err = ch.QueueBind(DLQName, ReconciliationKey, DLXName, false, nil)
	if err != nil {
		return err
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": ReconciliationKey,
	}

	err = ch.ExchangeDeclare(SettlementExchange, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(ReconciliationQ, true, false, false, false, args)
	if err != nil {
		return err
	}

	err = ch.QueueBind(ReconciliationQ, ReconciliationKey, SettlementExchange, false, nil)
	if err != nil {
		return err
	}

	return ch.ExchangeDeclare(LeadEventsExchange, "fanout", true, false, false, false, nil)
}
