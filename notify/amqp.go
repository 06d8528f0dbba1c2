package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// QueueVerification receives VerificationNotice payloads.
	QueueVerification = "auth.email_verification"
	// QueueReset receives ResetNotice payloads.
	QueueReset = "auth.password_reset"
)

// AMQPNotifier publishes notices as persistent JSON messages to durable
// queues on a RabbitMQ broker. A downstream mailer consumes them.
type AMQPNotifier struct {
	conn *amqp.Connection
	mu   sync.Mutex
	ch   *amqp.Channel
}

// NewAMQPNotifier dials the broker and declares both queues. The queues are
// durable so notices survive broker restarts.
func NewAMQPNotifier(url string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	for _, queue := range []string{QueueVerification, QueueReset} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, err
		}
	}
	return &AMQPNotifier{conn: conn, ch: ch}, nil
}

// Close tears down the channel and connection.
func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ch != nil {
		_ = n.ch.Close()
	}
	return n.conn.Close()
}

func (n *AMQPNotifier) publish(ctx context.Context, queue string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// amqp091 channels are not safe for concurrent publishes.
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func (n *AMQPNotifier) VerificationIssued(ctx context.Context, notice VerificationNotice) error {
	return n.publish(ctx, QueueVerification, notice)
}

func (n *AMQPNotifier) ResetIssued(ctx context.Context, notice ResetNotice) error {
	return n.publish(ctx, QueueReset, notice)
}
