package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/kiwi/explorer/internal/util"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"

	"github.com/cenkalti/backoff/v5"
	"github.com/rabbitmq/amqp091-go"
)

const (
	Exchange        = "pubsub"
	GraphReadyQueue = "graph_ready_queue"
	GraphReadyTopic = "graph.ready"
)

// Enabled reports whether RABBITMQ_HOST is set.
func Enabled() bool {
	return util.GetEnv("RABBITMQ_HOST") != ""
}

// Init dials RabbitMQ from the RABBITMQ_* environment, retrying while the
// broker comes up.
func Init(ctx context.Context) (*amqp091.Connection, error) {
	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		util.GetEnv("RABBITMQ_USER"),
		util.GetEnv("RABBITMQ_PASSWORD"),
		util.GetEnv("RABBITMQ_HOST"),
		util.GetEnvString("RABBITMQ_PORT", "5672"),
	)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second

	conn, err := backoff.Retry(ctx, func() (*amqp091.Connection, error) {
		return amqp091.Dial(connURL)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(5),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("[Queue] Failed to connect to RabbitMQ", "host", util.GetEnv("RABBITMQ_HOST"), "retry_in", next, "err", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	return conn, nil
}

// SetupQueues declares the topic exchange, the graph ready queue with its
// dead letter queue, and binds the queue to GraphReadyTopic.
func SetupQueues(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("exchange declare failed: %w", err)
	}

	dlqName := GraphReadyQueue + "_dlq"
	_, err = ch.QueueDeclare(
		dlqName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare %s failed: %w", dlqName, err)
	}

	_, err = ch.QueueDeclare(
		GraphReadyQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		amqp091.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": dlqName,
		},
	)
	if err != nil {
		return fmt.Errorf("queue declare %s failed: %w", GraphReadyQueue, err)
	}

	if err := ch.QueueBind(GraphReadyQueue, GraphReadyTopic, Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind failed: %w", err)
	}

	return nil
}

// PublishTopic publishes a persistent message on the exchange.
func PublishTopic(ctx context.Context, ch *amqp091.Channel, topic string, data []byte) error {
	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	return ch.PublishWithContext(
		ctx,
		Exchange,
		topic,
		false,
		false,
		publishing,
	)
}
