package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/kiwi/explorer/internal/metrics"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/storage"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/util"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"

	"github.com/go-playground/validator"
	"github.com/rabbitmq/amqp091-go"
)

// ErrInvalidMessage marks a message that can never be processed.
var ErrInvalidMessage = errors.New("invalid graph ready message")

// GraphReadyMsg announces a graph document that finished extraction and was
// stored in the bucket.
type GraphReadyMsg struct {
	Key    string `json:"key" validate:"required"`
	Name   string `json:"name"`
	Format string `json:"format" validate:"required,oneof=json csv"`
	// Metadata is set when a csv folder also holds metadata.json.
	Metadata bool `json:"metadata"`
}

var validate = validator.New()

const metadataFile = "metadata.json"

// ParseGraphReadyMsg decodes and validates a message body. The key must lie
// below storage.GraphPrefix.
func ParseGraphReadyMsg(body []byte) (GraphReadyMsg, error) {
	var msg GraphReadyMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	msg.Key = strings.TrimSuffix(strings.TrimSpace(msg.Key), "/")
	if err := validate.Struct(msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if !strings.HasPrefix(msg.Key, storage.GraphPrefix) {
		return msg, fmt.Errorf("%w: key %q outside %s", ErrInvalidMessage, msg.Key, storage.GraphPrefix)
	}
	if msg.Name == "" {
		msg.Name = strings.TrimSuffix(strings.TrimPrefix(msg.Key, storage.GraphPrefix), ".json")
	}
	return msg, nil
}

// HandleDelivery adds the announced document to the catalog and acks. Bad
// messages are nacked without requeue so they end up in the dead letter
// queue.
func HandleDelivery(catalog *Catalog, d amqp091.Delivery) error {
	msg, err := ParseGraphReadyMsg(d.Body)
	if err != nil {
		logger.Error("[Queue] Dropping message", "queue", GraphReadyQueue, "err", err)
		metrics.CatalogMessages.WithLabelValues("rejected").Inc()
		if nackErr := d.Nack(false, false); nackErr != nil {
			return fmt.Errorf("failed to nack message: %w", nackErr)
		}
		return err
	}

	catalog.Add(CatalogEntry{Key: msg.Key, Name: msg.Name, Format: msg.Format, HasMetadata: msg.Metadata})
	logger.Info("[Queue] Graph document announced", "key", msg.Key, "format", msg.Format)
	metrics.CatalogMessages.WithLabelValues("accepted").Inc()

	if err := d.Ack(false); err != nil {
		return fmt.Errorf("failed to ack message: %w", err)
	}
	return nil
}

// Consume feeds the catalog from GraphReadyQueue until ctx is done or the
// channel closes.
func Consume(ctx context.Context, ch *amqp091.Channel, catalog *Catalog) error {
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		GraphReadyQueue,
		GraphReadyQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	logger.Info("[Queue] Listening for graph documents", "queue", GraphReadyQueue)
	for {
		select {
		case <-ctx.Done():
			logger.Info("[Queue] Stopping consumer", "queue", GraphReadyQueue)
			return nil
		case d, ok := <-msgs:
			if !ok {
				logger.Info("[Queue] Message channel closed", "queue", GraphReadyQueue)
				return nil
			}
			if err := HandleDelivery(catalog, d); err != nil && !errors.Is(err, ErrInvalidMessage) {
				logger.Error("[Queue] Failed to handle message", "err", err)
			}
		}
	}
}

// AnnounceGraph publishes a GraphReadyMsg for a stored document.
func AnnounceGraph(ctx context.Context, ch *amqp091.Channel, msg GraphReadyMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return util.RetryErrWithContext(ctx, 3, func(ctx context.Context) error {
		return PublishTopic(ctx, ch, GraphReadyTopic, body)
	})
}

// SyncFromKeys adds a catalog entry for every graph document found among
// the bucket keys and returns how many distinct documents it saw. Entries
// already in the catalog keep their announced name.
func SyncFromKeys(catalog *Catalog, keys []string) int {
	found := make(map[string]CatalogEntry)
	var order []string
	for _, key := range keys {
		id, format, ok := storage.DocumentID(key)
		if !ok {
			continue
		}
		docKey := storage.DocumentKey(id, format)
		entry, seen := found[docKey]
		if !seen {
			entry = CatalogEntry{Key: docKey, Name: id, Format: format}
			order = append(order, docKey)
		}
		if format == "csv" && strings.HasSuffix(key, "/"+metadataFile) {
			entry.HasMetadata = true
		}
		found[docKey] = entry
	}

	for _, docKey := range order {
		if _, exists := catalog.Get(docKey); !exists {
			catalog.Add(found[docKey])
		}
	}
	return len(order)
}
