package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

type Producer interface {
	PublishEventCreated(ctx context.Context, event EventCreatedEvent) error
	PublishTicketMinted(ctx context.Context, event TicketMintedEvent) error
	PublishPurchaseFailed(ctx context.Context, event PurchaseFailedEvent) error
	PublishTicketListed(ctx context.Context, event TicketListedEvent) error
	PublishListingCancelled(ctx context.Context, event ListingCancelledEvent) error
	PublishTicketResold(ctx context.Context, event TicketResoldEvent) error
	Close() error
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	logger   logger.Logger
}

func NewProducer(brokers []string, config *sarama.Config, logger logger.Logger) (Producer, error) {
	if config == nil {
		config = sarama.NewConfig()
		config.Producer.RequiredAcks = sarama.WaitForLocal
		config.Producer.Retry.Max = 3
		config.Producer.Return.Successes = true
		config.Producer.Return.Errors = true
		config.Producer.Compression = sarama.CompressionSnappy
	}

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	logger.Info("Kafka producer initialized", "brokers", brokers)

	return &kafkaProducer{
		producer: producer,
		logger:   logger,
	}, nil
}

func (p *kafkaProducer) PublishEventCreated(ctx context.Context, event EventCreatedEvent) error {
	event.Timestamp = time.Now()
	return p.publishEvent(TopicEventCreated, event.EventID, event)
}

func (p *kafkaProducer) PublishTicketMinted(ctx context.Context, event TicketMintedEvent) error {
	event.Timestamp = time.Now()
	return p.publishEvent(TopicTicketMinted, event.EventID, event)
}

func (p *kafkaProducer) PublishPurchaseFailed(ctx context.Context, event PurchaseFailedEvent) error {
	event.Timestamp = time.Now()
	return p.publishEvent(TopicPurchaseFailed, event.EventID, event)
}

func (p *kafkaProducer) PublishTicketListed(ctx context.Context, event TicketListedEvent) error {
	event.Timestamp = time.Now()
	return p.publishEvent(TopicTicketListed, event.EventID, event)
}

func (p *kafkaProducer) PublishListingCancelled(ctx context.Context, event ListingCancelledEvent) error {
	event.Timestamp = time.Now()
	return p.publishEvent(TopicListingCancelled, event.EventID, event)
}

func (p *kafkaProducer) PublishTicketResold(ctx context.Context, event TicketResoldEvent) error {
	event.Timestamp = time.Now()
	return p.publishEvent(TopicTicketResold, event.EventID, event)
}

func (p *kafkaProducer) publishEvent(topic string, key string, event interface{}) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key), // Partition by event_id for ordering
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.logger.Error("Failed to send kafka message",
			"topic", topic,
			"error", err,
		)
		return fmt.Errorf("failed to send kafka message: %w", err)
	}

	p.logger.Debug("Kafka message sent",
		"topic", topic,
		"partition", partition,
		"offset", offset,
		"key", key,
	)

	return nil
}

func (p *kafkaProducer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	p.logger.Info("Kafka producer closed")
	return nil
}
