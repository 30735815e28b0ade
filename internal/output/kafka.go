package output

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/chrisdamba/trafficsim/internal/models"
	log "github.com/sirupsen/logrus"
)

// KafkaPublisher decorates a Sink and mirrors every traffic sample onto a
// Kafka topic. All other calls pass straight through to the wrapped sink.
type KafkaPublisher struct {
	Sink
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(next Sink, config *models.Config) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // Must be true for SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	brokerList := strings.Split(config.KafkaBrokerList, ",")

	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	log.WithField("brokers", brokerList).Info("Sarama producer created")
	return &KafkaPublisher{Sink: next, producer: producer, topic: config.KafkaTopic}, nil
}

func (k *KafkaPublisher) AppendTrafficSample(ctx context.Context, sample models.TrafficSample) error {
	if err := k.Sink.AppendTrafficSample(ctx, sample); err != nil {
		return err
	}

	msg, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to serialize traffic sample: %w", err)
	}
	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(sample.VehicleID),
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		return fmt.Errorf("failed to publish traffic sample to %s: %w", k.topic, err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	if err := k.producer.Close(); err != nil {
		log.WithError(err).Warn("error closing Kafka producer")
	}
	return k.Sink.Close()
}
