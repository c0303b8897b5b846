// Package kafka streams registration lifecycle events. Publishing is
// best effort: a broker failure never fails the request that caused
// the event.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/KamalSai3/KS-Events/internal/logger"
	"github.com/KamalSai3/KS-Events/internal/models"
)

type Producer struct {
	CreatedWriter   *kafka.Writer
	CancelledWriter *kafka.Writer
	Logger          *logger.Logger
	// MockMode logs the message instead of writing to a broker.
	MockMode bool
}

func NewProducer(brokers []string, createdTopic, cancelledTopic string, log *logger.Logger) *Producer {
	return &Producer{
		CreatedWriter: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   createdTopic,
		}),
		CancelledWriter: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   cancelledTopic,
		}),
		Logger: log,
	}
}

func (p *Producer) publish(writer *kafka.Writer, reg models.Registration) error {
	msgBytes, err := json.Marshal(reg)
	if err != nil {
		return err
	}

	if p.MockMode || writer == nil {
		if p.Logger != nil {
			p.Logger.Info("KAFKA", "mock publish: "+string(msgBytes))
		}
		return nil
	}

	err = writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(reg.ID),
		Value: msgBytes,
	})
	if err != nil && p.Logger != nil {
		p.Logger.Error("KAFKA", "publish failed: "+err.Error())
	}
	return err
}

// PublishRegistrationCreated streams a new registration.
func (p *Producer) PublishRegistrationCreated(reg models.Registration) error {
	return p.publish(p.CreatedWriter, reg)
}

// PublishRegistrationCancelled streams a cancellation.
func (p *Producer) PublishRegistrationCancelled(reg models.Registration) error {
	return p.publish(p.CancelledWriter, reg)
}

func (p *Producer) Close() {
	if p.CreatedWriter != nil {
		_ = p.CreatedWriter.Close()
	}
	if p.CancelledWriter != nil {
		_ = p.CancelledWriter.Close()
	}
}
