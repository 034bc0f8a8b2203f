package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	retry "github.com/avast/retry-go/v4"
	kafka "github.com/segmentio/kafka-go"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

type EventType string

const (
	RunStarted      EventType = "run-started"
	RunApplied      EventType = "run-applied"
	BackendAdmitted EventType = "backend-admitted"
	BackendEvicted  EventType = "backend-evicted"
)

type Event struct {
	Type        EventType          `json:"type"`
	RunID       string             `json:"run_id,omitempty"`
	Environment models.Environment `json:"environment"`
	Backend     string             `json:"backend,omitempty"`
	Time        time.Time          `json:"time"`
}

// Publisher streams provisioning and admission transitions; consumers
// are ops tooling, not this subsystem.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(addr, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(addr),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	err = retry.Do(
		func() error {
			return p.writer.WriteMessages(ctx, kafka.Message{
				Key:   []byte(event.Environment),
				Value: payload,
			})
		},
		retry.Attempts(3),
		retry.Context(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
