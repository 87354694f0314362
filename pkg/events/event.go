package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope published for every catalog change.
type Event struct {
	Event         string      `json:"event"`
	Version       string      `json:"version"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
	TraceID       string      `json:"traceId"`
	CorrelationID string      `json:"correlationId"`
}

type Headers struct {
	TraceID       string
	CorrelationID string
	Service       string
}

// Publisher publishes domain events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, exchange string, event *Event, headers Headers) error
	Close() error
}

func NewEvent(eventName, version string, payload interface{}, headers Headers) *Event {
	return &Event{
		Event:         eventName,
		Version:       version,
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
		TraceID:       headers.TraceID,
		CorrelationID: headers.CorrelationID,
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// GetRoutingKey builds the broker routing key, e.g. "catalog.category.created.v1".
func (e *Event) GetRoutingKey() string {
	return e.Event + "." + e.Version
}

func GenerateTraceID() string {
	return uuid.New().String()
}

func GenerateCorrelationID() string {
	return uuid.New().String()
}
