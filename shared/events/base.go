package events

import (
	"encoding/json"
	"time"
)

// Base de todos los eventos de integración
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento
}

// NewIntegrationEvent serializa 'data' dentro del sobre común.
func NewIntegrationEvent(eventType string, at time.Time, data interface{}) (IntegrationEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return IntegrationEvent{}, err
	}
	return IntegrationEvent{Type: eventType, Timestamp: at, Data: raw}, nil
}

// Typed lo implementan los eventos que conocen su tipo de integración.
type Typed interface {
	EventType() string
}

// Wrap mete los eventos tipados en el sobre común; el resto se publica tal cual.
func Wrap(event interface{}, at time.Time) (interface{}, error) {
	typed, ok := event.(Typed)
	if !ok {
		return event, nil
	}
	return NewIntegrationEvent(typed.EventType(), at, event)
}
