// Package events records the pipeline's stage-by-stage progress as an
// append-only event stream, keyed by run id, so a finished run can always
// be replayed for audit.
package events

import (
	"time"
)

// Event is one recorded pipeline occurrence.
type Event interface {
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	Version() int
}

// Store is an append-only event log partitioned into streams.
type Store interface {
	Append(streamID string, event Event) error
	Read(streamID string) ([]Event, error)
	ReadAll() ([]Event, error)
}

// BaseEvent is the concrete event carried by the store.
type BaseEvent struct {
	EventType    string
	Stream       string
	EventData    interface{}
	EventTime    time.Time
	EventVersion int
}

func (e BaseEvent) Type() string { return e.EventType }

func (e BaseEvent) StreamID() string { return e.Stream }

func (e BaseEvent) Data() interface{} { return e.EventData }

func (e BaseEvent) Timestamp() time.Time { return e.EventTime }

func (e BaseEvent) Version() int { return e.EventVersion }

// NewEvent creates an event with the current timestamp.
func NewEvent(eventType, streamID string, data interface{}) Event {
	return BaseEvent{
		EventType:    eventType,
		Stream:       streamID,
		EventData:    data,
		EventTime:    time.Now(),
		EventVersion: 1,
	}
}
