package events

import (
	"sync"
)

// InMemoryStore keeps the event log in process memory.
type InMemoryStore struct {
	streams   map[string][]Event
	allEvents []Event
	mutex     sync.RWMutex
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty event store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		streams: make(map[string][]Event),
	}
}

// Append records an event at the tail of a stream, assigning the next
// per-stream version.
func (s *InMemoryStore) Append(streamID string, event Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	versioned := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}

	s.streams[streamID] = append(s.streams[streamID], versioned)
	s.allEvents = append(s.allEvents, versioned)
	return nil
}

// Read returns all events of one stream in append order.
func (s *InMemoryStore) Read(streamID string) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := s.streams[streamID]
	out := make([]Event, len(events))
	copy(out, events)
	return out, nil
}

// ReadAll returns every recorded event in append order.
func (s *InMemoryStore) ReadAll() ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]Event, len(s.allEvents))
	copy(out, s.allEvents)
	return out, nil
}
