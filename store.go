package ludora

import "sync"

// ============================================================================
// Event Store
// ============================================================================

// DefaultStoreCapacity bounds the retained event window when no capacity is
// given to NewEventStore.
const DefaultStoreCapacity = 256

// EventRecord is a stored event tagged with its monotonic sequence number.
type EventRecord struct {
	Seq   int64 `json:"seq"`
	Event Event `json:"event"`
}

// EventStore retains a bounded window of received application events with
// monotonic sequence numbers, so callers can replay what arrived while they
// were not looking (a UI rebuilding after navigation, a poll loop catching
// up after degraded mode). Oldest records are evicted first.
//
// Safe for concurrent use.
type EventStore struct {
	mu       sync.RWMutex
	capacity int
	nextSeq  int64
	records  []EventRecord
}

// NewEventStore creates a store retaining at most capacity events.
// capacity <= 0 selects DefaultStoreCapacity.
func NewEventStore(capacity int) *EventStore {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	return &EventStore{
		capacity: capacity,
		nextSeq:  1,
	}
}

// Append records an event and returns its sequence number.
func (s *EventStore) Append(ev Event) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.nextSeq
	s.nextSeq++
	s.records = append(s.records, EventRecord{Seq: seq, Event: ev})
	if len(s.records) > s.capacity {
		// Copy forward instead of re-slicing so evicted records are freed.
		n := copy(s.records, s.records[len(s.records)-s.capacity:])
		s.records = s.records[:n]
	}
	return seq
}

// Since returns up to limit records with a sequence number greater than
// cursor, oldest first, plus the cursor to pass on the next call.
// limit <= 0 means no limit.
func (s *EventStore) Since(cursor int64, limit int) ([]EventRecord, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	for start < len(s.records) && s.records[start].Seq <= cursor {
		start++
	}
	out := s.records[start:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	next := cursor
	if len(out) > 0 {
		next = out[len(out)-1].Seq
	}
	return append([]EventRecord(nil), out...), next
}

// Recent returns the newest records of the given event type, newest first.
// An empty eventType matches everything. limit <= 0 means no limit.
func (s *EventStore) Recent(eventType string, limit int) []EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []EventRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		if eventType != "" && s.records[i].Event.EventType != eventType {
			continue
		}
		out = append(out, s.records[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Cursor returns the sequence number of the newest stored record, or 0 when
// the store is empty.
func (s *EventStore) Cursor() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return 0
	}
	return s.records[len(s.records)-1].Seq
}

// Len returns the number of retained records.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
