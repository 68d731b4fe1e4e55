package ludora

import (
	"fmt"
	"testing"
	"time"
)

func storeEvent(eventType string) Event {
	return Event{
		EventType:  eventType,
		ReceivedAt: time.Now(),
		ID:         generateEventID(),
	}
}

func TestEventStoreAppend(t *testing.T) {
	s := NewEventStore(8)

	if seq := s.Append(storeEvent("a")); seq != 1 {
		t.Fatalf("first seq = %d, want 1", seq)
	}
	if seq := s.Append(storeEvent("b")); seq != 2 {
		t.Fatalf("second seq = %d, want 2", seq)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if s.Cursor() != 2 {
		t.Fatalf("cursor = %d, want 2", s.Cursor())
	}
}

func TestEventStoreEviction(t *testing.T) {
	s := NewEventStore(4)
	for i := 0; i < 6; i++ {
		s.Append(storeEvent(fmt.Sprintf("ev-%d", i)))
	}

	if s.Len() != 4 {
		t.Fatalf("len = %d, want capacity 4", s.Len())
	}

	records, _ := s.Since(0, 0)
	if records[0].Seq != 3 {
		t.Fatalf("oldest retained seq = %d, want 3", records[0].Seq)
	}
	if records[len(records)-1].Seq != 6 {
		t.Fatalf("newest retained seq = %d, want 6", records[len(records)-1].Seq)
	}

	// Sequence numbers keep growing across evictions.
	if seq := s.Append(storeEvent("ev-6")); seq != 7 {
		t.Fatalf("next seq = %d, want 7", seq)
	}
}

func TestEventStoreSinceCursor(t *testing.T) {
	s := NewEventStore(16)
	for i := 0; i < 5; i++ {
		s.Append(storeEvent("x"))
	}

	first, cursor := s.Since(0, 3)
	if len(first) != 3 || cursor != 3 {
		t.Fatalf("first page: %d records cursor %d, want 3 records cursor 3", len(first), cursor)
	}

	rest, cursor := s.Since(cursor, 0)
	if len(rest) != 2 || cursor != 5 {
		t.Fatalf("second page: %d records cursor %d, want 2 records cursor 5", len(rest), cursor)
	}

	empty, cursor := s.Since(cursor, 0)
	if len(empty) != 0 || cursor != 5 {
		t.Fatalf("drained page: %d records cursor %d, want 0 records cursor 5", len(empty), cursor)
	}
}

func TestEventStoreRecent(t *testing.T) {
	s := NewEventStore(16)
	s.Append(storeEvent("score"))
	s.Append(storeEvent("chat"))
	s.Append(storeEvent("score"))
	s.Append(storeEvent("score"))

	scores := s.Recent("score", 2)
	if len(scores) != 2 {
		t.Fatalf("got %d records, want 2", len(scores))
	}
	if scores[0].Seq != 4 || scores[1].Seq != 3 {
		t.Fatalf("records not newest-first: %d, %d", scores[0].Seq, scores[1].Seq)
	}

	all := s.Recent("", 0)
	if len(all) != 4 {
		t.Fatalf("got %d unfiltered records, want 4", len(all))
	}
}

func TestEventStoreEmpty(t *testing.T) {
	s := NewEventStore(0)
	if s.Cursor() != 0 {
		t.Fatalf("empty cursor = %d, want 0", s.Cursor())
	}
	records, cursor := s.Since(0, 10)
	if len(records) != 0 || cursor != 0 {
		t.Fatalf("empty Since returned %d records cursor %d", len(records), cursor)
	}
}
