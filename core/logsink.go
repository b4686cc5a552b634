package core

import (
	"sync"

	"pkt.systems/repostamp/schema"
)

// SubscriptionID identifies a LogSink subscriber.
type SubscriptionID uint64

// LogSink is a fixed-capacity ring of log entries with synchronous observers.
// When full, the oldest entry is evicted before the newest is stored.
type LogSink struct {
	mu      sync.Mutex
	entries []schema.LogEntry
	head    int // index of the oldest entry
	size    int
	nextID  SubscriptionID
	subs    []subscriber
}

type subscriber struct {
	id SubscriptionID
	fn func(category, message string)
}

// NewLogSink returns a sink holding at most capacity entries.
// A capacity <= 0 selects schema.DefaultLogCapacity.
func NewLogSink(capacity int) *LogSink {
	if capacity <= 0 {
		capacity = schema.DefaultLogCapacity
	}
	return &LogSink{entries: make([]schema.LogEntry, capacity)}
}

// Record appends an entry and notifies subscribers in subscription order.
// All callbacks have returned by the time Record returns.
func (l *LogSink) Record(category, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	capacity := len(l.entries)
	if l.size < capacity {
		l.entries[(l.head+l.size)%capacity] = schema.LogEntry{Category: category, Message: message}
		l.size++
	} else {
		l.entries[l.head] = schema.LogEntry{Category: category, Message: message}
		l.head = (l.head + 1) % capacity
	}
	subs := append([]subscriber(nil), l.subs...)
	l.mu.Unlock()

	for _, sub := range subs {
		sub.fn(category, message)
	}
}

// Read returns up to limit entries, most recent first.
func (l *LogSink) Read(limit int) []schema.LogEntry {
	if l == nil || limit <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := min(l.size, limit)
	out := make([]schema.LogEntry, 0, n)
	capacity := len(l.entries)
	for i := 0; i < n; i++ {
		idx := (l.head + l.size - 1 - i) % capacity
		out = append(out, l.entries[idx])
	}
	return out
}

// Len reports the number of stored entries.
func (l *LogSink) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Cap reports the sink capacity.
func (l *LogSink) Cap() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Subscribe registers fn to be called on every later Record.
func (l *LogSink) Subscribe(fn func(category, message string)) SubscriptionID {
	if l == nil || fn == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.subs = append(l.subs, subscriber{id: l.nextID, fn: fn})
	return l.nextID
}

// Unsubscribe removes a subscriber. It reports whether the id was registered.
func (l *LogSink) Unsubscribe(id SubscriptionID) bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, sub := range l.subs {
		if sub.id == id {
			l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
			return true
		}
	}
	return false
}
