// Package dedupe tracks ingested location sample ids so device retries are
// recorded once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 50_000

// Deduper records seen sample ids.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a rejected sample can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type slot struct {
	id  string
	seq uint64
}

// windowDeduper remembers the most recent maxSize ids. Once full, the oldest
// id is forgotten first. maxSize <= 0 means unbounded.
type windowDeduper struct {
	mu      sync.Mutex
	seen    map[string]uint64 // id -> seq of its live slot
	ring    []slot
	next    int
	seq     uint64
	maxSize int
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &windowDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]uint64)
	if d.maxSize > 0 {
		d.ring = make([]slot, 0, d.maxSize)
	}
	return d
}

func (d *windowDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seq++
	d.seen[id] = d.seq
	if d.maxSize <= 0 {
		return false
	}
	s := slot{id: id, seq: d.seq}
	if len(d.ring) < d.maxSize {
		d.ring = append(d.ring, s)
		return false
	}
	// Evict the oldest slot unless its id was already unrecorded or re-added.
	old := d.ring[d.next]
	if cur, ok := d.seen[old.id]; ok && cur == old.seq {
		delete(d.seen, old.id)
	}
	d.ring[d.next] = s
	d.next = (d.next + 1) % d.maxSize
	return false
}

func (d *windowDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
}

func (d *windowDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
