// Package progress carries pipeline stage updates out of the orchestrator.
// The UI layer subscribes to a broadcaster channel; deployments can also
// point a webhook publisher at an external consumer.
package progress

import (
	"context"
	"sync"
)

// Stage names published by the analysis orchestrator.
const (
	StageExtraction = "extraction"
	StageValidation = "validation"
	StageEnrichment = "enrichment"
	StageScoring    = "scoring"
	StageComplete   = "complete"
	StageFailed     = "failed"
)

type Event struct {
	AnalysisID string `json:"analysis_id"`
	Stage      string `json:"stage"`
	Percent    int    `json:"percent"`
	Detail     string `json:"detail,omitempty"`
}

// Publisher is implemented by anything interested in pipeline progress.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher drops all events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

// Broadcaster fans events out to subscriber channels. Slow subscribers lose
// events rather than stalling the pipeline.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe returns a buffered event channel and a cancel func that closes it.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	ch := make(chan Event, 16)
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(existing)
		}
	}
}

func (b *Broadcaster) Publish(_ context.Context, event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Subscriber is not draining; drop rather than block the pipeline.
		}
	}
}

// Close closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Multi publishes to several publishers in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, event)
		}
	}
}
