package logger

import (
	"context"
	"sync"
	"testing"
	"time"
)

type capturingPublisher struct {
	mu      sync.Mutex
	msgType string
	batches [][]DigestEntry
}

func (p *capturingPublisher) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgType = msgType
	if batch, ok := payload.([]DigestEntry); ok {
		p.batches = append(p.batches, batch)
	}
	return nil
}

func (p *capturingPublisher) batchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batches)
}

func TestDigestDedupesByCallSite(t *testing.T) {
	pub := &capturingPublisher{}
	d := NewErrorDigest(DigestConfig{
		FlushInterval: time.Hour, // flush only on Close
		MsgType:       "error_digest",
		Publisher:     pub,
	})

	for i := 0; i < 3; i++ {
		d.Add("error", "redis down", map[string]interface{}{"attempt": i}, "pkg/queue/redis.go:42")
	}
	d.Add("error", "ch insert failed", nil, "internal/repository/clickhouse_log_store.go:30")
	d.Close()

	if pub.batchCount() != 1 {
		t.Fatalf("published %d batches, want 1", pub.batchCount())
	}
	if pub.msgType != "error_digest" {
		t.Fatalf("msg type = %q, want error_digest", pub.msgType)
	}
	batch := pub.batches[0]
	if len(batch) != 2 {
		t.Fatalf("batch has %d entries, want 2", len(batch))
	}
	counts := map[string]int{}
	for _, e := range batch {
		counts[e.Message] = e.Count
	}
	if counts["redis down"] != 3 {
		t.Fatalf("count = %d, want 3 (%+v)", counts["redis down"], batch)
	}
	if counts["ch insert failed"] != 1 {
		t.Fatalf("count = %d, want 1", counts["ch insert failed"])
	}
}

func TestDigestFlushesWhenFull(t *testing.T) {
	pub := &capturingPublisher{}
	d := NewErrorDigest(DigestConfig{
		FlushInterval: time.Hour,
		MaxEntries:    2,
		Publisher:     pub,
	})
	defer d.Close()

	d.Add("error", "a", nil, "x.go:1")
	d.Add("error", "b", nil, "y.go:2")

	if pub.batchCount() != 1 {
		t.Fatalf("published %d batches, want immediate flush", pub.batchCount())
	}
	if len(pub.batches[0]) != 2 {
		t.Fatalf("batch has %d entries, want 2", len(pub.batches[0]))
	}
}

func TestDigestEmptyCloseDoesNotPublish(t *testing.T) {
	pub := &capturingPublisher{}
	d := NewErrorDigest(DigestConfig{FlushInterval: time.Hour, Publisher: pub})
	d.Close()

	if pub.batchCount() != 0 {
		t.Fatalf("published %d batches, want 0", pub.batchCount())
	}
}
