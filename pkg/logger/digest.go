package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// Publisher ships flushed digests to a queue or broker.
type Publisher interface {
	PublishMessage(ctx context.Context, msgType string, payload interface{}) error
}

// DigestConfig controls error-log aggregation.
type DigestConfig struct {
	FlushInterval time.Duration // how often buffered entries are flushed
	MaxEntries    int           // flush early when this many distinct entries exist
	MsgType       string        // queue message type for flushed digests
	Publisher     Publisher
}

// DigestEntry is one deduplicated error line with occurrence counters.
// Repeated errors from hot loops (stream reconnects, flush retries) collapse
// into a single entry keyed by level, message, and call site.
type DigestEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Caller    string                 `json:"caller"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// ErrorDigest buffers and deduplicates error logs, flushing them to the
// configured publisher on an interval or when the buffer fills up.
type ErrorDigest struct {
	cfg     DigestConfig
	mu      sync.Mutex
	entries map[string]*DigestEntry
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewErrorDigest(cfg DigestConfig) *ErrorDigest {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 30 * time.Second
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 100
	}
	if cfg.MsgType == "" {
		cfg.MsgType = "error_digest"
	}

	d := &ErrorDigest{
		cfg:     cfg,
		entries: make(map[string]*DigestEntry),
		stopCh:  make(chan struct{}),
	}
	d.wg.Add(1)
	go d.flushLoop()
	return d
}

// Add records one occurrence. The latest fields win; counts accumulate.
func (d *ErrorDigest) Add(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now().UTC()
	key := level + "|" + caller + "|" + message

	d.mu.Lock()
	if e, ok := d.entries[key]; ok {
		e.Count++
		e.Fields = fields
		e.LastSeen = now
	} else {
		d.entries[key] = &DigestEntry{
			Level:     level,
			Message:   message,
			Caller:    caller,
			Fields:    fields,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	full := len(d.entries) >= d.cfg.MaxEntries
	var batch []DigestEntry
	if full {
		batch = d.drainLocked()
	}
	d.mu.Unlock()

	if full {
		d.publish(batch)
	}
}

// drainLocked snapshots and resets the buffer. Caller holds d.mu.
func (d *ErrorDigest) drainLocked() []DigestEntry {
	if len(d.entries) == 0 {
		return nil
	}
	batch := make([]DigestEntry, 0, len(d.entries))
	for _, e := range d.entries {
		batch = append(batch, *e)
	}
	d.entries = make(map[string]*DigestEntry)
	return batch
}

func (d *ErrorDigest) flushLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.flush()
		case <-d.stopCh:
			d.flush()
			return
		}
	}
}

func (d *ErrorDigest) flush() {
	d.mu.Lock()
	batch := d.drainLocked()
	d.mu.Unlock()
	d.publish(batch)
}

func (d *ErrorDigest) publish(batch []DigestEntry) {
	if len(batch) == 0 || d.cfg.Publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.cfg.Publisher.PublishMessage(ctx, d.cfg.MsgType, batch); err != nil {
		// Cannot log through the Logger here; that path feeds this digest.
		fmt.Fprintf(os.Stderr, "error digest publish failed: %v\n", err)
	}
}

// Close flushes any remaining entries and stops the background loop.
func (d *ErrorDigest) Close() {
	close(d.stopCh)
	d.wg.Wait()
}
