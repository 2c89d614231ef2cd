package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tessera-hq/meridian/pkg/audit"
	"tessera-hq/meridian/pkg/policy/engine"
	"tessera-hq/meridian/pkg/scope"
)

// Config contains configuration for the decision recorder.
type Config struct {
	// Enabled enables decision recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing records to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// MaxSubjectLength is the maximum length for checked text before
	// truncation. Default: 200
	MaxSubjectLength int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		AsyncBuffer:      1000,
		WriteTimeout:     5 * time.Second,
		MaxSubjectLength: 200,
	}
}

// Recorder records guardrail decisions to storage asynchronously.
// It implements engine.Observer so it can be attached to the enforcer.
type Recorder struct {
	storage    audit.Storage
	config     *Config
	recordChan chan *audit.DecisionRecord
	wg         sync.WaitGroup
	done       chan struct{}
	dropOnce   sync.Once
	logger     *slog.Logger
}

var _ engine.Observer = (*Recorder)(nil)

// NewRecorder creates a new decision recorder with the provided storage
// backend and configuration.
func NewRecorder(storage audit.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *audit.DecisionRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// PolicyResolved records the outcome of a policy resolution.
func (r *Recorder) PolicyResolved(botID string, policy *engine.EffectivePolicy, cached bool, elapsed time.Duration, err error) {
	if !r.config.Enabled {
		return
	}

	record := &audit.DecisionRecord{
		ID:           uuid.New().String(),
		RecordedTime: time.Now(),
		Kind:         audit.KindResolution,
		BotID:        botID,
		Cached:       cached,
		Elapsed:      elapsed,
	}

	switch {
	case err != nil && engine.IsConflict(err):
		record.Decision = "conflict"
		record.Detail = err.Error()
	case err != nil:
		record.Decision = "error"
		record.Detail = err.Error()
	default:
		record.Decision = "resolved"
		record.Fingerprint = policy.Fingerprint
		record.ScopeIDs = policy.ScopeIDs
	}

	r.enqueue(record)
}

// TopicDecided records the outcome of a topic check.
func (r *Recorder) TopicDecided(policy *engine.EffectivePolicy, text string, decision engine.Decision) {
	if !r.config.Enabled {
		return
	}

	r.enqueue(&audit.DecisionRecord{
		ID:           uuid.New().String(),
		RecordedTime: time.Now(),
		Kind:         audit.KindTopicCheck,
		Fingerprint:  policy.Fingerprint,
		ScopeIDs:     policy.ScopeIDs,
		Decision:     string(decision),
		Subject:      truncate(text, r.config.MaxSubjectLength),
	})
}

// ContentDecided records the outcome of a content admission check.
func (r *Recorder) ContentDecided(policy *engine.EffectivePolicy, doc *scope.Document, admitted bool) {
	if !r.config.Enabled {
		return
	}

	decision := "rejected"
	if admitted {
		decision = "admitted"
	}

	subject := doc.ID
	if subject == "" {
		subject = doc.Path
	}

	r.enqueue(&audit.DecisionRecord{
		ID:           uuid.New().String(),
		RecordedTime: time.Now(),
		Kind:         audit.KindContentCheck,
		Fingerprint:  policy.Fingerprint,
		ScopeIDs:     policy.ScopeIDs,
		Decision:     decision,
		Subject:      truncate(subject, r.config.MaxSubjectLength),
	})
}

// enqueue adds a record to the async write channel. When the channel is
// full the record is dropped: auditing never blocks enforcement.
func (r *Recorder) enqueue(record *audit.DecisionRecord) {
	select {
	case r.recordChan <- record:
	case <-r.done:
	default:
		r.dropOnce.Do(func() {
			r.logger.Error("audit channel full, dropping records",
				"channel_capacity", r.config.AsyncBuffer,
			)
		})
	}
}

// Close gracefully shuts down the recorder by draining the async channel
// and waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down audit recorder")

	close(r.done)
	r.wg.Wait()

	r.logger.Info("audit recorder shut down complete")
	return nil
}

// worker is the background goroutine that drains the record channel and
// writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records from channel before exit
			r.logger.Info("draining audit channel before shutdown",
				"pending_count", len(r.recordChan),
			)

			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					r.logger.Info("audit channel drained")
					return
				}
			}
		}
	}
}

// writeRecord writes a single decision record to storage.
func (r *Recorder) writeRecord(record *audit.DecisionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store decision record",
			"record_id", record.ID,
			"kind", record.Kind,
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Debug("decision recorded",
		"record_id", record.ID,
		"kind", record.Kind,
		"decision", record.Decision,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
