package drain

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ablay/godrain/internal/metrics"
)

const indexUpdateTimeout = 30 * time.Second

// blobStore is the durable key/value contract the pipeline needs. Bytes
// are opaque here; compression happens inside the adapter.
type blobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Service drives the ingest pipeline: normalize, bucket per day, merge
// with stored data, then update the per-user index.
type Service struct {
	store blobStore
	log   *zap.Logger
	now   func() time.Time

	indexUpdates sync.WaitGroup
}

// NewService constructs the drain service.
func NewService(store blobStore, log *zap.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Ingest merges one batch of records into the stored day buckets for the
// given service/user pair. All touched days are merged concurrently; if any
// day fails the whole batch fails and nothing is reported to the index.
// On success the per-user index is updated asynchronously, after Ingest
// has already returned.
func (s *Service) Ingest(ctx context.Context, service, user string, records []Record) error {
	buckets := make(map[string][]Entry)
	adding := make(map[string]bool)
	var syncErr json.RawMessage

	for _, rec := range records {
		switch rec.Kind {
		case KindError, KindStop:
			// Last terminal report wins; it is data, not a pipeline failure.
			syncErr = rec.Raw
		case KindData:
			entry := normalizeEntry(rec, service, user)
			buckets[entry.Day] = append(buckets[entry.Day], entry)
			adding[entry.ID] = true
		}
	}

	metrics.RecordEntriesIngested(len(adding))

	counts := make(map[string]int, len(buckets))
	var countsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for day, entries := range buckets {
		day, entries := day, entries
		g.Go(func() error {
			merged, err := s.mergeDay(gctx, service, user, day, entries, adding)
			if err != nil {
				return fmt.Errorf("merge day %s: %w", day, err)
			}
			countsMu.Lock()
			counts[day] = merged
			countsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordMergeFailure()
		return err
	}

	s.indexUpdates.Add(1)
	go func() {
		defer s.indexUpdates.Done()
		ctx, cancel := context.WithTimeout(context.Background(), indexUpdateTimeout)
		defer cancel()
		if err := s.updateIndex(ctx, service, user, counts, syncErr); err != nil {
			metrics.RecordIndexUpdateFailure()
			s.log.Error("index update failed",
				zap.String("service", service),
				zap.String("user", user),
				zap.Error(err))
		}
	}()

	return nil
}

// mergeDay reads the stored bucket for one day, folds in entries that are
// not being replaced by this batch and still pass day revalidation, and
// writes the result back. Returns the merged entry count.
func (s *Service) mergeDay(ctx context.Context, service, user, day string, fresh []Entry, adding map[string]bool) (int, error) {
	key := dayKey(service, user, day)

	buf, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}

	var existing []Entry
	if len(buf) > 0 {
		if err := json.Unmarshal(buf, &existing); err != nil {
			// Malformed stored data must never abort an ingest.
			s.log.Warn("discarding undecodable day bucket",
				zap.String("key", key),
				zap.Error(err))
			existing = nil
		}
	}

	merged := fresh
	for _, entry := range existing {
		if adding[entry.ID] {
			continue
		}
		if !dayOK(entry) {
			s.log.Debug("dropping misfiled entry",
				zap.String("key", key),
				zap.String("id", entry.ID))
			continue
		}
		merged = append(merged, entry)
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return 0, fmt.Errorf("encode day bucket %s: %w", key, err)
	}
	if err := s.store.Put(ctx, key, out); err != nil {
		return 0, err
	}
	return len(merged), nil
}

// updateIndex folds this ingest's per-day counts into the stored user
// index, stamps the sync time, and records or clears the last reported
// source error. Days not touched by this ingest keep their counts.
func (s *Service) updateIndex(ctx context.Context, service, user string, counts map[string]int, syncErr json.RawMessage) error {
	key := indexKey(service, user)

	buf, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}

	var index UserIndex
	if len(buf) > 0 {
		if err := json.Unmarshal(buf, &index); err != nil {
			s.log.Warn("discarding undecodable index",
				zap.String("key", key),
				zap.Error(err))
			index = UserIndex{}
		}
	}
	if index.Days == nil {
		index.Days = make(map[string]int)
	}

	index.Synced = s.now().UTC()
	index.Error = syncErr
	for day, count := range counts {
		index.Days[day] = count
	}

	out, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encode index %s: %w", key, err)
	}
	if err := s.store.Put(ctx, key, out); err != nil {
		return err
	}

	s.log.Info("index updated",
		zap.String("key", key),
		zap.Int("days", len(counts)),
		zap.Bool("source_error", syncErr != nil))
	return nil
}

// Index returns the stored user index document. A missing, unreadable, or
// undecodable index reads as an empty document, matching what callers have
// always been served.
func (s *Service) Index(ctx context.Context, service, user string) map[string]any {
	key := indexKey(service, user)

	buf, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("index read failed", zap.String("key", key), zap.Error(err))
		return map[string]any{}
	}

	var doc map[string]any
	if err := json.Unmarshal(buf, &doc); err != nil || doc == nil {
		return map[string]any{}
	}
	return doc
}

// Wait blocks until all in-flight asynchronous index updates settle. Used
// during shutdown so fire-and-forget writes are not cut off mid-put.
func (s *Service) Wait() {
	s.indexUpdates.Wait()
}
