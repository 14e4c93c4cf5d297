package storage

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/driftlang/drift/internal/direrr"
	"github.com/driftlang/drift/internal/driftlog"
)

const (
	writerQueueCapacity = 1024
	writerBatchSize     = 500
	writerFlushInterval = 100 * time.Millisecond
)

// BatchWriter serializes writes onto a single background goroutine so
// concurrent scanners never contend on SQLite's single writer. Commands
// are queued and flushed either once writerBatchSize accumulate or
// every writerFlushInterval, whichever comes first (mirrors the
// embedding pipeline's buffered-channel-plus-ticker pattern).
type BatchWriter struct {
	db     *sql.DB
	logger *driftlog.Logger

	queue  chan Command
	flush  chan chan error
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// NewBatchWriter starts the writer's background goroutine. Close must
// be called to drain and stop it.
func NewBatchWriter(db *sql.DB, logger *driftlog.Logger) *BatchWriter {
	ctx, cancel := context.WithCancel(context.Background())
	w := &BatchWriter{
		db:     db,
		logger: logger,
		queue:  make(chan Command, writerQueueCapacity),
		flush:  make(chan chan error),
		cancel: cancel,
	}
	w.wg.Add(1)
	go w.run(ctx)
	return w
}

// Enqueue submits cmd for batched application. It blocks only if the
// internal queue is full, applying backpressure to callers instead of
// growing memory without bound.
func (w *BatchWriter) Enqueue(ctx context.Context, cmd Command) error {
	select {
	case w.queue <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush blocks until every command enqueued before this call has been
// committed.
func (w *BatchWriter) Flush(ctx context.Context) error {
	done := make(chan error, 1)
	select {
	case w.flush <- done:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes any pending commands and stops the background
// goroutine. Safe to call more than once.
func (w *BatchWriter) Close() error {
	var ferr error
	w.closeOnce.Do(func() {
		ferr = w.Flush(context.Background())
		w.cancel()
		w.wg.Wait()
	})
	return ferr
}

// QueueDepth reports the number of commands currently buffered in the
// writer's channel, a point-in-time estimate useful only for metrics.
func (w *BatchWriter) QueueDepth() int { return len(w.queue) }

func (w *BatchWriter) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(writerFlushInterval)
	defer ticker.Stop()

	buf := make([]Command, 0, writerBatchSize)

	drainAndCommit := func() error {
		if len(buf) == 0 {
			return nil
		}
		err := w.commit(buf)
		buf = buf[:0]
		return err
	}

	for {
		select {
		case cmd := <-w.queue:
			buf = append(buf, cmd)
			if len(buf) >= writerBatchSize {
				if err := drainAndCommit(); err != nil && w.logger != nil {
					w.logger.Errorf("batch writer commit failed: %v", err)
				}
			}

		case <-ticker.C:
			if err := drainAndCommit(); err != nil && w.logger != nil {
				w.logger.Errorf("batch writer periodic flush failed: %v", err)
			}

		case done := <-w.flush:
			// Drain whatever is already queued before committing, so a
			// Flush issued right after a burst of Enqueue calls waits
			// for all of them.
			for drained := false; !drained; {
				select {
				case cmd := <-w.queue:
					buf = append(buf, cmd)
				default:
					drained = true
				}
			}
			done <- drainAndCommit()

		case <-ctx.Done():
			for drained := false; !drained; {
				select {
				case cmd := <-w.queue:
					buf = append(buf, cmd)
				default:
					drained = true
				}
			}
			if err := drainAndCommit(); err != nil && w.logger != nil {
				w.logger.Errorf("batch writer shutdown flush failed: %v", err)
			}
			return
		}
	}
}

func (w *BatchWriter) commit(cmds []Command) error {
	tx, err := w.db.BeginTx(context.Background(), nil)
	if err != nil {
		return direrr.NewStorageError("begin batch transaction", err)
	}
	for _, cmd := range cmds {
		if err := cmd.apply(context.Background(), tx); err != nil {
			tx.Rollback()
			return direrr.NewStorageError("apply batch command", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return direrr.NewStorageError("commit batch transaction", err)
	}
	return nil
}
