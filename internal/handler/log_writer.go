package handler

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"modulehost/internal/model"
	"modulehost/internal/repository"
)

// LogWriter writes request-log rows asynchronously so the inference
// path never blocks on the database. Entries are batched; when the
// buffer is full the entry is dropped with a warning rather than
// stalling a request.
type LogWriter struct {
	repo          *repository.RequestLogRepository
	entryChan     chan model.RequestLog
	batchSize     int
	flushInterval time.Duration
	wg            sync.WaitGroup
	stopChan      chan struct{}
	stopped       bool
	mu            sync.Mutex
}

func NewLogWriter(repo *repository.RequestLogRepository, bufferSize, batchSize int, flushInterval time.Duration) *LogWriter {
	if bufferSize < 1 {
		bufferSize = 1024
	}
	if batchSize < 1 {
		batchSize = 32
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	w := &LogWriter{
		repo:          repo,
		entryChan:     make(chan model.RequestLog, bufferSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		stopChan:      make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Write enqueues one entry. Non-blocking; returns false if the writer
// is stopped or the queue is full.
func (w *LogWriter) Write(entry model.RequestLog) bool {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return false
	}
	w.mu.Unlock()

	select {
	case w.entryChan <- entry:
		return true
	default:
		log.Warn("request log writer: queue full, dropping entry")
		return false
	}
}

// Stop flushes whatever is queued and shuts the writer down.
func (w *LogWriter) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()
}

func (w *LogWriter) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	batch := make([]model.RequestLog, 0, w.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := w.repo.InsertBatch(batch); err != nil {
			log.Errorf("request log writer: batch insert failed: %v", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-w.entryChan:
			batch = append(batch, entry)
			if len(batch) >= w.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.stopChan:
			// Drain anything still queued, then flush once.
			for {
				select {
				case entry := <-w.entryChan:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}
