package queue

import (
	"errors"
	"sync"

	"eastlens/server/internal/models"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// RecordQueue is an in-memory queue of property record batches, decoupling
// the CSV importer from the database writers.
type RecordQueue struct {
	batches  chan []*models.PropertyRecord
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*models.PropertyRecord) error
}

// NewRecordQueue creates a queue buffering up to bufferSize batches.
func NewRecordQueue(bufferSize int, logger *logrus.Logger) *RecordQueue {
	return &RecordQueue{
		batches: make(chan []*models.PropertyRecord, bufferSize),
		done:    make(chan struct{}),
		maxSize: bufferSize,
		logger:  logger,
	}
}

// Push adds a batch of records to the queue. The send is non-blocking; a
// full queue returns ErrQueueFull and the caller decides whether to retry.
func (q *RecordQueue) Push(records []*models.PropertyRecord) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.batches <- records:
		q.logger.WithField("batch_size", len(records)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe registers a handler invoked for every batch.
func (q *RecordQueue) Subscribe(handler func([]*models.PropertyRecord) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins draining the queue in a background goroutine.
func (q *RecordQueue) Start() {
	go q.drain()
}

func (q *RecordQueue) drain() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.batches:
			q.dispatch(batch)
		}
	}
}

// dispatch hands the batch to every subscribed handler. Handler failures
// are logged but never stop the queue.
func (q *RecordQueue) dispatch(batch []*models.PropertyRecord) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops the queue and rejects further pushes. Safe to call twice.
func (q *RecordQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)
	return nil
}

// Len returns the number of batches waiting in the queue.
func (q *RecordQueue) Len() int {
	return len(q.batches)
}

// IsClosed reports whether the queue has been closed.
func (q *RecordQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
