package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chessmatch/internal/matching"
)

var (
	ErrQueueFull     = errors.New("search queue is full")
	ErrQueueShutdown = errors.New("search queue is shutting down")
)

// SearchFunc runs one similarity search
type SearchFunc func(ctx context.Context, fen string, req matching.Request) (*matching.Report, error)

// SearchTask contains a similarity search request and response channel
type SearchTask struct {
	Ctx      context.Context
	FEN      string
	Request  matching.Request
	Response chan<- SearchResult
}

// SearchResult contains the outcome of a search
type SearchResult struct {
	Report *matching.Report
	Error  error
}

// SearchQueue bounds the number of searches running against the store
type SearchQueue struct {
	tasks   chan SearchTask
	search  SearchFunc
	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	closed  bool
}

// NewSearchQueue creates a queue with workerCount workers and room for
// queueSize waiting tasks
func NewSearchQueue(search SearchFunc, workerCount, queueSize int) *SearchQueue {
	if workerCount < 1 {
		workerCount = 4 // Default
	}
	if queueSize < 1 {
		queueSize = 100
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &SearchQueue{
		tasks:   make(chan SearchTask, queueSize),
		search:  search,
		workers: workerCount,
		ctx:     ctx,
		cancel:  cancel,
	}

	q.start()
	return q
}

// start initializes the worker pool
func (q *SearchQueue) start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

// worker processes search tasks
func (q *SearchQueue) worker() {
	defer q.wg.Done()

	for {
		select {
		case task, ok := <-q.tasks:
			if !ok {
				return // Channel closed
			}

			// Caller gave up while the task was queued
			if err := task.Ctx.Err(); err != nil {
				task.Response <- SearchResult{Error: err}
				continue
			}

			report, err := q.search(task.Ctx, task.FEN, task.Request)
			task.Response <- SearchResult{Report: report, Error: err}

		case <-q.ctx.Done():
			return
		}
	}
}

// Submit adds a task to the queue without blocking
func (q *SearchQueue) Submit(task SearchTask) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueShutdown
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run submits a search and waits for its result or for ctx to end
func (q *SearchQueue) Run(ctx context.Context, fen string, req matching.Request) (*matching.Report, error) {
	respChan := make(chan SearchResult, 1) // Buffered so workers never block on abandoned tasks

	if err := q.Submit(SearchTask{Ctx: ctx, FEN: fen, Request: req, Response: respChan}); err != nil {
		return nil, err
	}

	select {
	case result := <-respChan:
		return result.Report, result.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown stops accepting tasks and waits for running searches
func (q *SearchQueue) Shutdown(timeout time.Duration) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		q.cancel()
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
