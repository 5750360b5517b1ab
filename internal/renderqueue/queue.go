// Package renderqueue runs page transformations on a fixed pool of workers.
// It supports priority ordering (interactive before background), sharing one
// run between identical submissions, and graceful shutdown with in-flight job
// completion.
package renderqueue

import (
	"container/heap"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danielledeleo/wikilite/render"
)

// ErrQueueClosed is returned when Submit is called on a closed queue.
var ErrQueueClosed = errors.New("render queue is closed")

// Tier represents the priority tier of a render job.
type Tier int

const (
	// TierInteractive is for user-facing requests (creates, edits) - highest priority.
	TierInteractive Tier = iota
	// TierBackground is for bulk re-renders - lower priority.
	TierBackground
)

// Job represents one transformation of raw page content.
type Job struct {
	Key         string    // Jobs with equal keys share a single run; see ContentKey
	Content     string    // Raw markup to transform
	Tier        Tier      // Priority tier
	SubmittedAt time.Time // For FIFO ordering within tier
	heapIndex   int       // Internal index for heap operations
}

// Result contains the outcome of a job. Every waiter on a shared job receives
// the same Output and must treat it as read-only.
type Result struct {
	Output *render.Output // nil on error
	Err    error
}

// TransformFunc is the function signature for the work a queue performs.
type TransformFunc func(raw string) (*render.Output, error)

// ContentKey derives a job key from the content itself, so only byte-identical
// submissions are merged.
func ContentKey(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Queue manages a pool of workers that process jobs in priority order.
type Queue struct {
	transform   TransformFunc
	mu          sync.Mutex
	heap        *jobHeap
	pending     map[string]*Job          // queued jobs by key
	waiters     map[string][]chan Result // notification channels by key
	jobReady    chan struct{}            // buffered(1), signals workers
	closed      bool
	closeCh     chan struct{}
	wg          sync.WaitGroup
	workerCount int
}

// New creates a new queue with the specified number of workers.
func New(workerCount int, transform TransformFunc) *Queue {
	if workerCount < 1 {
		workerCount = 1
	}

	q := &Queue{
		transform:   transform,
		heap:        &jobHeap{},
		pending:     make(map[string]*Job),
		waiters:     make(map[string][]chan Result),
		jobReady:    make(chan struct{}, 1),
		closeCh:     make(chan struct{}),
		workerCount: workerCount,
	}

	heap.Init(q.heap)

	q.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go q.worker()
	}

	return q
}

// Workers returns the size of the worker pool.
func (q *Queue) Workers() int {
	return q.workerCount
}

// Submit adds a job to the queue. If a job with the same key is already
// queued, the submission joins it: the new waiter is notified by the same run
// and the job is promoted if the new tier is higher. The waiter channel (if
// non-nil) should be buffered; a waiter that is not ready is skipped.
//
// Returns ErrQueueClosed if the queue has been shut down.
func (q *Queue) Submit(ctx context.Context, job Job, waitCh chan Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	if existing, ok := q.pending[job.Key]; ok {
		// Same content: keep the queue position, only raise priority.
		if job.Tier < existing.Tier {
			existing.Tier = job.Tier
			q.heap.Fix(existing.heapIndex)
		}
	} else {
		jobCopy := job
		q.pending[job.Key] = &jobCopy
		heap.Push(q.heap, &jobCopy)
	}

	if waitCh != nil {
		q.waiters[job.Key] = append(q.waiters[job.Key], waitCh)
	}

	// Signal that a job is ready (non-blocking since channel is buffered)
	select {
	case q.jobReady <- struct{}{}:
	default:
	}

	return nil
}

// Transform submits content at the given tier and blocks until it has been
// transformed or ctx is done.
func (q *Queue) Transform(ctx context.Context, content string, tier Tier) (*render.Output, error) {
	waitCh := make(chan Result, 1)
	job := Job{
		Key:         ContentKey(content),
		Content:     content,
		Tier:        tier,
		SubmittedAt: time.Now(),
	}

	if err := q.Submit(ctx, job, waitCh); err != nil {
		return nil, err
	}

	select {
	case result := <-waitCh:
		return result.Output, result.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown gracefully shuts down the queue. It stops accepting new jobs,
// drains any pending jobs from the queue, waits for in-flight jobs to complete
// (up to context deadline), then returns. Returns context error if the deadline
// is exceeded.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeCh)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for {
		select {
		case <-q.closeCh:
			// Drain remaining jobs before exiting
			for q.processOneJob() {
			}
			return
		case <-q.jobReady:
			q.processOneJob()
		}
	}
}

// processOneJob pops and runs one job. It returns false if the queue was empty.
func (q *Queue) processOneJob() bool {
	q.mu.Lock()
	if q.heap.Len() == 0 {
		q.mu.Unlock()
		return false
	}

	job := heap.Pop(q.heap).(*Job)
	delete(q.pending, job.Key)

	jobWaiters := q.waiters[job.Key]
	delete(q.waiters, job.Key)

	// More work left: wake another worker.
	if q.heap.Len() > 0 {
		select {
		case q.jobReady <- struct{}{}:
		default:
		}
	}

	q.mu.Unlock()

	result := q.execute(job.Content)

	for _, ch := range jobWaiters {
		select {
		case ch <- result:
		default:
			// Waiter abandoned (buffer full), skip
		}
	}

	return true
}

// execute calls the transform function with panic recovery.
func (q *Queue) execute(content string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Err: fmt.Errorf("transform panic: %v", r)}
		}
	}()

	out, err := q.transform(content)
	return Result{Output: out, Err: err}
}
