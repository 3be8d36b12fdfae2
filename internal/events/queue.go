package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/topic"

	"github.com/kaotoio/kaoto/pkg/api"
	"github.com/kaotoio/kaoto/pkg/log"
)

type (
	// Queue hands published flow states to a handler on its own goroutine.
	// States that pile up while the handler is busy are coalesced so only
	// the newest of a batch is handled
	Queue struct {
		prod        topic.Producer[*api.FlowsState]
		cons        topic.Consumer[*api.FlowsState]
		handler     Handler
		stop        chan struct{}
		batchSize   int
		timeout     time.Duration
		pending     sync.WaitGroup
		started     atomic.Bool
		wg          sync.WaitGroup
		startOnce   sync.Once
		stopOnce    sync.Once
		cleanupOnce sync.Once
	}

	// Handler processes one published state
	Handler func(context.Context, *api.FlowsState) error
)

var ErrHandlerPanicked = errors.New("state handler panicked")

const (
	maxRetries     = 3
	retryDelay     = 100 * time.Millisecond
	defaultTimeout = 10 * time.Second
)

// NewQueue creates a state queue that drains at most batchSize pending
// states at a time and gives the handler timeout to complete each call
func NewQueue(handler Handler, batchSize int, timeout time.Duration) *Queue {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	queue := caravan.NewTopic[*api.FlowsState]()
	return &Queue{
		prod:      queue.NewProducer(),
		cons:      queue.NewConsumer(),
		handler:   handler,
		stop:      make(chan struct{}),
		batchSize: max(batchSize, 1),
		timeout:   timeout,
	}
}

// Start begins processing published states
func (q *Queue) Start() {
	q.startOnce.Do(func() {
		q.started.Store(true)
		q.wg.Go(func() {
			for {
				select {
				case <-q.stop:
					return
				case s, ok := <-q.cons.Receive():
					if !ok {
						return
					}
					q.handleBatch(s)
				}
			}
		})
	})
}

// Publish adds a state to the queue
func (q *Queue) Publish(s *api.FlowsState) {
	q.pending.Add(1)
	q.prod.Send() <- s
}

// Flush waits for queued states to be handled and stops the queue
func (q *Queue) Flush() {
	if q.started.Load() {
		q.pending.Wait()
	}
	q.stopOnce.Do(func() {
		close(q.stop)
	})
	q.wg.Wait()
	q.cleanupOnce.Do(q.flush)
}

// Cancel immediately stops the queue without handling remaining states
func (q *Queue) Cancel() {
	q.stopOnce.Do(func() {
		close(q.stop)
	})
	q.wg.Wait()
	q.cleanupOnce.Do(q.close)
}

func (q *Queue) handleBatch(first *api.FlowsState) {
	latest, n := q.collectLatest(first)
	q.handle(latest)
	for range n {
		q.pending.Done()
	}
}

func (q *Queue) collectLatest(first *api.FlowsState) (*api.FlowsState, int) {
	latest, n := first, 1
	for n < q.batchSize {
		select {
		case s, ok := <-q.cons.Receive():
			if !ok {
				return latest, n
			}
			n++
			if s.Version >= latest.Version {
				latest = s
			}
		default:
			return latest, n
		}
	}
	return latest, n
}

func (q *Queue) flush() {
	for {
		select {
		case s, ok := <-q.cons.Receive():
			if !ok {
				q.close()
				return
			}
			q.handleBatch(s)
		default:
			q.close()
			return
		}
	}
}

func (q *Queue) close() {
	q.prod.Close()
	q.cons.Close()
}

func (q *Queue) handle(s *api.FlowsState) {
	for attempt := range maxRetries {
		err := q.tryHandle(s)
		if err == nil {
			return
		}
		slog.Error("Flow state handling failed",
			log.Version(s.Version),
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxRetries),
			log.Error(err))
		if attempt < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	slog.Error("Flow state permanently dropped",
		log.Version(s.Version))
}

func (q *Queue) tryHandle(s *api.FlowsState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanicked, r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	return q.handler(ctx, s)
}
