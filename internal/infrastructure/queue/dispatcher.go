package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/api/internal/core/domain"
	"github.com/sweetshop/api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// ErrDispatcherClosed is returned by Insert after Stop.
var ErrDispatcherClosed = errors.New("movement dispatcher closed")

// Dispatcher moves stock movement writes off the request path. Movements are
// routed to a fixed set of workers by sweet id, so the trail of one sweet is
// persisted in the order the stock changes happened.
//
// Dispatcher satisfies ports.MovementRepository; reads go straight to the
// underlying store.
type Dispatcher struct {
	workers []chan domain.StockMovement
	store   ports.MovementRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store ports.MovementRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.StockMovement, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.StockMovement, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers run until Stop.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Insert queues m for the worker responsible for its sweet. It blocks only
// while that worker's buffer is full, and gives up when ctx ends.
func (d *Dispatcher) Insert(ctx context.Context, m *domain.StockMovement) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.workers[d.shardIndex(m.SweetID)] <- *m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) ListBySweet(ctx context.Context, sweetID string) ([]domain.StockMovement, error) {
	return d.store.ListBySweet(ctx, sweetID)
}

// Stop refuses new movements, lets the workers drain what is queued and
// waits for them until ctx ends.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a sweet id deterministically to a worker index.
func (d *Dispatcher) shardIndex(sweetID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sweetID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan domain.StockMovement) {
	defer d.wg.Done()

	for m := range ch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := d.store.Insert(ctx, &m)
		cancel()
		if err != nil {
			d.log.Error().Err(err).
				Str("sweet_id", m.SweetID).
				Str("kind", string(m.Kind)).
				Int("worker_id", id).
				Msg("stock movement write failed")
		}
	}
}
