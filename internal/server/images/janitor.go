package images

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/logging"
	"github.com/dmitrijs2005/pitstop/internal/server/metrics"
)

const (
	defaultQueueSize = 64
	defaultAttempts  = 3
	defaultBackoff   = 200 * time.Millisecond
)

// Cleaner accepts image paths for removal without waiting for it.
type Cleaner interface {
	Schedule(path string) bool
}

// Janitor removes images that are no longer referenced by any post.
// Removal is best effort: failures are logged, counted and reported to the
// failure hook, never to the request that caused them.
type Janitor struct {
	store     Store
	logger    logging.Logger
	metrics   *metrics.Metrics
	queue     chan string
	attempts  int
	backoff   time.Duration
	onFailure func(path string, err error)
}

type JanitorOption func(*Janitor)

func WithQueueSize(n int) JanitorOption {
	return func(j *Janitor) { j.queue = make(chan string, n) }
}

func WithAttempts(n int) JanitorOption {
	return func(j *Janitor) { j.attempts = max(n, 1) }
}

func WithBackoff(d time.Duration) JanitorOption {
	return func(j *Janitor) { j.backoff = d }
}

func WithMetrics(m *metrics.Metrics) JanitorOption {
	return func(j *Janitor) { j.metrics = m }
}

// WithFailureHook registers fn to be called once per path that could not be
// removed.
func WithFailureHook(fn func(path string, err error)) JanitorOption {
	return func(j *Janitor) { j.onFailure = fn }
}

func NewJanitor(store Store, l logging.Logger, opts ...JanitorOption) *Janitor {
	j := &Janitor{
		store:    store,
		logger:   l.With("module", "images"),
		queue:    make(chan string, defaultQueueSize),
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
	}
	for _, o := range opts {
		o(j)
	}
	return j
}

// Schedule queues path for removal. It never blocks; when the queue is full
// the path is dropped and false is returned. Empty paths are ignored.
func (j *Janitor) Schedule(path string) bool {
	if path == "" {
		return false
	}
	select {
	case j.queue <- path:
		return true
	default:
		j.logger.Warn(context.Background(), "cleanup queue full, image left behind", "path", path)
		j.metrics.CleanupResult(metrics.CleanupDropped)
		return false
	}
}

// Run processes queued removals until ctx is cancelled, then removes
// whatever is still queued with a single attempt each and returns.
func (j *Janitor) Run(ctx context.Context) {
	for {
		select {
		case path := <-j.queue:
			j.remove(ctx, path, j.attempts)
		case <-ctx.Done():
			j.drain(context.WithoutCancel(ctx))
			return
		}
	}
}

func (j *Janitor) drain(ctx context.Context) {
	for {
		select {
		case path := <-j.queue:
			j.remove(ctx, path, 1)
		default:
			return
		}
	}
}

func (j *Janitor) remove(ctx context.Context, path string, attempts int) {
	var err error
	wait := j.backoff

retry:
	for i := 0; i < attempts; i++ {
		if err = j.store.Delete(context.WithoutCancel(ctx), path); err == nil {
			j.logger.Debug(ctx, "image removed", "path", path)
			j.metrics.CleanupResult(metrics.CleanupOK)
			return
		}
		if errors.Is(err, common.ErrInvalidImagePath) || i == attempts-1 {
			break retry
		}

		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			break retry
		}
		wait *= 2
	}

	j.logger.Error(ctx, "image cleanup failed", "path", path, "error", err.Error())
	j.metrics.CleanupResult(metrics.CleanupFailed)
	if j.onFailure != nil {
		j.onFailure(path, err)
	}
}
