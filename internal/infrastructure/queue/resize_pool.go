package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrPoolStopped is returned for jobs submitted after the pool's context was
// cancelled.
var ErrPoolStopped = errors.New("resize pool stopped")

// Transformer does the CPU-bound image work for one job.
type Transformer interface {
	Transform(src []byte) ([]byte, error)
}

type result struct {
	data []byte
	err  error
}

type job struct {
	ctx    context.Context
	key    string
	src    []byte
	result chan<- result
}

// Metrics are the collectors the pool reports to. QueueDepth is labelled by
// worker_id and Duration by result ("ok" or "error"). Nil collectors are
// skipped.
type Metrics struct {
	QueueDepth *prometheus.GaugeVec
	Duration   *prometheus.HistogramVec
}

func (m Metrics) depth(worker int) prometheus.Gauge {
	if m.QueueDepth == nil {
		return nopGauge{}
	}
	return m.QueueDepth.WithLabelValues(strconv.Itoa(worker))
}

func (m Metrics) observe(outcome string, d time.Duration) {
	if m.Duration != nil {
		m.Duration.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

type nopGauge struct{ prometheus.Gauge }

func (nopGauge) Inc() {}
func (nopGauge) Dec() {}

// ResizePool runs image transforms on a fixed set of workers. Jobs are routed
// by consistent hashing on their key, so jobs for the same user run one at a
// time and in submission order.
type ResizePool struct {
	workers     []chan job
	transformer Transformer
	metrics     Metrics
	log         zerolog.Logger
	stopped     <-chan struct{}
}

// NewResizePool creates a ResizePool with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewResizePool(numWorkers int, transformer Transformer, m Metrics, log zerolog.Logger) *ResizePool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	p := &ResizePool{
		workers:     make([]chan job, numWorkers),
		transformer: transformer,
		metrics:     m,
		log:         log,
	}
	for i := range p.workers {
		p.workers[i] = make(chan job, channelBuffer)
	}
	return p
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *ResizePool) Start(ctx context.Context) {
	p.stopped = ctx.Done()
	for i, ch := range p.workers {
		go p.runWorker(ctx, i, ch)
	}
}

// Resize submits src to the worker owning key and waits for the result.
func (p *ResizePool) Resize(ctx context.Context, key string, src []byte) ([]byte, error) {
	res := make(chan result, 1)
	idx := p.shardIndex(key)

	select {
	case p.workers[idx] <- job{ctx: ctx, key: key, src: src, result: res}:
		p.metrics.depth(idx).Inc()
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.stopped:
		return nil, ErrPoolStopped
	}

	select {
	case r := <-res:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.stopped:
		return nil, ErrPoolStopped
	}
}

// shardIndex maps a key deterministically to a worker index.
func (p *ResizePool) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(p.workers)))
}

func (p *ResizePool) runWorker(ctx context.Context, id int, ch <-chan job) {
	depth := p.metrics.depth(id)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-ch:
			depth.Dec()
			if j.ctx.Err() != nil {
				// The caller gave up while the job was queued.
				continue
			}

			start := time.Now()
			data, err := p.transformer.Transform(j.src)
			outcome := "ok"
			if err != nil {
				outcome = "error"
				p.log.Warn().Err(err).
					Str("key", j.key).
					Int("worker_id", id).
					Msg("image resize failed")
			}
			p.metrics.observe(outcome, time.Since(start))

			j.result <- result{data: data, err: err}
		}
	}
}
