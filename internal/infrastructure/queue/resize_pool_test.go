package queue

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcTransformer func([]byte) ([]byte, error)

func (f funcTransformer) Transform(src []byte) ([]byte, error) { return f(src) }

var identity = funcTransformer(func(src []byte) ([]byte, error) { return src, nil })

func TestResizePool_ReturnsTransformResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewResizePool(2, funcTransformer(func(src []byte) ([]byte, error) { return bytes.ToUpper(src), nil }), Metrics{}, zerolog.Nop())
	pool.Start(ctx)

	out, err := pool.Resize(ctx, "u1", []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ABC"), out)
}

func TestResizePool_PropagatesError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("boom")
	pool := NewResizePool(1, funcTransformer(func([]byte) ([]byte, error) { return nil, boom }), Metrics{}, zerolog.Nop())
	pool.Start(ctx)

	_, err := pool.Resize(ctx, "u1", []byte("x"))
	assert.ErrorIs(t, err, boom)
}

func TestResizePool_SameKeyIsSerialised(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var running, maxRunning int32
	slow := funcTransformer(func(src []byte) ([]byte, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return src, nil
	})

	pool := NewResizePool(8, slow, Metrics{}, zerolog.Nop())
	pool.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.Resize(ctx, "same-user", []byte("x"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestResizePool_ShardIndexIsStable(t *testing.T) {
	pool := NewResizePool(8, identity, Metrics{}, zerolog.Nop())

	first := pool.shardIndex("user-42")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, pool.shardIndex("user-42"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 8)
}

func TestResizePool_CallerCancelled(t *testing.T) {
	poolCtx, stop := context.WithCancel(context.Background())
	defer stop()

	release := make(chan struct{})
	blocking := funcTransformer(func(src []byte) ([]byte, error) {
		<-release
		return src, nil
	})
	pool := NewResizePool(1, blocking, Metrics{}, zerolog.Nop())
	pool.Start(poolCtx)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := pool.Resize(ctx, "u1", []byte("x"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResizePool_Stopped(t *testing.T) {
	pool := NewResizePool(1, identity, Metrics{}, zerolog.Nop())
	stopped := make(chan struct{})
	close(stopped)
	pool.stopped = stopped

	// Fill the single worker's buffer so submission cannot succeed.
	for i := 0; i < channelBuffer; i++ {
		pool.workers[0] <- job{ctx: context.Background(), result: make(chan result, 1)}
	}

	_, err := pool.Resize(context.Background(), "u1", []byte("x"))
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestNewResizePool_DefaultWorkers(t *testing.T) {
	pool := NewResizePool(0, identity, Metrics{}, zerolog.Nop())
	assert.Len(t, pool.workers, defaultWorkers)
}

func TestResizePool_ReportsToInjectedMetrics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := Metrics{
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "depth"}, []string{"worker_id"}),
		Duration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "duration"}, []string{"result"}),
	}
	failing := funcTransformer(func(src []byte) ([]byte, error) {
		if len(src) == 0 {
			return nil, errors.New("empty")
		}
		return src, nil
	})
	pool := NewResizePool(1, failing, m, zerolog.Nop())
	pool.Start(ctx)

	_, err := pool.Resize(ctx, "u1", []byte("a"))
	require.NoError(t, err)
	_, err = pool.Resize(ctx, "u1", []byte("b"))
	require.NoError(t, err)
	_, err = pool.Resize(ctx, "u1", nil)
	require.Error(t, err)

	sampleCount := func(result string) uint64 {
		var out dto.Metric
		require.NoError(t, m.Duration.WithLabelValues(result).(prometheus.Metric).Write(&out))
		return out.GetHistogram().GetSampleCount()
	}
	assert.Equal(t, uint64(2), sampleCount("ok"))
	assert.Equal(t, uint64(1), sampleCount("error"))

	var depth dto.Metric
	require.NoError(t, m.QueueDepth.WithLabelValues("0").Write(&depth))
	assert.Zero(t, depth.GetGauge().GetValue())
}
