package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/ski-report/internal/logger"
	"github.com/pfrederiksen/ski-report/internal/metrics"
	"github.com/pfrederiksen/ski-report/internal/notifier"
)

// Defaults
const (
	DefaultConcurrency = 2
	DefaultTimeout     = 30 * time.Second
)

// Result is the outcome of one channel delivery
type Result struct {
	Channel  string        `json:"channel"`
	OK       bool          `json:"ok"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Options configures a Dispatcher. Zero values select the defaults.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	// Interval spaces consecutive sends when positive
	Interval time.Duration
	Metrics  *metrics.Metrics
	Clock    clockwork.Clock
}

// Dispatcher fans a bulletin out to channels
type Dispatcher struct {
	concurrency int
	timeout     time.Duration
	limiter     *rate.Limiter
	metrics     *metrics.Metrics
	clock       clockwork.Clock
}

// New creates a Dispatcher
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		concurrency: opts.Concurrency,
		timeout:     opts.Timeout,
		metrics:     opts.Metrics,
		clock:       opts.Clock,
	}
	if d.concurrency < 1 {
		d.concurrency = DefaultConcurrency
	}
	if d.timeout <= 0 {
		d.timeout = DefaultTimeout
	}
	if d.clock == nil {
		d.clock = clockwork.NewRealClock()
	}
	if opts.Interval > 0 {
		d.limiter = rate.NewLimiter(rate.Every(opts.Interval), 1)
	}
	return d
}

// Dispatch sends image with each channel's caption and returns one Result
// per channel, in the order given. It never returns early.
func (d *Dispatcher) Dispatch(ctx context.Context, image []byte, captions map[string]string, channels []notifier.Channel) []Result {
	results := make([]Result, len(channels))

	// No WithContext: one failure must not cancel the other sends.
	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for i, ch := range channels {
		g.Go(func() error {
			results[i] = d.deliver(ctx, ch, image, captions)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Dispatcher) deliver(ctx context.Context, ch notifier.Channel, image []byte, captions map[string]string) Result {
	name := ch.Name()
	start := d.clock.Now()

	err := d.send(ctx, ch, image, captions)

	result := Result{
		Channel:  name,
		OK:       err == nil,
		Duration: d.clock.Since(start),
	}
	if err != nil {
		result.Error = err.Error()
		logger.Error("Channel send failed", logger.Fields{
			"channel":     name,
			"duration_ms": result.Duration.Milliseconds(),
		}, err)
	} else {
		logger.Info("Channel send succeeded", logger.Fields{
			"channel":     name,
			"duration_ms": result.Duration.Milliseconds(),
		})
	}
	d.metrics.ObserveSend(name, result.OK, result.Duration)

	return result
}

func (d *Dispatcher) send(ctx context.Context, ch notifier.Channel, image []byte, captions map[string]string) error {
	text, ok := captions[ch.Name()]
	if !ok {
		return fmt.Errorf("no caption composed for channel %s", ch.Name())
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for send slot: %w", err)
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// Buffered so a send that outlives its timeout can still finish.
	done := make(chan error, 1)
	go func() {
		done <- safeSend(sendCtx, ch, image, text)
	}()

	select {
	case err := <-done:
		return err
	case <-sendCtx.Done():
		return fmt.Errorf("send timed out after %s: %w", d.timeout, sendCtx.Err())
	}
}

// safeSend converts a panicking channel into an error
func safeSend(ctx context.Context, ch notifier.Channel, image []byte, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panicked: %v", r)
		}
	}()
	return ch.Send(ctx, image, text)
}

// Succeeded counts the successful results
func Succeeded(results []Result) int {
	n := 0
	for _, r := range results {
		if r.OK {
			n++
		}
	}
	return n
}
