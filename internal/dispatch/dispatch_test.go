package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/ski-report/internal/caption"
	"github.com/pfrederiksen/ski-report/internal/metrics"
	"github.com/pfrederiksen/ski-report/internal/notifier"
)

type fakeChannel struct {
	name string
	send func(ctx context.Context, image []byte, text string) error

	mu   sync.Mutex
	got  []string
	imgs [][]byte
}

func (f *fakeChannel) Name() string             { return f.name }
func (f *fakeChannel) Variant() caption.Variant { return caption.Variant{} }

func (f *fakeChannel) Send(ctx context.Context, image []byte, text string) error {
	f.mu.Lock()
	f.got = append(f.got, text)
	f.imgs = append(f.imgs, image)
	f.mu.Unlock()
	if f.send != nil {
		return f.send(ctx, image, text)
	}
	return nil
}

func captionsFor(names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = "caption for " + n
	}
	return out
}

func TestDispatchFailureIsolation(t *testing.T) {
	first := &fakeChannel{name: "telegram"}
	second := &fakeChannel{name: "twitter", send: func(context.Context, []byte, string) error {
		return errors.New("403 duplicate status")
	}}
	third := &fakeChannel{name: "sms"}

	d := New(Options{Concurrency: 1})
	results := d.Dispatch(context.Background(), []byte("png"), captionsFor("telegram", "twitter", "sms"),
		[]notifier.Channel{first, second, third})

	require.Len(t, results, 3)
	assert.Equal(t, "telegram", results[0].Channel)
	assert.True(t, results[0].OK)
	assert.Equal(t, "twitter", results[1].Channel)
	assert.False(t, results[1].OK)
	assert.Contains(t, results[1].Error, "403 duplicate status")
	assert.Equal(t, "sms", results[2].Channel)
	assert.True(t, results[2].OK)
	assert.Equal(t, 2, Succeeded(results))

	assert.Equal(t, []string{"caption for sms"}, third.got)
}

func TestDispatchRecoversPanic(t *testing.T) {
	boom := &fakeChannel{name: "twitter", send: func(context.Context, []byte, string) error {
		panic("nil client")
	}}
	after := &fakeChannel{name: "sms"}

	results := New(Options{}).Dispatch(context.Background(), nil, captionsFor("twitter", "sms"),
		[]notifier.Channel{boom, after})

	require.Len(t, results, 2)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Error, "channel panicked: nil client")
	assert.True(t, results[1].OK)
}

func TestDispatchRoutesCaptionsAndImage(t *testing.T) {
	a := &fakeChannel{name: "telegram"}
	b := &fakeChannel{name: "twitter"}
	captions := map[string]string{
		"telegram": "long caption",
		"twitter":  "short caption #BeaverCreek",
	}

	results := New(Options{Concurrency: 2}).Dispatch(context.Background(), []byte("map"), captions,
		[]notifier.Channel{a, b})

	require.Len(t, results, 2)
	assert.Equal(t, []string{"long caption"}, a.got)
	assert.Equal(t, []string{"short caption #BeaverCreek"}, b.got)
	assert.Equal(t, [][]byte{[]byte("map")}, a.imgs)
}

func TestDispatchMissingCaption(t *testing.T) {
	ch := &fakeChannel{name: "sms"}

	results := New(Options{}).Dispatch(context.Background(), nil, map[string]string{}, []notifier.Channel{ch})

	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Error, "no caption")
	assert.Empty(t, ch.got, "channel must not be called without a caption")
}

func TestDispatchTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	tests := []struct {
		name string
		send func(ctx context.Context, image []byte, text string) error
	}{
		{
			name: "honours context",
			send: func(ctx context.Context, _ []byte, _ string) error {
				<-ctx.Done()
				return ctx.Err()
			},
		},
		{
			name: "ignores context",
			send: func(context.Context, []byte, string) error {
				<-release
				return nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{name: "telegram", send: tt.send}
			d := New(Options{Timeout: 20 * time.Millisecond})

			results := d.Dispatch(context.Background(), nil, captionsFor("telegram"), []notifier.Channel{ch})

			require.Len(t, results, 1)
			assert.False(t, results[0].OK)
			assert.Contains(t, results[0].Error, "deadline exceeded")
		})
	}
}

func TestDispatchConcurrencyLimit(t *testing.T) {
	var inFlight, peak int32
	send := func(context.Context, []byte, string) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(15 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	}

	names := []string{"a", "b", "c", "d", "e"}
	channels := make([]notifier.Channel, 0, len(names))
	for _, n := range names {
		channels = append(channels, &fakeChannel{name: n, send: send})
	}

	results := New(Options{Concurrency: 2}).Dispatch(context.Background(), nil, captionsFor(names...), channels)

	require.Len(t, results, 5)
	assert.Equal(t, 5, Succeeded(results))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	for i, n := range names {
		assert.Equal(t, n, results[i].Channel, "results keep channel order")
	}
}

func TestDispatchInterval(t *testing.T) {
	names := []string{"telegram", "twitter", "sms"}
	channels := make([]notifier.Channel, 0, len(names))
	for _, n := range names {
		channels = append(channels, &fakeChannel{name: n})
	}

	d := New(Options{Concurrency: 3, Interval: 30 * time.Millisecond})
	start := time.Now()
	results := d.Dispatch(context.Background(), nil, captionsFor(names...), channels)
	elapsed := time.Since(start)

	assert.Equal(t, 3, Succeeded(results))
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond, "three sends need two intervals")
}

func TestDispatchRecordsMetrics(t *testing.T) {
	m := metrics.New()
	ok := &fakeChannel{name: "telegram"}
	bad := &fakeChannel{name: "twitter", send: func(context.Context, []byte, string) error {
		return errors.New("unauthorized")
	}}

	New(Options{Metrics: m}).Dispatch(context.Background(), nil, captionsFor("telegram", "twitter"),
		[]notifier.Channel{ok, bad})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChannelSends.WithLabelValues("telegram", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChannelSends.WithLabelValues("twitter", metrics.OutcomeFailure)))
}

func TestDispatchNoChannels(t *testing.T) {
	results := New(Options{}).Dispatch(context.Background(), nil, nil, nil)
	assert.Empty(t, results)
}
