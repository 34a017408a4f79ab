package limiter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/pkg/log"
)

type fakeFetcher struct {
	mu    sync.Mutex
	quota Quota
	err   error
	calls int
}

func (f *fakeFetcher) FetchQuota(ctx context.Context) (Quota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.quota, f.err
}

func (f *fakeFetcher) set(quota Quota, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quota = quota
	f.err = err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestMonitor(t *testing.T, fetcher QuotaFetcher, clock clockwork.Clock) *Monitor {
	t.Helper()
	logger, _ := log.NewMockLogger()
	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	require.NoError(t, err)

	m, err := NewMonitor(logger, config, fetcher, clock)
	require.NoError(t, err)
	return m
}

func TestPollBelowThresholdPauses(t *testing.T) {
	fetcher := &fakeFetcher{quota: Quota{Limit: 60, Remaining: 9, Reset: time.Now().Unix()}}
	m := newTestMonitor(t, fetcher, clockwork.NewFakeClock())

	m.Poll(context.Background())

	status, ok := m.Status()
	require.True(t, ok)
	assert.True(t, status.Paused)
	assert.False(t, status.Exhausted)
	assert.True(t, m.Paused())
	assert.Contains(t, status.Banner(), "API Rate Limit Low!")
}

func TestPollAtThresholdStaysActive(t *testing.T) {
	fetcher := &fakeFetcher{quota: Quota{Limit: 60, Remaining: 10, Reset: time.Now().Unix()}}
	m := newTestMonitor(t, fetcher, clockwork.NewFakeClock())

	m.Poll(context.Background())

	status, ok := m.Status()
	require.True(t, ok)
	assert.False(t, status.Paused)
	assert.False(t, m.Paused())
	assert.Empty(t, status.Banner())
}

func TestPollZeroRemainingIsExhausted(t *testing.T) {
	fetcher := &fakeFetcher{quota: Quota{Limit: 60, Remaining: 0, Reset: time.Now().Unix()}}
	m := newTestMonitor(t, fetcher, clockwork.NewFakeClock())

	m.Poll(context.Background())

	status, ok := m.Status()
	require.True(t, ok)
	assert.True(t, status.Paused)
	assert.True(t, status.Exhausted)
	assert.Contains(t, status.Banner(), "API Rate Limit Exhausted!")
}

func TestPollErrorRetainsPreviousStatus(t *testing.T) {
	fetcher := &fakeFetcher{quota: Quota{Limit: 60, Remaining: 5, Reset: time.Now().Unix()}}
	m := newTestMonitor(t, fetcher, clockwork.NewFakeClock())

	m.Poll(context.Background())
	require.True(t, m.Paused())

	fetcher.set(Quota{}, errors.New("network down"))
	m.Poll(context.Background())

	// Trạng thái paused trước đó được giữ nguyên
	status, ok := m.Status()
	assert.True(t, ok)
	assert.True(t, status.Paused)
	assert.Equal(t, 5, status.Remaining)
}

func TestPollErrorBeforeFirstSuccessLeavesNoStatus(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("network down")}
	m := newTestMonitor(t, fetcher, clockwork.NewFakeClock())

	m.Poll(context.Background())

	_, ok := m.Status()
	assert.False(t, ok)
	assert.False(t, m.Paused())
}

func TestOnChangeFiresOnTransitionsOnly(t *testing.T) {
	fetcher := &fakeFetcher{quota: Quota{Limit: 60, Remaining: 50, Reset: time.Now().Unix()}}
	m := newTestMonitor(t, fetcher, clockwork.NewFakeClock())

	changes := make(chan Status, 10)
	m.OnChange(func(s Status) { changes <- s })

	// Lần poll đầu tiên luôn báo trạng thái
	m.Poll(context.Background())
	select {
	case s := <-changes:
		assert.False(t, s.Paused)
	case <-time.After(time.Second):
		t.Fatal("expected callback after first poll")
	}

	// Trạng thái không đổi thì không báo lại
	m.Poll(context.Background())
	select {
	case <-changes:
		t.Fatal("unexpected callback without a transition")
	case <-time.After(50 * time.Millisecond):
	}

	// Chuyển sang paused thì báo
	fetcher.set(Quota{Limit: 60, Remaining: 3, Reset: time.Now().Unix()}, nil)
	m.Poll(context.Background())
	select {
	case s := <-changes:
		assert.True(t, s.Paused)
	case <-time.After(time.Second):
		t.Fatal("expected callback on paused transition")
	}
}

func TestStartPollsImmediatelyAndOnInterval(t *testing.T) {
	fetcher := &fakeFetcher{quota: Quota{Limit: 60, Remaining: 50, Reset: time.Now().Unix()}}
	clock := clockwork.NewFakeClock()
	m := newTestMonitor(t, fetcher, clock)

	m.Start(context.Background())
	defer m.Stop()

	require.Eventually(t, func() bool {
		return fetcher.callCount() == 1
	}, time.Second, 10*time.Millisecond)

	// Chờ loop tạo ticker rồi mới advance
	clock.BlockUntil(1)
	clock.Advance(30 * time.Second)

	require.Eventually(t, func() bool {
		return fetcher.callCount() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestStopIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{quota: Quota{Limit: 60, Remaining: 50, Reset: time.Now().Unix()}}
	m := newTestMonitor(t, fetcher, clockwork.NewFakeClock())

	m.Start(context.Background())
	m.Stop()
	m.Stop()
}
