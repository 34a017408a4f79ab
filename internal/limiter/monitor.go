// Monitor theo dõi quota của GitHub API và chuyển trạng thái paused/active
// cho toàn ứng dụng. Nó poll endpoint quota ngay khi start và theo chu kỳ cố
// định, thay thế toàn bộ trạng thái sau mỗi lần poll thành công. Lỗi poll chỉ
// được log, không bao giờ tự nó gây pause hay unpause.

package limiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/pkg/log"
)

// Quota là kết quả thô của một lần poll endpoint rate limit
type Quota struct {
	Limit     int
	Remaining int
	Reset     int64
}

type QuotaFetcher interface {
	FetchQuota(ctx context.Context) (Quota, error)
}

// Status là trạng thái quota sau lần poll thành công gần nhất.
// Được thay thế toàn bộ mỗi lần poll, không cập nhật từng phần.
type Status struct {
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetAt   time.Time `json:"resetAt"`
	Paused    bool      `json:"paused"`
	Exhausted bool      `json:"exhausted"`
}

// Banner trả về thông báo hiển thị cho user, chuỗi rỗng khi quota còn đủ
func (s Status) Banner() string {
	if s.Exhausted {
		return fmt.Sprintf("API Rate Limit Exhausted! Resets at %s", s.ResetAt.Format("15:04:05"))
	}
	if s.Paused {
		return fmt.Sprintf("API Rate Limit Low! Resets at %s", s.ResetAt.Format("15:04:05"))
	}
	return ""
}

type Monitor struct {
	Logger    log.Logger
	Config    *cfg.Config
	fetcher   QuotaFetcher
	clock     clockwork.Clock
	mu        sync.RWMutex
	status    Status
	hasStatus bool
	callbacks []func(Status)
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewMonitor(logger log.Logger, config *cfg.Config, fetcher QuotaFetcher, clock clockwork.Clock) (*Monitor, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Monitor{
		Logger:  logger,
		Config:  config,
		fetcher: fetcher,
		clock:   clock,
		done:    make(chan struct{}),
	}, nil
}

// Start poll ngay lập tức rồi tiếp tục theo chu kỳ cấu hình
func (m *Monitor) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go m.loop(ctx)
	})
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()

	m.Poll(ctx)

	interval := time.Duration(m.Config.GithubApi.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.Poll(ctx)
		}
	}
}

// Poll thực hiện một lần kiểm tra quota và thay thế trạng thái nếu thành công
func (m *Monitor) Poll(ctx context.Context) {
	quota, err := m.fetcher.FetchQuota(ctx)
	if err != nil {
		// Giữ nguyên trạng thái cũ cho đến lần poll thành công kế tiếp
		m.Logger.Error(ctx, "Rate limit check error: %v", err)
		return
	}

	threshold := m.Config.GithubApi.PauseThreshold
	if threshold <= 0 {
		threshold = 10
	}

	status := Status{
		Remaining: quota.Remaining,
		Limit:     quota.Limit,
		ResetAt:   time.Unix(quota.Reset, 0),
		Paused:    quota.Remaining < threshold,
		Exhausted: quota.Remaining == 0,
	}

	m.mu.Lock()
	prev := m.status
	had := m.hasStatus
	m.status = status
	m.hasStatus = true
	callbacks := make([]func(Status), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	if status.Paused {
		m.Logger.Warn(ctx, "API rate limit low: %d/%d remaining, resets at %s",
			status.Remaining, status.Limit, status.ResetAt.Format(time.RFC3339))
	}

	// Chỉ báo cho UI khi trạng thái paused/active thay đổi
	if !had || prev.Paused != status.Paused {
		for _, callback := range callbacks {
			go callback(status)
		}
	}
}

// Paused cho biết ứng dụng có đang tạm dừng gọi API hay không
func (m *Monitor) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Paused
}

// Status trả về trạng thái gần nhất; false nếu chưa có lần poll thành công nào
func (m *Monitor) Status() (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status, m.hasStatus
}

// OnChange đăng ký callback được gọi khi trạng thái paused/active thay đổi
func (m *Monitor) OnChange(callback func(Status)) {
	m.mu.Lock()
	m.callbacks = append(m.callbacks, callback)
	m.mu.Unlock()
}
