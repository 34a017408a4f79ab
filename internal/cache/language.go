// Gói cache resolve "top ngôn ngữ của user X" qua hai tier trước khi gọi
// mạng: map trong bộ nhớ (sống theo process) và bảng user_languages (sống qua
// restart). Tier bộ nhớ chỉ là cache của giá trị mới nhất trong tier bền
// vững, không bao giờ là nguồn sự thật riêng.
//
// Mọi đường lỗi đều trả về danh sách rỗng thay vì error: dữ liệu ngôn ngữ là
// enrichment best-effort cho list UI, một user thiếu ngôn ngữ không được làm
// hỏng cả danh sách.

package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/thep200/gitshare/cfg"
	githubapi "github.com/thep200/gitshare/internal/github_api"
	"github.com/thep200/gitshare/internal/model"
	"github.com/thep200/gitshare/pkg/log"
	"golang.org/x/sync/singleflight"
)

// Store là tier bền vững của cache
type Store interface {
	Find(ctx context.Context, username string) (*model.UserLanguage, error)
	Upsert(ctx context.Context, username string, stats []model.LanguageStat) error
}

// RepoLister lấy danh sách repository của một user từ GitHub
type RepoLister interface {
	UserRepos(ctx context.Context, username string, perPage, page int) ([]githubapi.RepoResponse, string, error)
}

// Pauser cho biết ứng dụng có đang tạm dừng gọi API hay không
type Pauser interface {
	Paused() bool
}

// Publisher phát sự kiện refresh cache, có thể là nil
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

type LanguageCache struct {
	Logger log.Logger
	Config *cfg.Config
	store  Store
	github RepoLister
	pauser Pauser
	events Publisher
	clock  clockwork.Clock
	mu     sync.RWMutex
	memory map[string][]model.LanguageStat
	group  singleflight.Group
}

func NewLanguageCache(logger log.Logger, config *cfg.Config, store Store, github RepoLister, pauser Pauser, events Publisher, clock clockwork.Clock) (*LanguageCache, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LanguageCache{
		Logger: logger,
		Config: config,
		store:  store,
		github: github,
		pauser: pauser,
		events: events,
		clock:  clock,
		memory: make(map[string][]model.LanguageStat),
	}, nil
}

// TopLanguages trả về top ngôn ngữ của username, không bao giờ lỗi.
// Thứ tự kiểm tra: memory, tier bền vững (còn trong TTL), rồi mới gọi mạng.
// Các miss đồng thời cho cùng một username được gộp thành một lần fetch.
func (c *LanguageCache) TopLanguages(ctx context.Context, username string) []model.LanguageStat {
	if stats, ok := c.fromMemory(username); ok {
		return stats
	}

	v, _, _ := c.group.Do(username, func() (interface{}, error) {
		// Caller khác có thể vừa điền memory trong lúc mình chờ
		if stats, ok := c.fromMemory(username); ok {
			return stats, nil
		}
		if stats, ok := c.fromStore(ctx, username); ok {
			return stats, nil
		}
		return c.fetchFromAPI(ctx, username), nil
	})

	stats, _ := v.([]model.LanguageStat)
	if stats == nil {
		return []model.LanguageStat{}
	}
	return stats
}

// ClearMemory xóa tier bộ nhớ, tier bền vững giữ nguyên
func (c *LanguageCache) ClearMemory() {
	c.mu.Lock()
	c.memory = make(map[string][]model.LanguageStat)
	c.mu.Unlock()
}

func (c *LanguageCache) fromMemory(username string) ([]model.LanguageStat, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats, ok := c.memory[username]
	return stats, ok
}

func (c *LanguageCache) toMemory(username string, stats []model.LanguageStat) {
	c.mu.Lock()
	c.memory[username] = stats
	c.mu.Unlock()
}

// fromStore đọc tier bền vững; entry quá TTL được coi là miss
func (c *LanguageCache) fromStore(ctx context.Context, username string) ([]model.LanguageStat, bool) {
	rec, err := c.store.Find(ctx, username)
	if err != nil {
		c.Logger.Error(ctx, "Error querying user_languages for %s: %v", username, err)
		return nil, false
	}
	if rec == nil {
		return nil, false
	}

	ttl := time.Duration(c.Config.GithubApi.CacheTtlHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if c.clock.Now().Sub(rec.UpdatedAt) >= ttl {
		return nil, false
	}

	stats, err := rec.TopLanguages()
	if err != nil {
		c.Logger.Error(ctx, "Corrupted language cache entry for %s: %v", username, err)
		return nil, false
	}

	// Promote vào tier bộ nhớ
	c.toMemory(username, stats)
	return stats, true
}

// fetchFromAPI tính top ngôn ngữ từ các repository mới cập nhật nhất của user
// rồi ghi xuống cả hai tier (bền vững trước, bộ nhớ sau)
func (c *LanguageCache) fetchFromAPI(ctx context.Context, username string) []model.LanguageStat {
	if c.pauser != nil && c.pauser.Paused() {
		c.Logger.Info(ctx, "API paused for %s due to rate limit", username)
		return []model.LanguageStat{}
	}

	limit := c.Config.GithubApi.LanguageRepoLimit
	if limit <= 0 {
		limit = 30
	}

	repos, _, err := c.github.UserRepos(ctx, username, limit, 1)
	if err != nil {
		c.Logger.Error(ctx, "Error fetching top languages for %s: %v", username, err)
		return []model.LanguageStat{}
	}

	topN := c.Config.GithubApi.TopLanguageCount
	if topN <= 0 {
		topN = 3
	}
	stats := tallyLanguages(repos, topN)

	// Tier bền vững ghi trước; lỗi ghi chỉ làm mất durability,
	// kết quả đã tính vẫn phục vụ request hiện tại
	if err := c.store.Upsert(ctx, username, stats); err != nil {
		c.Logger.Error(ctx, "Failed to persist languages for %s: %v", username, err)
	}
	c.toMemory(username, stats)

	c.publishRefresh(username, stats)
	return stats
}

// tallyLanguages đếm repository theo ngôn ngữ chính, sắp giảm dần theo số
// lượng và cắt còn topN. Khi bằng điểm, giữ thứ tự gặp đầu tiên trong phản
// hồi API. Repository không khai báo ngôn ngữ bị bỏ qua.
func tallyLanguages(repos []githubapi.RepoResponse, topN int) []model.LanguageStat {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, repo := range repos {
		if repo.Language == "" {
			continue
		}
		if _, seen := counts[repo.Language]; !seen {
			order = append(order, repo.Language)
		}
		counts[repo.Language]++
	}

	stats := make([]model.LanguageStat, 0, len(order))
	for _, language := range order {
		stats = append(stats, model.LanguageStat{
			Language: language,
			Count:    counts[language],
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})

	if len(stats) > topN {
		stats = stats[:topN]
	}

	return stats
}

// publishRefresh phát sự kiện refresh theo kiểu fire-and-forget
func (c *LanguageCache) publishRefresh(username string, stats []model.LanguageStat) {
	if c.events == nil {
		return
	}

	msg := model.ActivityMessage{
		Username: username,
		Action:   "language_refresh",
		Detail:   fmt.Sprintf("%d languages cached", len(stats)),
		At:       c.clock.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.events.Publish(ctx, "activity", msg); err != nil {
			c.Logger.Warn(ctx, "Failed to publish language refresh event for %s: %v", username, err)
		}
	}()
}
