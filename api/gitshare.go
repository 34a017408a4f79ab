// Gói api cung cấp các API public cho view layer của GitShare (desktop shell
// hoặc web view). Mọi thao tác phát sinh request GitHub đều đi qua core:
// queue giới hạn đồng thời, cache ngôn ngữ hai tier và rate limit monitor.

package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/internal/cache"
	githubapi "github.com/thep200/gitshare/internal/github_api"
	"github.com/thep200/gitshare/internal/limiter"
	"github.com/thep200/gitshare/internal/model"
	"github.com/thep200/gitshare/internal/pagination"
	"github.com/thep200/gitshare/internal/queue"
	"github.com/thep200/gitshare/pkg/db"
	"github.com/thep200/gitshare/pkg/kafka"
	"github.com/thep200/gitshare/pkg/log"
)

// Repository là dữ liệu repository đã rút gọn cho view layer
type Repository struct {
	Id          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	Language    string `json:"language"`
	Stars       int64  `json:"stars"`
	Forks       int64  `json:"forks"`
	OpenIssues  int64  `json:"openIssues"`
	HtmlUrl     string `json:"htmlUrl"`
	Description string `json:"description"`
}

// UserSummary là dữ liệu user rút gọn cho danh sách follower/following
type UserSummary struct {
	Login     string `json:"login"`
	AvatarUrl string `json:"avatarUrl"`
	HtmlUrl   string `json:"htmlUrl"`
}

// Issue là dữ liệu issue rút gọn cho view layer
type Issue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	State   string `json:"state"`
	Author  string `json:"author"`
	HtmlUrl string `json:"htmlUrl"`
}

// RepoPage là một trang repository kèm trạng thái điều hướng
type RepoPage struct {
	Items       []Repository `json:"items"`
	Page        int          `json:"page"`
	TotalPages  int          `json:"totalPages"`
	HasPrevious bool         `json:"hasPrevious"`
	HasNext     bool         `json:"hasNext"`
}

// UserPage là một trang follower/following kèm trạng thái điều hướng
type UserPage struct {
	Items       []UserSummary `json:"items"`
	Page        int           `json:"page"`
	TotalPages  int           `json:"totalPages"`
	HasPrevious bool          `json:"hasPrevious"`
	HasNext     bool          `json:"hasNext"`
}

// IssuePage là một trang issue kèm trạng thái điều hướng
type IssuePage struct {
	Items       []Issue `json:"items"`
	Page        int     `json:"page"`
	TotalPages  int     `json:"totalPages"`
	HasPrevious bool    `json:"hasPrevious"`
	HasNext     bool    `json:"hasNext"`
}

// RateLimitView là trạng thái quota hiển thị cho user
type RateLimitView struct {
	Known     bool   `json:"known"`
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
	ResetAt   string `json:"resetAt"`
	Paused    bool   `json:"paused"`
	Exhausted bool   `json:"exhausted"`
	Banner    string `json:"banner"`
}

// quotaFetcher chuyển caller thành nguồn quota cho monitor
type quotaFetcher struct {
	caller *githubapi.Caller
}

func (f quotaFetcher) FetchQuota(ctx context.Context) (limiter.Quota, error) {
	status, err := f.caller.RateLimit(ctx)
	if err != nil {
		return limiter.Quota{}, err
	}
	return limiter.Quota{
		Limit:     status.Rate.Limit,
		Remaining: status.Rate.Remaining,
		Reset:     status.Rate.Reset,
	}, nil
}

// GitShareAPI cung cấp các API để view layer tương tác với core
type GitShareAPI struct {
	ctx           context.Context
	config        *cfg.Config
	logger        log.Logger
	db            db.Connector
	caller        *githubapi.Caller
	monitor       *limiter.Monitor
	queue         *queue.RequestQueue
	languages     *cache.LanguageCache
	producer      *kafka.Producer
	isInitialized bool
}

// NewGitShareAPI tạo một instance mới của GitShareAPI
func NewGitShareAPI() *GitShareAPI {
	return &GitShareAPI{}
}

// Initialize khởi tạo các thành phần của core
func (a *GitShareAPI) Initialize(ctx context.Context) error {
	a.ctx = ctx

	var err error

	// Load configuration
	loader, _ := cfg.NewViperLoader()
	a.config, err = loader.Load()
	if err != nil {
		a.logger, _ = log.NewCslLogger()
		a.logger.Error(a.ctx, "Failed to load configuration: %v", err)
		return err
	}

	// Set up logger
	a.logger, err = log.NewCslLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	// Set up database
	a.db, err = db.FactoryConnector(a.config)
	if err != nil {
		a.logger.Error(a.ctx, "Failed to create database connector: %v", err)
		return fmt.Errorf("failed to create database connector: %w", err)
	}

	if err := a.migrateDatabase(); err != nil {
		a.logger.Error(a.ctx, "Failed to migrate database: %v", err)
		return err
	}

	// GitHub caller
	a.caller, err = githubapi.NewCaller(a.logger, a.config)
	if err != nil {
		return fmt.Errorf("failed to create github caller: %w", err)
	}

	// Rate limit monitor: poll ngay khi start rồi theo chu kỳ
	a.monitor, err = limiter.NewMonitor(a.logger, a.config, quotaFetcher{caller: a.caller}, nil)
	if err != nil {
		return fmt.Errorf("failed to create rate limit monitor: %w", err)
	}
	a.monitor.Start(ctx)

	// Request queue giới hạn số lượng request GitHub chạy đồng thời
	a.queue, err = queue.NewRequestQueue(a.logger, a.config.GithubApi.MaxConcurrentRequests)
	if err != nil {
		return fmt.Errorf("failed to create request queue: %w", err)
	}

	// Kafka producer là tùy chọn, chỉ bật khi có cấu hình
	var events cache.Publisher
	if a.config.Kafka.Enabled {
		a.producer, err = kafka.NewProducer(a.config, a.logger, a.config.Kafka.Producer.TopicActivity)
		if err != nil {
			a.logger.Warn(a.ctx, "Kafka disabled: %v", err)
			a.producer = nil
		} else {
			events = a.producer
		}
	}

	// Language cache hai tier
	userLangMd, err := model.NewUserLanguage(a.config, a.logger, a.db)
	if err != nil {
		return fmt.Errorf("failed to create user language model: %w", err)
	}

	a.languages, err = cache.NewLanguageCache(a.logger, a.config, userLangMd, a.caller, a.monitor, events, nil)
	if err != nil {
		return fmt.Errorf("failed to create language cache: %w", err)
	}

	a.isInitialized = true
	return nil
}

// migrateDatabase đảm bảo các bảng cần thiết tồn tại
func (a *GitShareAPI) migrateDatabase() error {
	if a.db == nil {
		return errors.New("database connection not initialized")
	}

	userLangMd, err := model.NewUserLanguage(a.config, a.logger, a.db)
	if err != nil {
		return fmt.Errorf("failed to create user language model: %w", err)
	}

	activityMd, err := model.NewActivity(a.config, a.logger, a.db)
	if err != nil {
		return fmt.Errorf("failed to create activity model: %w", err)
	}

	return a.db.Migrate(userLangMd, activityMd)
}

// Shutdown dừng monitor và đóng các kết nối
func (a *GitShareAPI) Shutdown() {
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.producer != nil {
		a.producer.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Profile lấy profile công khai của một user
func (a *GitShareAPI) Profile(username string) (*githubapi.UserResponse, error) {
	if !a.isInitialized {
		return nil, errors.New("gitshare api is not initialized")
	}
	return a.caller.User(a.ctx, username)
}

// Repositories lấy một trang repository của user kèm trạng thái điều hướng
func (a *GitShareAPI) Repositories(username string, page int) (*RepoPage, error) {
	if !a.isInitialized {
		return nil, errors.New("gitshare api is not initialized")
	}
	if page < 1 {
		page = 1
	}

	repos, linkHeader, err := a.caller.UserRepos(a.ctx, username, a.perPage(), page)
	if err != nil {
		a.logger.Error(a.ctx, "Failed to fetch repositories for %s: %v", username, err)
		return nil, err
	}

	pages := pagination.Resolve(page, linkHeader)
	items := make([]Repository, 0, len(repos))
	for _, repo := range repos {
		items = append(items, Repository{
			Id:          repo.Id,
			Name:        repo.Name,
			FullName:    repo.FullName,
			Language:    repo.Language,
			Stars:       repo.StargazersCount,
			Forks:       repo.ForksCount,
			OpenIssues:  repo.OpenIssuesCount,
			HtmlUrl:     repo.HtmlUrl,
			Description: repo.Description,
		})
	}

	return &RepoPage{
		Items:       items,
		Page:        pages.Current,
		TotalPages:  pages.Total,
		HasPrevious: pages.HasPrevious(),
		HasNext:     pages.HasNext(),
	}, nil
}

// Followers lấy một trang follower của user
func (a *GitShareAPI) Followers(username string, page int) (*UserPage, error) {
	if !a.isInitialized {
		return nil, errors.New("gitshare api is not initialized")
	}
	if page < 1 {
		page = 1
	}

	users, linkHeader, err := a.caller.Followers(a.ctx, username, a.perPage(), page)
	if err != nil {
		a.logger.Error(a.ctx, "Failed to fetch followers for %s: %v", username, err)
		return nil, err
	}

	return a.userPage(users, page, linkHeader), nil
}

// Following lấy một trang các user mà user này đang follow
func (a *GitShareAPI) Following(username string, page int) (*UserPage, error) {
	if !a.isInitialized {
		return nil, errors.New("gitshare api is not initialized")
	}
	if page < 1 {
		page = 1
	}

	users, linkHeader, err := a.caller.Following(a.ctx, username, a.perPage(), page)
	if err != nil {
		a.logger.Error(a.ctx, "Failed to fetch following for %s: %v", username, err)
		return nil, err
	}

	return a.userPage(users, page, linkHeader), nil
}

// Issues lấy một trang issue đang mở của một repository
func (a *GitShareAPI) Issues(owner, repo string, page int) (*IssuePage, error) {
	if !a.isInitialized {
		return nil, errors.New("gitshare api is not initialized")
	}
	if page < 1 {
		page = 1
	}

	issues, linkHeader, err := a.caller.Issues(a.ctx, owner, repo, a.perPage(), page)
	if err != nil {
		a.logger.Error(a.ctx, "Failed to fetch issues for %s/%s: %v", owner, repo, err)
		return nil, err
	}

	pages := pagination.Resolve(page, linkHeader)
	items := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		items = append(items, Issue{
			Number:  issue.Number,
			Title:   issue.Title,
			State:   issue.State,
			Author:  issue.User.Login,
			HtmlUrl: issue.HtmlUrl,
		})
	}

	return &IssuePage{
		Items:       items,
		Page:        pages.Current,
		TotalPages:  pages.Total,
		HasPrevious: pages.HasPrevious(),
		HasNext:     pages.HasNext(),
	}, nil
}

// TopLanguages trả về top ngôn ngữ của một user qua cache hai tier
func (a *GitShareAPI) TopLanguages(username string) []model.LanguageStat {
	if !a.isInitialized {
		return []model.LanguageStat{}
	}
	return a.languages.TopLanguages(a.ctx, username)
}

// EnrichUsers tính top ngôn ngữ cho cả một danh sách user (ví dụ 30 follower
// vừa render). Mỗi user là một task trong queue nên tối đa K request GitHub
// chạy đồng thời dù danh sách dài bao nhiêu.
func (a *GitShareAPI) EnrichUsers(usernames []string) map[string][]model.LanguageStat {
	result := make(map[string][]model.LanguageStat, len(usernames))
	if !a.isInitialized {
		return result
	}

	channels := make([]<-chan interface{}, 0, len(usernames))
	for _, username := range usernames {
		name := username
		channels = append(channels, a.queue.Enqueue(a.ctx, func(ctx context.Context) (interface{}, error) {
			return a.languages.TopLanguages(ctx, name), nil
		}))
	}

	for i, ch := range channels {
		stats, _ := (<-ch).([]model.LanguageStat)
		if stats == nil {
			stats = []model.LanguageStat{}
		}
		result[usernames[i]] = stats
	}

	return result
}

// RateLimitStatus trả về trạng thái quota gần nhất cho UI
func (a *GitShareAPI) RateLimitStatus() *RateLimitView {
	if !a.isInitialized || a.monitor == nil {
		return &RateLimitView{}
	}

	status, known := a.monitor.Status()
	view := &RateLimitView{
		Known:     known,
		Remaining: status.Remaining,
		Limit:     status.Limit,
		Paused:    status.Paused,
		Exhausted: status.Exhausted,
		Banner:    status.Banner(),
	}
	if known {
		view.ResetAt = status.ResetAt.Format("15:04:05")
	}
	return view
}

// OnRateLimitChange đăng ký callback khi trạng thái paused/active thay đổi,
// để view layer bật/tắt các nút phát sinh request
func (a *GitShareAPI) OnRateLimitChange(callback func(limiter.Status)) {
	if a.monitor != nil {
		a.monitor.OnChange(callback)
	}
}

// GetDatabaseStatus kiểm tra trạng thái kết nối cơ sở dữ liệu
func (a *GitShareAPI) GetDatabaseStatus() (string, error) {
	if a.db == nil {
		return "Database not initialized", nil
	}

	if err := a.db.Ping(); err != nil {
		return "Database not connected: " + err.Error(), err
	}

	return "Database connected", nil
}

func (a *GitShareAPI) perPage() int {
	if a.config.GithubApi.PerPage > 0 {
		return a.config.GithubApi.PerPage
	}
	return 10
}

func (a *GitShareAPI) userPage(users []githubapi.UserResponse, page int, linkHeader string) *UserPage {
	pages := pagination.Resolve(page, linkHeader)
	items := make([]UserSummary, 0, len(users))
	for _, user := range users {
		items = append(items, UserSummary{
			Login:     user.Login,
			AvatarUrl: user.AvatarUrl,
			HtmlUrl:   user.HtmlUrl,
		})
	}

	return &UserPage{
		Items:       items,
		Page:        pages.Current,
		TotalPages:  pages.Total,
		HasPrevious: pages.HasPrevious(),
		HasNext:     pages.HasNext(),
	}
}
