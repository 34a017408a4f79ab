package main

import (
	"context"
	"fmt"

	"github.com/thep200/gitshare/api"
	"github.com/thep200/gitshare/internal/limiter"
	"github.com/thep200/gitshare/internal/model"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// App struct
type App struct {
	ctx           context.Context
	gitshare      *api.GitShareAPI
	initError     string
	isInitialized bool
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{
		gitshare:      api.NewGitShareAPI(),
		isInitialized: false,
	}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	err := a.gitshare.Initialize(ctx)
	if err != nil {
		a.initError = fmt.Sprintf("Failed to initialize gitshare: %v", err)
		runtime.LogErrorf(ctx, "Initialization error: %v", err)
		// Không return ở đây, UI vẫn hiển thị được thông báo lỗi
		return
	}

	a.isInitialized = true
	runtime.LogInfo(ctx, "GitShare initialized successfully")

	// Bật/tắt các nút phát sinh request khi trạng thái quota thay đổi
	a.gitshare.OnRateLimitChange(func(status limiter.Status) {
		runtime.EventsEmit(a.ctx, "rate_limit_changed", status)
	})
}

func (a *App) shutdown(ctx context.Context) {
	a.gitshare.Shutdown()
}

// GetProfile returns the public profile of a user
func (a *App) GetProfile(username string) map[string]interface{} {
	if !a.isInitialized {
		return map[string]interface{}{"error": a.initError}
	}

	profile, err := a.gitshare.Profile(username)
	if err != nil {
		runtime.LogErrorf(a.ctx, "Error fetching profile: %v", err)
		return map[string]interface{}{"error": "Failed to fetch profile"}
	}

	return map[string]interface{}{"profile": profile}
}

// GetRepositories returns one page of a user's repositories
func (a *App) GetRepositories(username string, page int) *api.RepoPage {
	if !a.isInitialized {
		return &api.RepoPage{}
	}

	repoPage, err := a.gitshare.Repositories(username, page)
	if err != nil {
		runtime.LogErrorf(a.ctx, "Error fetching repositories: %v", err)
		return &api.RepoPage{Page: page, TotalPages: 1}
	}

	return repoPage
}

// GetFollowers returns one page of a user's followers
func (a *App) GetFollowers(username string, page int) *api.UserPage {
	if !a.isInitialized {
		return &api.UserPage{}
	}

	userPage, err := a.gitshare.Followers(username, page)
	if err != nil {
		runtime.LogErrorf(a.ctx, "Error fetching followers: %v", err)
		return &api.UserPage{Page: page, TotalPages: 1}
	}

	return userPage
}

// GetFollowing returns one page of the users a user follows
func (a *App) GetFollowing(username string, page int) *api.UserPage {
	if !a.isInitialized {
		return &api.UserPage{}
	}

	userPage, err := a.gitshare.Following(username, page)
	if err != nil {
		runtime.LogErrorf(a.ctx, "Error fetching following: %v", err)
		return &api.UserPage{Page: page, TotalPages: 1}
	}

	return userPage
}

// GetIssues returns one page of a repository's open issues
func (a *App) GetIssues(owner, repo string, page int) *api.IssuePage {
	if !a.isInitialized {
		return &api.IssuePage{}
	}

	issuePage, err := a.gitshare.Issues(owner, repo, page)
	if err != nil {
		runtime.LogErrorf(a.ctx, "Error fetching issues: %v", err)
		return &api.IssuePage{Page: page, TotalPages: 1}
	}

	return issuePage
}

// GetTopLanguages returns a user's top languages from the two-tier cache
func (a *App) GetTopLanguages(username string) []model.LanguageStat {
	if !a.isInitialized {
		return []model.LanguageStat{}
	}
	return a.gitshare.TopLanguages(username)
}

// EnrichUsers computes top languages for a list of users through the
// bounded request queue, so the UI can render a follower list progressively
func (a *App) EnrichUsers(usernames []string) map[string][]model.LanguageStat {
	if !a.isInitialized {
		return map[string][]model.LanguageStat{}
	}
	return a.gitshare.EnrichUsers(usernames)
}

// GetRateLimitStatus returns the latest quota status for the badge/banner
func (a *App) GetRateLimitStatus() *api.RateLimitView {
	return a.gitshare.RateLimitStatus()
}

// GetDbStatus checks the database connection status
func (a *App) GetDbStatus() string {
	if !a.isInitialized {
		return fmt.Sprintf("Error: GitShare is not initialized. %s", a.initError)
	}

	status, err := a.gitshare.GetDatabaseStatus()
	if err != nil {
		errMsg := fmt.Sprintf("Database error: %v", err)
		runtime.LogErrorf(a.ctx, errMsg)
		return errMsg
	}

	return status
}

// GetInitStatus returns initialization status and any error message
func (a *App) GetInitStatus() map[string]interface{} {
	return map[string]interface{}{
		"initialized": a.isInitialized,
		"error":       a.initError,
	}
}
