// Gói githubapi cung cấp một caller cho GitHub REST API.
// Caller chịu trách nhiệm thực hiện yêu cầu API cho profile, repository,
// follower và quota rate limit. Nó xử lý xác thực bằng access token nếu được
// cung cấp; không có token vẫn gọi được với quota thấp hơn.

package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/internal/limiter"
	"github.com/thep200/gitshare/pkg/log"
)

type Caller struct {
	Logger      log.Logger
	Config      *cfg.Config
	client      *http.Client
	rateLimiter *limiter.RateLimiter
}

func NewCaller(logger log.Logger, config *cfg.Config) (*Caller, error) {
	return &Caller{
		Logger: logger,
		Config: config,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: limiter.NewRateLimiter(config.GithubApi.RequestsPerSecond),
	}, nil
}

// do thực hiện một GET request với header chuẩn của GitHub API
func (c *Caller) do(ctx context.Context, fullUrl string) (*http.Response, error) {
	// Giữ số request mỗi giây dưới ngưỡng cấu hình
	throttle := time.Duration(c.Config.GithubApi.ThrottleDelay) * time.Millisecond
	if err := c.rateLimiter.Wait(ctx, throttle); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, nil)
	if err != nil {
		c.Logger.Error(ctx, "Cannot request: %v", err)
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.Config.GithubApi.AccessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s", c.Config.GithubApi.AccessToken))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.Logger.Error(ctx, "cannot send request: %v", err)
		return nil, err
	}

	return resp, nil
}

// getJSON gọi API và giải mã phản hồi, trả về thêm header Link để phân trang
func (c *Caller) getJSON(ctx context.Context, fullUrl string, out interface{}) (string, error) {
	resp, err := c.do(ctx, fullUrl)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cannot received response: %v", resp.Status)
	}

	linkHeader := resp.Header.Get("Link")

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", err
	}

	return linkHeader, nil
}

// User lấy profile công khai của một user
func (c *Caller) User(ctx context.Context, username string) (*UserResponse, error) {
	fullUrl := fmt.Sprintf("%s/users/%s", c.Config.GithubApi.ApiUrl, username)

	user := &UserResponse{}
	if _, err := c.getJSON(ctx, fullUrl, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UserRepos lấy danh sách repository của user, sắp theo lần cập nhật gần nhất
func (c *Caller) UserRepos(ctx context.Context, username string, perPage, page int) ([]RepoResponse, string, error) {
	fullUrl := fmt.Sprintf("%s/users/%s/repos?sort=updated&per_page=%d&page=%d",
		c.Config.GithubApi.ApiUrl, username, perPage, page)

	var repos []RepoResponse
	linkHeader, err := c.getJSON(ctx, fullUrl, &repos)
	if err != nil {
		return nil, "", err
	}

	return repos, linkHeader, nil
}

// Followers lấy danh sách follower của user
func (c *Caller) Followers(ctx context.Context, username string, perPage, page int) ([]UserResponse, string, error) {
	fullUrl := fmt.Sprintf("%s/users/%s/followers?per_page=%d&page=%d",
		c.Config.GithubApi.ApiUrl, username, perPage, page)

	var users []UserResponse
	linkHeader, err := c.getJSON(ctx, fullUrl, &users)
	if err != nil {
		return nil, "", err
	}

	return users, linkHeader, nil
}

// Following lấy danh sách user mà user này đang follow
func (c *Caller) Following(ctx context.Context, username string, perPage, page int) ([]UserResponse, string, error) {
	fullUrl := fmt.Sprintf("%s/users/%s/following?per_page=%d&page=%d",
		c.Config.GithubApi.ApiUrl, username, perPage, page)

	var users []UserResponse
	linkHeader, err := c.getJSON(ctx, fullUrl, &users)
	if err != nil {
		return nil, "", err
	}

	return users, linkHeader, nil
}

// Issues lấy danh sách issue đang mở của một repository
func (c *Caller) Issues(ctx context.Context, owner, repo string, perPage, page int) ([]IssueResponse, string, error) {
	fullUrl := fmt.Sprintf("%s/repos/%s/%s/issues?per_page=%d&page=%d",
		c.Config.GithubApi.ApiUrl, owner, repo, perPage, page)

	var issues []IssueResponse
	linkHeader, err := c.getJSON(ctx, fullUrl, &issues)
	if err != nil {
		return nil, "", err
	}

	return issues, linkHeader, nil
}

// RateLimit lấy quota hiện tại của token/IP đang dùng.
// Endpoint này không bị tính vào quota nên monitor có thể poll thoải mái.
func (c *Caller) RateLimit(ctx context.Context) (*RateLimitResponse, error) {
	fullUrl := fmt.Sprintf("%s/rate_limit", c.Config.GithubApi.ApiUrl)

	status := &RateLimitResponse{}
	if _, err := c.getJSON(ctx, fullUrl, status); err != nil {
		return nil, err
	}

	return status, nil
}
