// Gói dto cung cấp các đối tượng truyền dữ liệu cho dự án
// Chuyển đổi phản hồi api github thành một cấu trúc

package githubapi

type RepoResponse struct {
	Id              int64  `json:"id"`
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	Language        string `json:"language"`
	StargazersCount int64  `json:"stargazers_count"`
	ForksCount      int64  `json:"forks_count"`
	OpenIssuesCount int64  `json:"open_issues_count"`
	HtmlUrl         string `json:"html_url"`
	Description     string `json:"description"`
	// Có thể thêm nhiều trường tại đây
}

type UserResponse struct {
	Id          int64  `json:"id"`
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarUrl   string `json:"avatar_url"`
	Bio         string `json:"bio"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	PublicRepos int    `json:"public_repos"`
	HtmlUrl     string `json:"html_url"`
}

type IssueResponse struct {
	Id      int64        `json:"id"`
	Number  int          `json:"number"`
	Title   string       `json:"title"`
	State   string       `json:"state"`
	HtmlUrl string       `json:"html_url"`
	User    UserResponse `json:"user"`
}

type RateQuota struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

type RateLimitResponse struct {
	Rate RateQuota `json:"rate"`
}
