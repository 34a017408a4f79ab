// Gói pagination phân tích header Link của GitHub API để lấy tổng số trang
// cho điều hướng Previous/Next.

package pagination

import (
	"regexp"
	"strconv"
	"strings"
)

var pagePattern = regexp.MustCompile(`[?&]page=(\d+)`)

// TotalPages đọc số trang từ entry rel="last" của header Link.
// Không có rel="last" nghĩa là trang hiện tại là trang duy nhất/cuối cùng,
// trả về 1. Giá trị page không hợp lệ bị bỏ qua.
func TotalPages(linkHeader string) int {
	lastPage := 1

	for _, link := range strings.Split(linkHeader, ",") {
		if !strings.Contains(link, `rel="last"`) {
			continue
		}
		match := pagePattern.FindStringSubmatch(link)
		if len(match) > 1 {
			if page, err := strconv.Atoi(match[1]); err == nil {
				lastPage = page
			}
		}
	}

	return lastPage
}

// Pages là trạng thái điều hướng suy ra cho một trang kết quả
type Pages struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Resolve dựng trạng thái điều hướng từ trang hiện tại và header Link
func Resolve(current int, linkHeader string) Pages {
	if current < 1 {
		current = 1
	}
	return Pages{
		Current: current,
		Total:   TotalPages(linkHeader),
	}
}

// HasPrevious cho biết nút Previous có được bật hay không
func (p Pages) HasPrevious() bool {
	return p.Current > 1
}

// HasNext cho biết nút Next có được bật hay không
func (p Pages) HasNext() bool {
	return p.Current < p.Total
}
