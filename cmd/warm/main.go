// Warm điền trước cache ngôn ngữ cho một danh sách username.
// Mỗi username là một task trong request queue nên dù danh sách dài bao
// nhiêu cũng chỉ có tối đa K request GitHub chạy đồng thời.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/thep200/gitshare/api"
	applog "github.com/thep200/gitshare/pkg/log"
)

func main() {
	users := flag.String("users", "", "Comma separated list of GitHub usernames to warm")
	flag.Parse()

	if *users == "" {
		fmt.Println("Please specify usernames: -users=alice,bob,carol")
		os.Exit(1)
	}

	ctx := context.Background()
	logger, _ := applog.NewCslLogger()

	gitshare := api.NewGitShareAPI()
	if err := gitshare.Initialize(ctx); err != nil {
		logger.Error(ctx, "Failed to initialize gitshare: %v", err)
		os.Exit(1)
	}
	defer gitshare.Shutdown()

	usernames := strings.Split(*users, ",")
	for i := range usernames {
		usernames[i] = strings.TrimSpace(usernames[i])
	}

	logger.Info(ctx, "Warming language cache for %d users", len(usernames))
	result := gitshare.EnrichUsers(usernames)

	warmed := 0
	for username, stats := range result {
		if len(stats) > 0 {
			warmed++
		}
		logger.Info(ctx, "%s: %d languages", username, len(stats))
	}

	logger.Info(ctx, "Done, %d/%d users have cached languages", warmed, len(usernames))
}
