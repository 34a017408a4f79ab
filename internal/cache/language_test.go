package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/gitshare/cfg"
	githubapi "github.com/thep200/gitshare/internal/github_api"
	"github.com/thep200/gitshare/internal/model"
	"github.com/thep200/gitshare/pkg/log"
)

type fakeStore struct {
	mu        sync.Mutex
	records   map[string]*model.UserLanguage
	upserts   int
	findErr   error
	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*model.UserLanguage)}
}

func (s *fakeStore) Find(ctx context.Context, username string) (*model.UserLanguage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.records[username], nil
}

func (s *fakeStore) Upsert(ctx context.Context, username string, stats []model.LanguageStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	encoded, _ := json.Marshal(stats)
	s.records[username] = &model.UserLanguage{
		Username:  username,
		Languages: string(encoded),
	}
	return nil
}

func (s *fakeStore) put(username string, stats []model.LanguageStat, updatedAt time.Time) {
	encoded, _ := json.Marshal(stats)
	s.mu.Lock()
	s.records[username] = &model.UserLanguage{
		Username:  username,
		Languages: string(encoded),
		UpdatedAt: updatedAt,
	}
	s.mu.Unlock()
}

func (s *fakeStore) upsertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

type fakeLister struct {
	mu    sync.Mutex
	repos []githubapi.RepoResponse
	err   error
	calls int
}

func (l *fakeLister) UserRepos(ctx context.Context, username string, perPage, page int) ([]githubapi.RepoResponse, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, "", l.err
	}
	return l.repos, "", nil
}

func (l *fakeLister) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type fakePauser struct {
	paused bool
}

func (p *fakePauser) Paused() bool {
	return p.paused
}

func reposOf(languages ...string) []githubapi.RepoResponse {
	repos := make([]githubapi.RepoResponse, 0, len(languages))
	for i, language := range languages {
		repos = append(repos, githubapi.RepoResponse{
			Id:       int64(i + 1),
			Name:     "repo",
			Language: language,
		})
	}
	return repos
}

func newTestCache(t *testing.T, store Store, github RepoLister, pauser Pauser, clock clockwork.Clock) *LanguageCache {
	t.Helper()
	logger, _ := log.NewMockLogger()
	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	require.NoError(t, err)

	c, err := NewLanguageCache(logger, config, store, github, pauser, nil, clock)
	require.NoError(t, err)
	return c
}

func TestFetchTalliesTopLanguages(t *testing.T) {
	store := newFakeStore()
	lister := &fakeLister{repos: reposOf(
		"JavaScript", "Python", "Go", "JavaScript", "Python",
		"JavaScript", "Go", "Python", "JavaScript", "Rust",
		"JavaScript", "Python", "Go", "Python",
	)}
	c := newTestCache(t, store, lister, &fakePauser{}, clockwork.NewFakeClock())

	stats := c.TopLanguages(context.Background(), "octocat")

	// JavaScript 5, Python 5, Go 3; Rust bị cắt khỏi top 3.
	// JavaScript đứng trước Python vì gặp trước dù bằng điểm.
	require.Len(t, stats, 3)
	assert.Equal(t, model.LanguageStat{Language: "JavaScript", Count: 5}, stats[0])
	assert.Equal(t, model.LanguageStat{Language: "Python", Count: 5}, stats[1])
	assert.Equal(t, model.LanguageStat{Language: "Go", Count: 3}, stats[2])
}

func TestMemoryHitSkipsNetwork(t *testing.T) {
	store := newFakeStore()
	lister := &fakeLister{repos: reposOf("Go", "Go", "Rust")}
	c := newTestCache(t, store, lister, &fakePauser{}, clockwork.NewFakeClock())

	first := c.TopLanguages(context.Background(), "octocat")
	second := c.TopLanguages(context.Background(), "octocat")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, lister.callCount())
	assert.Equal(t, 1, store.upsertCount())
}

func TestFreshStoreEntrySkipsNetworkAndPromotes(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	store := newFakeStore()
	cached := []model.LanguageStat{{Language: "Go", Count: 7}}
	store.put("octocat", cached, clock.Now().Add(-1*time.Hour))

	lister := &fakeLister{}
	c := newTestCache(t, store, lister, &fakePauser{}, clock)

	stats := c.TopLanguages(context.Background(), "octocat")
	assert.Equal(t, cached, stats)
	assert.Equal(t, 0, lister.callCount())

	// Lần hai phục vụ từ memory, không đọc lại store
	store.findErr = errors.New("db closed")
	stats = c.TopLanguages(context.Background(), "octocat")
	assert.Equal(t, cached, stats)
}

func TestExpiredStoreEntryTriggersRefetch(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	store := newFakeStore()
	store.put("octocat", []model.LanguageStat{{Language: "Ruby", Count: 9}}, clock.Now())

	lister := &fakeLister{repos: reposOf("Go", "Go")}
	c := newTestCache(t, store, lister, &fakePauser{}, clock)

	clock.Advance(25 * time.Hour)

	stats := c.TopLanguages(context.Background(), "octocat")
	require.Len(t, stats, 1)
	assert.Equal(t, "Go", stats[0].Language)
	assert.Equal(t, 1, lister.callCount())
	assert.Equal(t, 1, store.upsertCount())
}

func TestPausedMissReturnsEmptyWithoutNetwork(t *testing.T) {
	store := newFakeStore()
	lister := &fakeLister{repos: reposOf("Go")}
	c := newTestCache(t, store, lister, &fakePauser{paused: true}, clockwork.NewFakeClock())

	stats := c.TopLanguages(context.Background(), "octocat")

	assert.Empty(t, stats)
	assert.Equal(t, 0, lister.callCount())
}

func TestPausedStillServesFreshStoreEntry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	store := newFakeStore()
	cached := []model.LanguageStat{{Language: "Go", Count: 2}}
	store.put("octocat", cached, clock.Now())

	c := newTestCache(t, store, &fakeLister{}, &fakePauser{paused: true}, clock)

	stats := c.TopLanguages(context.Background(), "octocat")
	assert.Equal(t, cached, stats)
}

func TestNetworkErrorReturnsEmpty(t *testing.T) {
	store := newFakeStore()
	lister := &fakeLister{err: errors.New("connection refused")}
	c := newTestCache(t, store, lister, &fakePauser{}, clockwork.NewFakeClock())

	stats := c.TopLanguages(context.Background(), "octocat")
	assert.Empty(t, stats)
	assert.Equal(t, 0, store.upsertCount())
}

func TestStoreWriteFailureStillServesResult(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = errors.New("disk full")
	lister := &fakeLister{repos: reposOf("Go", "Go")}
	c := newTestCache(t, store, lister, &fakePauser{}, clockwork.NewFakeClock())

	stats := c.TopLanguages(context.Background(), "octocat")
	require.Len(t, stats, 1)
	assert.Equal(t, "Go", stats[0].Language)
}

func TestReposWithoutLanguageAreSkipped(t *testing.T) {
	store := newFakeStore()
	lister := &fakeLister{repos: reposOf("", "Go", "", "Go", "")}
	c := newTestCache(t, store, lister, &fakePauser{}, clockwork.NewFakeClock())

	stats := c.TopLanguages(context.Background(), "octocat")
	require.Len(t, stats, 1)
	assert.Equal(t, model.LanguageStat{Language: "Go", Count: 2}, stats[0])
}

func TestConcurrentMissesCoalesce(t *testing.T) {
	store := newFakeStore()
	lister := &fakeLister{repos: reposOf("Go")}
	c := newTestCache(t, store, lister, &fakePauser{}, clockwork.NewFakeClock())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats := c.TopLanguages(context.Background(), "octocat")
			assert.Len(t, stats, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, lister.callCount())
}

func TestClearMemoryKeepsDurableTier(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	store := newFakeStore()
	lister := &fakeLister{repos: reposOf("Go")}
	c := newTestCache(t, store, lister, &fakePauser{}, clock)

	c.TopLanguages(context.Background(), "octocat")
	require.Equal(t, 1, lister.callCount())

	c.ClearMemory()
	store.put("octocat", []model.LanguageStat{{Language: "Go", Count: 1}}, clock.Now())

	// Sau khi xóa memory vẫn đọc được từ store, không gọi mạng lại
	stats := c.TopLanguages(context.Background(), "octocat")
	assert.Len(t, stats, 1)
	assert.Equal(t, 1, lister.callCount())
}
