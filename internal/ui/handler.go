package ui

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/thep200/gitshare/api"
	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/pkg/log"
)

// Handler manages HTTP requests for the web view
type Handler struct {
	Logger   log.Logger
	Config   *cfg.Config
	GitShare *api.GitShareAPI
}

// NewHandler creates a new view handler
func NewHandler(logger log.Logger, config *cfg.Config, gitshare *api.GitShareAPI) (*Handler, error) {
	return &Handler{
		Logger:   logger,
		Config:   config,
		GitShare: gitshare,
	}, nil
}

// RegisterRoutes sets up the HTTP routes for the view
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/profile", h.getProfile)
	mux.HandleFunc("/api/repos", h.getRepos)
	mux.HandleFunc("/api/followers", h.getFollowers)
	mux.HandleFunc("/api/following", h.getFollowing)
	mux.HandleFunc("/api/issues", h.getIssues)
	mux.HandleFunc("/api/languages", h.getLanguages)
	mux.HandleFunc("/api/rate_limit", h.getRateLimit)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error(r.Context(), "Failed to encode JSON response: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

//
func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	profile, err := h.GitShare.Profile(username)
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch profile: %v", err)
		http.Error(w, "Failed to fetch profile", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, r, profile)
}

//
func (h *Handler) getRepos(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	repoPage, err := h.GitShare.Repositories(username, pageParam(r))
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch repositories: %v", err)
		http.Error(w, "Failed to fetch repositories", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, r, repoPage)
}

//
func (h *Handler) getFollowers(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	userPage, err := h.GitShare.Followers(username, pageParam(r))
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch followers: %v", err)
		http.Error(w, "Failed to fetch followers", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, r, userPage)
}

//
func (h *Handler) getFollowing(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	userPage, err := h.GitShare.Following(username, pageParam(r))
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch following: %v", err)
		http.Error(w, "Failed to fetch following", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, r, userPage)
}

//
func (h *Handler) getIssues(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	repo := r.URL.Query().Get("repo")
	if owner == "" || repo == "" {
		http.Error(w, "owner and repo are required", http.StatusBadRequest)
		return
	}

	issuePage, err := h.GitShare.Issues(owner, repo, pageParam(r))
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch issues: %v", err)
		http.Error(w, "Failed to fetch issues", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, r, issuePage)
}

// getLanguages phục vụ cả một user (?username=) lẫn cả danh sách (?usernames=a,b,c).
// Danh sách đi qua request queue nên burst lớn vẫn bị giới hạn đồng thời.
func (h *Handler) getLanguages(w http.ResponseWriter, r *http.Request) {
	if usernames := r.URL.Query().Get("usernames"); usernames != "" {
		names := strings.Split(usernames, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		h.writeJSON(w, r, h.GitShare.EnrichUsers(names))
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, r, h.GitShare.TopLanguages(username))
}

//
func (h *Handler) getRateLimit(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.GitShare.RateLimitStatus())
}
