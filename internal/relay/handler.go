package relay

import (
	"encoding/json"
	"net/http"

	"golang.org/x/oauth2"
)

type exchangeRequest struct {
	Code        string `json:"code"`
	ClientId    string `json:"client_id"`
	RedirectUri string `json:"redirect_uri"`
}

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

//
func (s *Server) getRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "running",
		"endpoints": map[string]string{
			"health":   "/health",
			"exchange": "/exchange-code",
		},
	})
}

//
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	clientId := "Not set"
	if s.Config.Relay.ClientId != "" {
		clientId = "Set"
	}
	clientSecret := "Not set"
	if s.Config.Relay.ClientSecret != "" {
		clientSecret = "Set"
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"config": map[string]string{
			"clientId":     clientId,
			"clientSecret": clientSecret,
		},
	})
}

// exchangeCode đổi authorization code lấy access token.
// Client id trong request phải khớp với cấu hình, nếu không trả về 401.
func (s *Server) exchangeCode(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	if req.ClientId != s.Config.Relay.ClientId {
		s.Logger.Warn(r.Context(), "Client ID mismatch on exchange request")
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid client ID"})
		return
	}

	conf := &oauth2.Config{
		ClientID:     s.Config.Relay.ClientId,
		ClientSecret: s.Config.Relay.ClientSecret,
		RedirectURL:  req.RedirectUri,
		Endpoint:     s.Endpoint,
	}

	token, err := conf.Exchange(r.Context(), req.Code)
	if err != nil {
		s.Logger.Error(r.Context(), "Token exchange error: %v", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to exchange code for token"})
		return
	}

	scope, _ := token.Extra("scope").(string)
	s.writeJSON(w, http.StatusOK, exchangeResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Scope:       scope,
	})
}
