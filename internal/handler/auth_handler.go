package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/gridfire/api/internal/auth"
	"github.com/freeeve/gridfire/api/internal/repository"
)

// AuthHandler handles credential signup, signin, and token refresh.
type AuthHandler struct {
	jwtMgr   *auth.JWTManager
	userRepo repository.UserRepository
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(jwtMgr *auth.JWTManager, userRepo repository.UserRepository) *AuthHandler {
	return &AuthHandler{jwtMgr: jwtMgr, userRepo: userRepo}
}

type credentialsRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Handle = strings.TrimSpace(req.Handle)
	if len(req.Handle) < 3 || len(req.Handle) > 32 {
		writeError(w, http.StatusBadRequest, "handle must be 3-32 characters")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if _, err := h.userRepo.FindByHandle(r.Context(), req.Handle); err == nil {
		writeError(w, http.StatusConflict, "handle already taken")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to check handle")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	user, err := h.userRepo.Create(r.Context(), req.Handle, hash)
	if err != nil {
		log.Error().Err(err).Str("handle", req.Handle).Msg("Failed to create user")
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	tokens, err := h.jwtMgr.GenerateTokenPair(user.ID, user.Handle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	writeJSON(w, http.StatusCreated, tokens)
}

// Signin handles POST /auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userRepo.FindByHandle(r.Context(), req.Handle)
	if err != nil {
		// Same response for unknown handle and bad password.
		writeError(w, http.StatusUnauthorized, "bad credentials")
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "bad credentials")
		return
	}

	tokens, err := h.jwtMgr.GenerateTokenPair(user.ID, user.Handle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// RefreshToken handles POST /auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, err := h.jwtMgr.ValidateToken(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	tokens, err := h.jwtMgr.GenerateTokenPair(claims.UserID, claims.Handle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}
