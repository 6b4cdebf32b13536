package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuskit/authcore/internal/common"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// handleLogin authenticates and returns the session payload. All expected
// login failures answer with the same generic body so the payload reveals
// nothing about which check failed; only the server log distinguishes an
// unknown user from a wrong password from an ineligible branch.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	res, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredential) || errors.Is(err, common.ErrAccessDenied) {
			writeError(w, http.StatusUnauthorized, "authentication failed")
			return
		}
		s.logger.Error(r.Context(), "login failed unexpectedly", "username", req.Username, "err", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// handleRegister always declines: passwords are owned by the directory.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "registration is not available"})
}

type meResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// handleMe resolves the caller's session to {id, username, role}: the one
// capability the surrounding subsystems consume from this core.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{ID: p.UserID, Username: p.Username, Role: p.Role})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := s.auth.GetProfile(r.Context(), username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error(r.Context(), "profile lookup failed", "username", username, "err", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

type avatarResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
}

// handleAvatar hands the caller a presigned PUT URL for a new avatar object
// and records the key on their mirror record.
func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := principalFrom(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	key, uploadURL, err := s.presign.GetPresignedPutURL(ctx, p.UserID)
	if err != nil {
		s.logger.Error(ctx, "avatar presign failed", "user_id", p.UserID, "err", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.avatars.SetAvatar(ctx, p.UserID, key); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// The session outlived the mirror record; treat as stale session.
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		s.logger.Error(ctx, "avatar key commit failed", "user_id", p.UserID, "err", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, avatarResponse{Key: key, UploadURL: uploadURL})
}
