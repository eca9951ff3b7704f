package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/proofpay/internal/common"
	"github.com/dmitrijs2005/proofpay/internal/server/auth"
)

// generateSessionToken is a test seam.
var generateSessionToken = auth.GenerateSessionToken

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type signUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := s.accounts.SignUp(r.Context(), req.Email, req.Password, req.ConfirmPassword); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	sessionID := uuid.New().String()

	sess, err := s.accounts.Login(r.Context(), req.Email, req.Password, sessionID)
	if err != nil {
		// an unknown email is indistinguishable from a wrong password
		if errors.Is(err, common.ErrorNotFound) {
			err = common.ErrorInvalidCredentials
		}
		s.writeServiceError(w, r, err)
		return
	}

	token, err := generateSessionToken(sessionID, s.sessionSecret, s.tokenValidity)
	if err != nil {
		// the client never learns this sessionID, so the session and its
		// wallet must be released here
		if lerr := s.accounts.Logout(r.Context(), sessionID); lerr != nil {
			s.logger.Warn(r.Context(), "releasing session after token failure", "error", lerr.Error())
		}
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"email":   sess.Email,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionFromContext(r.Context())

	if err := s.accounts.Logout(r.Context(), sessionID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	_, sess := sessionFromContext(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"email":      sess.Email,
		"idVerified": sess.IDDOB != "",
	})
}
