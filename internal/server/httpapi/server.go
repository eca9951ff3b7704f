// Package httpapi exposes the JSON API consumed by the web frontend:
// account signup and login, session status, ID verification, and income
// proof generation. Authenticated routes resolve a bearer token to a live
// session before the handler runs.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/proofpay/internal/common"
	"github.com/dmitrijs2005/proofpay/internal/logging"
	"github.com/dmitrijs2005/proofpay/internal/server/accounts"
	"github.com/dmitrijs2005/proofpay/internal/server/auth"
	"github.com/dmitrijs2005/proofpay/internal/server/extraction"
	"github.com/dmitrijs2005/proofpay/internal/server/proofs"
	"github.com/dmitrijs2005/proofpay/internal/server/sessions"
)

// maxUploadSize bounds request bodies; uploaded documents are scans or PDFs.
const maxUploadSize = 10 << 20

// DocumentArchive stores uploaded documents for audit retrieval.
type DocumentArchive interface {
	Store(ctx context.Context, doc []byte, contentType string) (string, error)
}

// Server is the HTTP API server.
type Server struct {
	accounts  *accounts.Service
	proofs    *proofs.Service
	extractor extraction.Extractor
	archive   DocumentArchive
	registry  *sessions.Registry

	sessionSecret []byte
	tokenValidity time.Duration

	logger logging.Logger
	server *http.Server
}

// NewServer wires the API server. archive may be nil to disable document
// archival.
func NewServer(addr string, acc *accounts.Service, prf *proofs.Service, ext extraction.Extractor,
	archive DocumentArchive, registry *sessions.Registry,
	sessionSecret string, tokenValidity time.Duration, logger logging.Logger) *Server {

	s := &Server{
		accounts:      acc,
		proofs:        prf,
		extractor:     ext,
		archive:       archive,
		registry:      registry,
		sessionSecret: []byte(sessionSecret),
		tokenValidity: tokenValidity,
		logger:        logger.With("module", "httpapi"),
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", s.handlePing)
	mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("POST /api/auth/logout", s.withSession(s.handleLogout))
	mux.Handle("GET /api/auth/session", s.withSession(s.handleSession))
	mux.Handle("POST /api/proof/verify-id", s.withSession(s.handleVerifyID))
	mux.Handle("POST /api/proof/generate", s.withSession(s.handleGenerate))

	return maxBodySize(mux, maxUploadSize)
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info(context.Background(), "http api listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func maxBodySize(next http.Handler, limit int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}

type ctxKey int

const (
	ctxSessionID ctxKey = iota
	ctxSession
)

// withSession resolves the bearer token to a live session and stores both the
// session identifier and the session on the request context.
func (s *Server) withSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		sessionID, err := auth.GetSessionIDFromToken(token, s.sessionSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		sess, ok := s.registry.Get(sessionID)
		if !ok {
			writeError(w, http.StatusUnauthorized, "session expired")
			return
		}

		ctx := context.WithValue(r.Context(), ctxSessionID, sessionID)
		ctx = context.WithValue(ctx, ctxSession, &sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		return "", false
	}
	return h[len(prefix):], true
}

func sessionFromContext(ctx context.Context) (string, *sessions.Session) {
	sessionID, _ := ctx.Value(ctxSessionID).(string)
	sess, _ := ctx.Value(ctxSession).(*sessions.Session)
	return sessionID, sess
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

// writeServiceError maps service errors onto HTTP statuses. Credential
// failures always surface the same generic message.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorInvalidCredentials):
		writeError(w, http.StatusUnauthorized, common.ErrorInvalidCredentials.Error())
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, "account already exists")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
