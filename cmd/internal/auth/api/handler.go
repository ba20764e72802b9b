package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"courtside/cmd/credential"
	"courtside/cmd/internal/auth/session"
)

// Login and refresh report every unauthorized cause with the same body, so a
// caller cannot tell an unknown username from a bad password or a rotated
// secret from a forged one.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidRefresh     = "Invalid or expired refresh token"
	msgInvalidAccess      = "Invalid or missing access token"
	msgUnavailable        = "Service temporarily unavailable"
	msgInternal           = "Internal server error"
)

// Handler wires the HTTP auth endpoints to the session service.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	sessions *session.Service
	metrics  *Metrics
}

// NewHandler constructs an auth Handler. metrics may be nil.
func NewHandler(log *slog.Logger, cfg Config, sessions *session.Service, metrics *Metrics) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if sessions == nil {
		return nil, errors.New("authapi: nil session service")
	}
	return &Handler{
		log:      log,
		cfg:      cfg,
		sessions: sessions,
		metrics:  metrics,
	}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/refresh", h.handleRefresh)
	mux.HandleFunc("/auth/logout", h.handleLogout)
}

// ---- handlers ----

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	pair, err := h.sessions.Authenticate(ctx, now, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrUnauthorized):
			h.metrics.login(outcomeUnauthorized)
			writeMessage(w, http.StatusUnauthorized, msgInvalidCredentials)
		case errors.Is(err, credential.ErrUnavailable):
			h.metrics.storeUnavailable()
			h.log.Error("auth.login.unavailable", "err", err)
			writeMessage(w, http.StatusServiceUnavailable, msgUnavailable)
		default:
			h.log.Error("auth.login.fail", "err", err)
			writeMessage(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	h.metrics.login(outcomeSuccess)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req refreshRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		writeMessage(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	pair, err := h.sessions.Refresh(ctx, now, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrUnauthorized):
			h.metrics.refresh(outcomeUnauthorized)
			writeMessage(w, http.StatusUnauthorized, msgInvalidRefresh)
		case errors.Is(err, credential.ErrUnavailable):
			h.metrics.storeUnavailable()
			h.log.Error("auth.refresh.unavailable", "err", err)
			writeMessage(w, http.StatusServiceUnavailable, msgUnavailable)
		default:
			h.log.Error("auth.refresh.fail", "err", err)
			writeMessage(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	h.metrics.refresh(outcomeSuccess)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tok := bearerToken(r)
	if tok == "" {
		writeMessage(w, http.StatusUnauthorized, msgInvalidAccess)
		return
	}
	claims, err := h.sessions.VerifyAccess(tok, time.Now().UTC())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, msgInvalidAccess)
		return
	}

	if err := h.sessions.Revoke(r.Context(), claims.UserID); err != nil {
		switch {
		case errors.Is(err, credential.ErrUnavailable):
			h.metrics.storeUnavailable()
			h.log.Error("auth.logout.unavailable", "err", err)
			writeMessage(w, http.StatusServiceUnavailable, msgUnavailable)
		default:
			h.log.Error("auth.logout.fail", "err", err)
			writeMessage(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	h.metrics.revocation()
	w.WriteHeader(http.StatusNoContent)
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
