// internal/api/handler/auth.go
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"papertrade/internal/api/types"
	"papertrade/internal/service"
	"papertrade/internal/session"
	"papertrade/internal/util"
)

// AuthHandler handles registration, login and logout, and guards private routes.
type AuthHandler struct {
	responder
	accounts service.AccountService
	sessions *session.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts service.AccountService, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger},
		accounts:  accounts,
		sessions:  sessions,
	}
}

// Register creates an account and logs the new user in.
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Register(r.Context(), r.FormValue("username"), r.FormValue("password"), r.FormValue("confirmation"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if err := h.startSession(w, r, user.ID); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.logger.Info("User registered", "user_id", user.ID)
	respondWithData(h.responder, w, http.StatusCreated, "Registered!", types.NewUserView(user))
}

// Login replaces any current session with one for the authenticated user.
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	clearSession(w, r)
	user, err := h.accounts.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if err := h.startSession(w, r, user.ID); err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithData(h.responder, w, http.StatusOK, "Logged in!", types.NewUserView(user))
}

// Logout clears the session cookie.
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSession(w, r)
	h.respondWithJSON(w, http.StatusOK, types.Response[struct{}]{Message: "Logged out!"})
}

// RequireSession resolves the session token into a user id on the request
// context, answering 401 when there is none or it does not verify.
func (h *AuthHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			h.respondWithError(w, util.ErrUnauthenticated)
			return
		}
		userID, err := h.sessions.Parse(token)
		if err != nil {
			h.respondWithError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithUserID(r.Context(), userID)))
	})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	token, err := h.sessions.Issue(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearSession(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionToken reads the token from the session cookie, falling back to a bearer header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(session.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
