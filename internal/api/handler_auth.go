package api

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ryanbastic/go-sheetdesk/internal/auth"
	"golang.org/x/oauth2"
)

const (
	stateCookie    = "OAUTH_STATE"
	stateCookieTTL = 10 * time.Minute
	loginCallback  = "/login/oauth2/code/google"
)

// OAuthProvider runs the sign-in flow. *auth.Provider implements it.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Email(ctx context.Context, tok *oauth2.Token) (string, error)
	Revoke(ctx context.Context, tok *oauth2.Token)
}

// AuthHandler serves the home page, Google sign-in and sign-out.
type AuthHandler struct {
	provider OAuthProvider
	sessions *auth.SessionStore
	views    *Views
	logger   *slog.Logger
}

func NewAuthHandler(provider OAuthProvider, sessions *auth.SessionStore, views *Views, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{provider: provider, sessions: sessions, views: views, logger: logger}
}

type indexPage struct {
	Email string
}

// Index renders the home page, showing the signed-in email if any.
func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	var page indexPage
	if sess, ok := h.sessions.FromRequest(r); ok {
		page.Email = sess.Email
	}
	if err := h.views.Render(w, http.StatusOK, "index", page); err != nil {
		h.logger.Error("failed to render view", "view", "index", "error", err)
		writeError(w, http.StatusInternalServerError, msgUnexpected)
	}
}

// Login starts the authorization-code flow.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     loginCallback,
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes sign-in and starts a session.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(stateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(c.Value), []byte(state)) != 1 {
		h.logger.Warn("oauth state mismatch", "remote_addr", r.RemoteAddr)
		writeError(w, http.StatusBadRequest, "Sign-in request is invalid or has expired.")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: loginCallback, MaxAge: -1})

	if e := r.URL.Query().Get("error"); e != "" {
		h.logger.Info("sign-in declined", "error", e)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Required parameter 'code' is not present.")
		return
	}

	tok, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("failed to exchange authorization code", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	email, err := h.provider.Email(r.Context(), tok)
	if err != nil {
		h.logger.Error("failed to fetch user email", "error", err)
		h.provider.Revoke(context.WithoutCancel(r.Context()), tok)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	sess := h.sessions.Create(email, tok)
	auth.SetCookie(w, r, sess)
	h.logger.Info("signed in", "email", email)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Revoke invalidates the session's Google tokens, ends the session and
// returns to the home page.
func (h *AuthHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.sessions.FromRequest(r); ok {
		if h.provider != nil {
			h.provider.Revoke(r.Context(), sess.Token)
		}
		h.sessions.Delete(sess.ID)
		h.logger.Info("signed out", "email", sess.Email)
	}
	auth.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
