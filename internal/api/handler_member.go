package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ryanbastic/go-sheetdesk/internal/auth"
	"github.com/ryanbastic/go-sheetdesk/internal/storage"
)

// MemberFinder looks up member records. *storage.PostgresStore implements it.
type MemberFinder interface {
	FindByAppIDAndEmail(ctx context.Context, appID, email string) (*storage.Member, error)
}

// MemberHandler serves the /sw pages gated on member records.
type MemberHandler struct {
	members   MemberFinder
	sessions  *auth.SessionStore
	views     *Views
	urlPrefix string
	logger    *slog.Logger
}

// NewMemberHandler creates a MemberHandler. members may be nil when no member
// database is configured; every lookup then reports the email as not allowed.
func NewMemberHandler(members MemberFinder, sessions *auth.SessionStore, views *Views, urlPrefix string, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{
		members:   members,
		sessions:  sessions,
		views:     views,
		urlPrefix: urlPrefix,
		logger:    logger,
	}
}

type mainPage struct {
	Msg     string
	Email   string
	SheetID string
}

func (h *MemberHandler) mainView() string {
	return h.urlPrefix + "main"
}

// Main renders the landing page of the /sw area.
func (h *MemberHandler) Main(w http.ResponseWriter, r *http.Request) {
	var page mainPage
	if sess, ok := h.sessions.FromRequest(r); ok {
		page.Email = sess.Email
	}
	h.render(w, page)
}

// Typo sends an allowed member to their typo document.
func (h *MemberHandler) Typo(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.FromRequest(r)
	if !ok {
		http.Redirect(w, r, "/sw", http.StatusFound)
		return
	}

	member, err := h.find(r.Context(), sess.Email)
	switch {
	case err == nil:
		http.Redirect(w, r, "/typo/v1/"+url.PathEscape(member.DocID), http.StatusFound)
	case errors.Is(err, storage.ErrMemberNotFound):
		h.logger.Info("member not allowed", "app_id", storage.AppTypo, "email", sess.Email)
		h.render(w, mainPage{
			Msg:   fmt.Sprintf("%s is not an allowed email", sess.Email),
			Email: sess.Email,
		})
	default:
		h.logger.Error("failed to find member", "app_id", storage.AppTypo, "email", sess.Email, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func (h *MemberHandler) find(ctx context.Context, email string) (*storage.Member, error) {
	if h.members == nil {
		return nil, storage.ErrMemberNotFound
	}
	return h.members.FindByAppIDAndEmail(ctx, storage.AppTypo, email)
}

func (h *MemberHandler) render(w http.ResponseWriter, page mainPage) {
	if err := h.views.Render(w, http.StatusOK, h.mainView(), page); err != nil {
		h.logger.Error("failed to render view", "view", h.mainView(), "error", err)
		writeError(w, http.StatusInternalServerError, msgUnexpected)
	}
}
