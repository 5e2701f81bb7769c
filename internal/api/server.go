package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ryanbastic/go-sheetdesk/internal/auth"
	"github.com/ryanbastic/go-sheetdesk/internal/metrics"
)

// ServerConfig carries the dependencies of the HTTP surface. Optional
// features are disabled by leaving their field nil.
type ServerConfig struct {
	Logger *slog.Logger
	Sheets Sheets
	Views  *Views

	Sessions *auth.SessionStore
	OAuth    OAuthProvider

	Pixel     ConversionSender
	Members   MemberFinder
	URLPrefix string

	Health map[string]Pinger
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(cfg ServerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	views := cfg.Views
	if views == nil {
		views = MustLoadViews()
	}
	sessions := cfg.Sessions
	if sessions == nil {
		sessions = auth.NewSessionStore(0)
	}

	mux := chi.NewRouter()

	mux.Use(RequestID)
	mux.Use(Logging(logger))
	mux.Use(Recovery(logger))
	mux.Use(metrics.Metrics)

	humaAPI := humachi.New(mux, huma.DefaultConfig("sheetdesk", "1.0.0"))

	authHandler := NewAuthHandler(cfg.OAuth, sessions, views, logger)
	mux.Get("/", authHandler.Index)
	mux.Get("/revoke", authHandler.Revoke)
	if cfg.OAuth != nil {
		mux.Get("/oauth2/authorization/google", authHandler.Login)
		mux.Get(loginCallback, authHandler.Callback)
	}

	if cfg.Sheets != nil {
		sheetHandler := NewSheetHandler(cfg.Sheets, views, logger)
		mux.Route("/sheet", func(r chi.Router) {
			r.Get("/", sheetHandler.List)
			r.Get("/data", sheetHandler.Data)
			r.Post("/move", sheetHandler.Move)
			r.Post("/rename", sheetHandler.Rename)
			r.Post("/remove", sheetHandler.Remove)
			r.Post("/add", sheetHandler.Add)
			r.Post("/column/add", sheetHandler.AddColumn)
			r.Post("/column/remove", sheetHandler.RemoveColumn)
			r.Post("/row/add", sheetHandler.AddRow)
			r.Post("/row/delete", sheetHandler.DeleteRows)
			r.Post("/updateCell", sheetHandler.UpdateCell)
		})
	}

	if cfg.Pixel != nil {
		pixelHandler := NewPixelHandler(cfg.Pixel, views, logger)
		mux.Get("/meta/pixel", pixelHandler.PixelPage)
		mux.Get("/sw/meta", pixelHandler.SwPage)
		registerPixelRoutes(humaAPI, pixelHandler)
	}

	memberHandler := NewMemberHandler(cfg.Members, sessions, views, cfg.URLPrefix, logger)
	mux.Get("/sw", memberHandler.Main)
	mux.Get("/sw/typo", memberHandler.Typo)

	healthHandler := NewHealthHandler(cfg.Health, logger)
	mux.Get("/livez", healthHandler.Livez)
	mux.Get("/readyz", healthHandler.Readyz)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}
