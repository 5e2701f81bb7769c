package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	googleRevokeURL   = "https://oauth2.googleapis.com/revoke"
)

// ProviderConfig describes an OAuth client. Zero endpoint fields fall back to Google's.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	Endpoint    oauth2.Endpoint
	UserInfoURL string
	RevokeURL   string
}

// Provider runs the authorization-code flow against Google.
type Provider struct {
	oauth       *oauth2.Config
	userInfoURL string
	revokeURL   string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewProvider creates a Provider requesting the openid, email and profile scopes.
func NewProvider(cfg ProviderConfig, logger *slog.Logger) *Provider {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	p := &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: cfg.UserInfoURL,
		revokeURL:   cfg.RevokeURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
	if p.userInfoURL == "" {
		p.userInfoURL = googleUserInfoURL
	}
	if p.revokeURL == "" {
		p.revokeURL = googleRevokeURL
	}
	return p
}

// AuthCodeURL returns the consent page URL. Offline access is requested so
// a refresh token is issued and can later be revoked.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for tokens.
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

// Email returns the verified address of the token's owner.
func (p *Provider) Email(ctx context.Context, tok *oauth2.Token) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return "", fmt.Errorf("create userinfo request: %w", err)
	}
	resp, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return "", fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("userinfo status %d: %s", resp.StatusCode, body)
	}

	var info struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Email == "" {
		return "", fmt.Errorf("userinfo carries no email")
	}
	return info.Email, nil
}

// Revoke invalidates every token held in tok. Failures are logged and
// otherwise ignored.
func (p *Provider) Revoke(ctx context.Context, tok *oauth2.Token) {
	if tok == nil {
		return
	}
	if tok.AccessToken != "" {
		p.revoke(ctx, tok.AccessToken)
	}
	if tok.RefreshToken != "" {
		p.revoke(ctx, tok.RefreshToken)
	}
}

func (p *Provider) revoke(ctx context.Context, token string) {
	endpoint := p.revokeURL + "?" + url.Values{"token": {token}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		p.logger.Error("create revoke request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("token revoke failed", "error", err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("token revoke rejected", "status", resp.StatusCode)
		return
	}
	p.logger.Info("token revoked")
}
