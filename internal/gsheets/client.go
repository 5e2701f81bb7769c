// Package gsheets connects the spreadsheet service to the Google Sheets API
// using service-account credentials.
package gsheets

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/ryanbastic/go-sheetdesk/internal/spreadsheet"
)

// Client lazily builds one authenticated Remote and shares it for the life
// of the process. Construction happens at most once at a time; a failed
// attempt leaves the client empty so the next caller retries.
type Client struct {
	credentialsPath string
	applicationName string
	opts            []option.ClientOption
	logger          *slog.Logger

	mu     sync.Mutex
	remote *Remote
}

// NewClient creates a Client reading service-account credentials from
// credentialsPath. Extra options are appended when the sheets client is built.
func NewClient(credentialsPath, applicationName string, logger *slog.Logger, opts ...option.ClientOption) *Client {
	return &Client{
		credentialsPath: credentialsPath,
		applicationName: applicationName,
		opts:            opts,
		logger:          logger,
	}
}

// Session implements spreadsheet.Sessions.
func (c *Client) Session(ctx context.Context) (spreadsheet.Remote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.remote != nil {
		return c.remote, nil
	}
	remote, err := c.build(ctx)
	if err != nil {
		return nil, err
	}
	c.remote = remote
	c.logger.Info("spreadsheet session established", "application", c.applicationName)
	return remote, nil
}

// Ping reports whether a session can be established.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Session(ctx)
	return err
}

func (c *Client) build(ctx context.Context) (*Remote, error) {
	const op = "open session"

	b, err := os.ReadFile(c.credentialsPath)
	if err != nil {
		c.logger.Error("failed to read credentials", "path", c.credentialsPath, "error", err)
		return nil, spreadsheet.NewError(spreadsheet.KindConfig, op, "credentials file unreadable", err)
	}
	cfg, err := google.JWTConfigFromJSON(b, sheets.SpreadsheetsScope)
	if err != nil {
		c.logger.Error("failed to parse credentials", "path", c.credentialsPath, "error", err)
		return nil, spreadsheet.NewError(spreadsheet.KindConfig, op, "credentials file malformed", err)
	}

	// The token source outlives the request that triggered construction.
	base := context.WithoutCancel(ctx)
	opts := append([]option.ClientOption{
		option.WithHTTPClient(cfg.Client(base)),
		option.WithUserAgent(c.applicationName),
	}, c.opts...)

	svc, err := sheets.NewService(base, opts...)
	if err != nil {
		c.logger.Error("failed to create sheets client", "error", err)
		return nil, spreadsheet.NewError(spreadsheet.KindTransport, op, "sheets client unavailable", err)
	}
	return NewRemote(svc), nil
}
