package gsheets

import (
	"context"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/ryanbastic/go-sheetdesk/internal/metrics"
)

const metricsService = "sheets"

// Remote adapts a *sheets.Service to spreadsheet.Remote.
type Remote struct {
	svc *sheets.Service
}

// NewRemote wraps an authenticated sheets client.
func NewRemote(svc *sheets.Service) *Remote {
	return &Remote{svc: svc}
}

// GetSpreadsheet fetches metadata only; cell data is never requested.
func (r *Remote) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*sheets.Spreadsheet, error) {
	start := time.Now()
	ss, err := r.svc.Spreadsheets.Get(spreadsheetID).IncludeGridData(false).Context(ctx).Do()
	metrics.ObserveRemote(metricsService, "get_spreadsheet", start, err)
	return ss, err
}

func (r *Remote) GetValues(ctx context.Context, spreadsheetID, rng string) (*sheets.ValueRange, error) {
	start := time.Now()
	vr, err := r.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	metrics.ObserveRemote(metricsService, "get_values", start, err)
	return vr, err
}

func (r *Remote) BatchUpdate(ctx context.Context, spreadsheetID string, req *sheets.BatchUpdateSpreadsheetRequest) error {
	start := time.Now()
	_, err := r.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	metrics.ObserveRemote(metricsService, "batch_update", start, err)
	return err
}

func (r *Remote) UpdateValues(ctx context.Context, spreadsheetID, rng string, values *sheets.ValueRange, inputOption string) error {
	start := time.Now()
	_, err := r.svc.Spreadsheets.Values.Update(spreadsheetID, rng, values).
		ValueInputOption(inputOption).
		Context(ctx).
		Do()
	metrics.ObserveRemote(metricsService, "update_values", start, err)
	return err
}
