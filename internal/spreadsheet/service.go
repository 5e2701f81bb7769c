package spreadsheet

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"
)

// Service translates tab, row, column and cell edits into batch updates
// against a single configured spreadsheet. It keeps no cached state: every
// operation re-reads the metadata it needs.
type Service struct {
	sessions      Sessions
	spreadsheetID string
	logger        *slog.Logger
}

// NewService creates a Service for spreadsheetID.
func NewService(sessions Sessions, spreadsheetID string, logger *slog.Logger) *Service {
	return &Service{sessions: sessions, spreadsheetID: spreadsheetID, logger: logger}
}

// SpreadsheetID returns the configured spreadsheet.
func (s *Service) SpreadsheetID() string { return s.spreadsheetID }

func (s *Service) session(ctx context.Context, op string) (Remote, error) {
	remote, err := s.sessions.Session(ctx)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			s.logger.Error("spreadsheet session unavailable", "op", op, "kind", e.Kind.String(), "error", err)
			return nil, e
		}
		s.logger.Error("spreadsheet session unavailable", "op", op, "error", err)
		return nil, NewError(KindTransport, op, "spreadsheet session unavailable", err)
	}
	return remote, nil
}

// remoteFailure logs the full remote error and returns its classified form.
func (s *Service) remoteFailure(op string, err error) *Error {
	e := wrap(op, err)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		s.logger.Error("spreadsheet service error",
			"op", op,
			"spreadsheet_id", s.spreadsheetID,
			"code", gerr.Code,
			"message", gerr.Message,
			"details", gerr.Details,
		)
		return e
	}
	s.logger.Error("spreadsheet call failed", "op", op, "spreadsheet_id", s.spreadsheetID, "kind", e.Kind.String(), "error", err)
	return e
}

func (s *Service) batch(ctx context.Context, remote Remote, op string, req *sheets.Request) error {
	body := &sheets.BatchUpdateSpreadsheetRequest{Requests: []*sheets.Request{req}}
	if err := remote.BatchUpdate(ctx, s.spreadsheetID, body); err != nil {
		return s.remoteFailure(op, err)
	}
	return nil
}

// ListTabs returns every tab in the remote service's order.
func (s *Service) ListTabs(ctx context.Context) ([]CustomTab, error) {
	_, ss, err := s.metadata(ctx, "list tabs")
	if err != nil {
		return nil, err
	}
	out := make([]CustomTab, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		out = append(out, CustomTab{ID: sh.Properties.SheetId, Title: sh.Properties.Title})
	}
	s.logger.Info("listed tabs", "spreadsheet_id", s.spreadsheetID, "count", len(out))
	return out, nil
}

// AddTab creates a tab titled name at the end of the spreadsheet.
func (s *Service) AddTab(ctx context.Context, name string) error {
	const op = "add tab"
	if name == "" {
		return invalidArgument(op, "sheet name must not be empty")
	}
	remote, err := s.session(ctx, op)
	if err != nil {
		return err
	}
	req := &sheets.Request{AddSheet: &sheets.AddSheetRequest{
		Properties: &sheets.SheetProperties{Title: name},
	}}
	if err := s.batch(ctx, remote, op, req); err != nil {
		return err
	}
	s.logger.Info("added tab", "tab", name, "spreadsheet_id", s.spreadsheetID)
	return nil
}

// RenameTab changes the title of oldName to newName. The tab id is preserved.
func (s *Service) RenameTab(ctx context.Context, oldName, newName string) error {
	const op = "rename tab"
	if newName == "" {
		return invalidArgument(op, "new sheet name must not be empty")
	}
	remote, tab, _, err := s.lookup(ctx, op, oldName)
	if err != nil {
		return err
	}
	req := &sheets.Request{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
		Properties: &sheets.SheetProperties{
			SheetId:         tab.ID,
			Title:           newName,
			ForceSendFields: []string{"SheetId"},
		},
		Fields: "title",
	}}
	if err := s.batch(ctx, remote, op, req); err != nil {
		return err
	}
	s.logger.Info("renamed tab", "from", oldName, "to", newName, "spreadsheet_id", s.spreadsheetID)
	return nil
}

// RemoveTab deletes the tab titled name.
func (s *Service) RemoveTab(ctx context.Context, name string) error {
	const op = "remove tab"
	remote, tab, _, err := s.lookup(ctx, op, name)
	if err != nil {
		return err
	}
	req := &sheets.Request{DeleteSheet: &sheets.DeleteSheetRequest{
		SheetId:         tab.ID,
		ForceSendFields: []string{"SheetId"},
	}}
	if err := s.batch(ctx, remote, op, req); err != nil {
		return err
	}
	s.logger.Info("removed tab", "tab", name, "spreadsheet_id", s.spreadsheetID)
	return nil
}

// MoveTab places the tab relative to targetIndex. With right=0 the tab goes
// to position targetIndex; with right=1 it goes immediately to the right of
// the tab at targetIndex. Indices are interpreted by the remote service
// before the tab is taken out of its current slot.
func (s *Service) MoveTab(ctx context.Context, name string, targetIndex, right int) error {
	const op = "move tab"
	if err := checkFlag(op, "right", right); err != nil {
		return err
	}
	remote, ss, err := s.metadata(ctx, op)
	if err != nil {
		return err
	}

	total := len(ss.Sheets) + right
	index := targetIndex + right
	if index < 0 || index >= total {
		return invalidArgument(op, "newIndex must be between 0 and %d", total-1)
	}
	tab, ok := findTab(ss, name)
	if !ok {
		return tabNotFound(op, name)
	}

	s.logger.Debug("move tab", "tab", name, "current", tab.Index, "new", index)
	if index == tab.Index {
		s.logger.Info("tab already in place", "tab", name, "index", index)
		return nil
	}

	req := &sheets.Request{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
		Properties: &sheets.SheetProperties{
			SheetId:         tab.ID,
			Index:           int64(index),
			ForceSendFields: []string{"SheetId", "Index"},
		},
		Fields: "index",
	}}
	if err := s.batch(ctx, remote, op, req); err != nil {
		return err
	}
	s.logger.Info("moved tab", "tab", name, "from", tab.Index, "to", index, "spreadsheet_id", s.spreadsheetID)
	return nil
}

// AddAndPlaceTab adds a tab and then moves it next to refIndex. The two
// steps are not atomic: if the move fails the new tab stays at the end.
func (s *Service) AddAndPlaceTab(ctx context.Context, name string, refIndex, right int) error {
	if err := checkFlag("add tab", "right", right); err != nil {
		return err
	}
	if err := s.AddTab(ctx, name); err != nil {
		return err
	}
	if err := s.MoveTab(ctx, name, refIndex, right); err != nil {
		s.logger.Warn("tab added but not placed", "tab", name, "ref_index", refIndex, "right", right, "error", err)
		return err
	}
	return nil
}

func checkFlag(op, field string, v int) error {
	if v != 0 && v != 1 {
		return invalidArgument(op, "%s must be 0 or 1, got %d", field, v)
	}
	return nil
}
