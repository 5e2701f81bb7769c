package spreadsheet

import (
	"context"

	"google.golang.org/api/sheets/v4"
)

// Grid extents assumed when the remote service omits grid properties.
const (
	DefaultRowCount    = 1000
	DefaultColumnCount = 100
)

// Tab is a named section of the spreadsheet.
type Tab struct {
	ID          int64
	Title       string
	Index       int
	RowCount    int
	ColumnCount int
}

// CustomTab is the projection of a Tab used for UI listings.
type CustomTab struct {
	ID    int64  `json:"sheetId"`
	Title string `json:"sheetName"`
}

func tabFromProperties(p *sheets.SheetProperties) Tab {
	t := Tab{
		ID:          p.SheetId,
		Title:       p.Title,
		Index:       int(p.Index),
		RowCount:    DefaultRowCount,
		ColumnCount: DefaultColumnCount,
	}
	if g := p.GridProperties; g != nil {
		if g.RowCount > 0 {
			t.RowCount = int(g.RowCount)
		}
		if g.ColumnCount > 0 {
			t.ColumnCount = int(g.ColumnCount)
		}
	}
	return t
}

// findTab returns the first tab whose title equals name exactly.
func findTab(ss *sheets.Spreadsheet, name string) (Tab, bool) {
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == name {
			return tabFromProperties(s.Properties), true
		}
	}
	return Tab{}, false
}

// metadata fetches spreadsheet metadata through the shared session.
func (s *Service) metadata(ctx context.Context, op string) (Remote, *sheets.Spreadsheet, error) {
	remote, err := s.session(ctx, op)
	if err != nil {
		return nil, nil, err
	}
	ss, err := remote.GetSpreadsheet(ctx, s.spreadsheetID)
	if err != nil {
		return nil, nil, s.remoteFailure(op, err)
	}
	return remote, ss, nil
}

// lookup fetches metadata and resolves name to a Tab.
func (s *Service) lookup(ctx context.Context, op, name string) (Remote, Tab, *sheets.Spreadsheet, error) {
	remote, ss, err := s.metadata(ctx, op)
	if err != nil {
		return nil, Tab{}, nil, err
	}
	tab, ok := findTab(ss, name)
	if !ok {
		return nil, Tab{}, nil, tabNotFound(op, name)
	}
	return remote, tab, ss, nil
}

// ResolveTabID returns the numeric id of the tab titled name.
func (s *Service) ResolveTabID(ctx context.Context, name string) (int64, error) {
	_, tab, _, err := s.lookup(ctx, "resolve tab", name)
	if err != nil {
		return 0, err
	}
	return tab.ID, nil
}

// ColumnCount returns the tab's grid column count, or DefaultColumnCount.
func (s *Service) ColumnCount(ctx context.Context, name string) (int, error) {
	_, tab, _, err := s.lookup(ctx, "column count", name)
	if err != nil {
		return 0, err
	}
	return tab.ColumnCount, nil
}

// RowCount returns the tab's grid row count, or DefaultRowCount.
func (s *Service) RowCount(ctx context.Context, name string) (int, error) {
	_, tab, _, err := s.lookup(ctx, "row count", name)
	if err != nil {
		return 0, err
	}
	return tab.RowCount, nil
}
