package spreadsheet

import (
	"context"

	"google.golang.org/api/sheets/v4"
)

// ReadData returns every value in the tab. A tab without values yields nil.
func (s *Service) ReadData(ctx context.Context, name string) ([][]any, error) {
	const op = "read data"
	if name == "" {
		return nil, invalidArgument(op, "sheet name must not be empty")
	}
	remote, err := s.session(ctx, op)
	if err != nil {
		return nil, err
	}
	vr, err := remote.GetValues(ctx, s.spreadsheetID, name)
	if err != nil {
		return nil, s.remoteFailure(op, err)
	}
	s.logger.Info("read tab data", "tab", name, "spreadsheet_id", s.spreadsheetID)
	if vr == nil {
		return nil, nil
	}
	return vr.Values, nil
}

// CellRange returns the A1 range "<tab>!<cell>" addressed by UpdateCell.
func CellRange(name string, row, col int) string {
	return name + "!" + CellAddress(row, col)
}

// UpdateCell writes value verbatim into a single cell.
func (s *Service) UpdateCell(ctx context.Context, name string, row, col int, value string) error {
	const op = "update cell"
	if name == "" {
		return invalidArgument(op, "sheet name must not be empty")
	}
	if row < 0 || col < 0 {
		return invalidArgument(op, "cell (%d, %d) is out of bounds", row, col)
	}
	s.logger.Debug("update cell", "tab", name, "row", row, "col", col)

	remote, err := s.session(ctx, op)
	if err != nil {
		return err
	}
	rng := CellRange(name, row, col)
	body := &sheets.ValueRange{Values: [][]any{{value}}}
	if err := remote.UpdateValues(ctx, s.spreadsheetID, rng, body, ValueInputRaw); err != nil {
		return s.remoteFailure(op, err)
	}
	s.logger.Info("updated cell", "range", rng, "spreadsheet_id", s.spreadsheetID)
	return nil
}
