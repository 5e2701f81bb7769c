package spreadsheet

import (
	"context"

	"google.golang.org/api/sheets/v4"
)

const (
	dimensionRows    = "ROWS"
	dimensionColumns = "COLUMNS"
)

// Insertion is the batch request computed for a single-dimension insert.
type Insertion struct {
	Start             int
	End               int
	InheritFromBefore bool
}

// ColumnInsertion computes where a column lands for referenceIndex and the
// right flag. Unlike rows, right=1 does not advance the start index.
func ColumnInsertion(referenceIndex, right int) Insertion {
	start := referenceIndex
	return Insertion{
		Start:             start,
		End:               start + 1,
		InheritFromBefore: !(right == 0 && start == 0),
	}
}

// RowInsertion computes where a row lands for referenceIndex and the below flag.
func RowInsertion(referenceIndex, below int) Insertion {
	start := referenceIndex
	if below == 1 {
		start = referenceIndex + 1
	}
	return Insertion{
		Start:             start,
		End:               start + 1,
		InheritFromBefore: !(below == 0 && start == 0),
	}
}

func dimensionRange(tabID int64, dimension string, start, end int) *sheets.DimensionRange {
	return &sheets.DimensionRange{
		SheetId:         tabID,
		Dimension:       dimension,
		StartIndex:      int64(start),
		EndIndex:        int64(end),
		ForceSendFields: []string{"SheetId", "StartIndex"},
	}
}

func insertRequest(tabID int64, dimension string, ins Insertion) *sheets.Request {
	return &sheets.Request{InsertDimension: &sheets.InsertDimensionRequest{
		Range:             dimensionRange(tabID, dimension, ins.Start, ins.End),
		InheritFromBefore: ins.InheritFromBefore,
		ForceSendFields:   []string{"InheritFromBefore"},
	}}
}

// InsertColumn inserts one column next to referenceIndex.
func (s *Service) InsertColumn(ctx context.Context, name string, referenceIndex, right int) error {
	const op = "insert column"
	if err := checkFlag(op, "right", right); err != nil {
		return err
	}
	remote, tab, _, err := s.lookup(ctx, op, name)
	if err != nil {
		return err
	}

	ins := ColumnInsertion(referenceIndex, right)
	s.logger.Debug("insert column", "tab", name, "column_count", tab.ColumnCount, "start", ins.Start, "end", ins.End, "inherit_from_before", ins.InheritFromBefore)
	if ins.Start < 0 || ins.Start > tab.ColumnCount {
		return invalidArgument(op, "startIndex %d is out of bounds for sheet '%s' with %d columns", ins.Start, name, tab.ColumnCount)
	}

	if err := s.batch(ctx, remote, op, insertRequest(tab.ID, dimensionColumns, ins)); err != nil {
		return err
	}
	s.logger.Info("inserted column", "tab", name, "start", ins.Start, "right", right, "spreadsheet_id", s.spreadsheetID)
	return nil
}

// DeleteColumn removes the single column at startIndex. Bounds are left to
// the remote service.
func (s *Service) DeleteColumn(ctx context.Context, name string, startIndex int) error {
	const op = "delete column"
	remote, tab, _, err := s.lookup(ctx, op, name)
	if err != nil {
		return err
	}
	req := &sheets.Request{DeleteDimension: &sheets.DeleteDimensionRequest{
		Range: dimensionRange(tab.ID, dimensionColumns, startIndex, startIndex+1),
	}}
	if err := s.batch(ctx, remote, op, req); err != nil {
		return err
	}
	s.logger.Info("deleted column", "tab", name, "start", startIndex, "spreadsheet_id", s.spreadsheetID)
	return nil
}

// InsertRow inserts one row above (below=0) or below (below=1) referenceIndex.
func (s *Service) InsertRow(ctx context.Context, name string, referenceIndex, below int) error {
	const op = "insert row"
	if err := checkFlag(op, "below", below); err != nil {
		return err
	}
	remote, tab, _, err := s.lookup(ctx, op, name)
	if err != nil {
		return err
	}

	ins := RowInsertion(referenceIndex, below)
	s.logger.Debug("insert row", "tab", name, "row_count", tab.RowCount, "start", ins.Start, "end", ins.End, "inherit_from_before", ins.InheritFromBefore)
	if ins.Start < 0 || ins.Start > tab.RowCount {
		return invalidArgument(op, "insertIndex %d is out of bounds for sheet '%s' with %d rows", ins.Start, name, tab.RowCount)
	}

	if err := s.batch(ctx, remote, op, insertRequest(tab.ID, dimensionRows, ins)); err != nil {
		return err
	}
	s.logger.Info("inserted row", "tab", name, "start", ins.Start, "below", below, "spreadsheet_id", s.spreadsheetID)
	return nil
}

// DeleteRows removes numRows rows starting at startIndex.
func (s *Service) DeleteRows(ctx context.Context, name string, startIndex, numRows int) error {
	const op = "delete rows"
	if numRows < 1 {
		return invalidArgument(op, "numRows must be at least 1, got %d", numRows)
	}
	remote, tab, _, err := s.lookup(ctx, op, name)
	if err != nil {
		return err
	}

	s.logger.Debug("delete rows", "tab", name, "row_count", tab.RowCount, "start", startIndex, "count", numRows)
	// numRows is compared against the remaining rows so the sum cannot overflow.
	if startIndex < 0 || startIndex > tab.RowCount || numRows > tab.RowCount-startIndex {
		return invalidArgument(op, "%d rows from row %d is out of bounds for sheet '%s' with %d rows", numRows, startIndex, name, tab.RowCount)
	}
	end := startIndex + numRows

	req := &sheets.Request{DeleteDimension: &sheets.DeleteDimensionRequest{
		Range: dimensionRange(tab.ID, dimensionRows, startIndex, end),
	}}
	if err := s.batch(ctx, remote, op, req); err != nil {
		return err
	}
	s.logger.Info("deleted rows", "tab", name, "start", startIndex, "count", numRows, "spreadsheet_id", s.spreadsheetID)
	return nil
}
