// Package spreadsheettest provides an in-memory stand-in for the hosted
// spreadsheet service.
package spreadsheettest

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"

	"github.com/ryanbastic/go-sheetdesk/internal/spreadsheet"
)

// Grid extents given to tabs created by the fake, matching the remote defaults.
const (
	NewTabRows    = 1000
	NewTabColumns = 26
)

// ValueWrite records one UpdateValues call.
type ValueWrite struct {
	Range       string
	InputOption string
	Values      [][]any
}

type tab struct {
	props  sheets.SheetProperties
	values [][]any
}

// Fake implements spreadsheet.Remote and spreadsheet.Sessions. Structural
// requests follow the remote service's semantics: a moved tab's index is
// interpreted before the tab leaves its slot, titles are unique and grid
// extents grow and shrink with inserted and deleted dimensions.
type Fake struct {
	mu            sync.Mutex
	spreadsheetID string
	tabs          []*tab
	nextID        int64
	err           error
	sessionErr    error

	requests      []*sheets.Request
	valueWrites   []ValueWrite
	metadataReads int
	sessions      int
}

// New creates a fake spreadsheet whose tabs carry the given titles in order,
// with ids 0, 1, 2, ...
func New(spreadsheetID string, titles ...string) *Fake {
	f := &Fake{spreadsheetID: spreadsheetID}
	for _, title := range titles {
		f.appendTab(title)
	}
	return f
}

func (f *Fake) appendTab(title string) *tab {
	t := &tab{props: sheets.SheetProperties{
		SheetId: f.nextID,
		Title:   title,
		Index:   int64(len(f.tabs)),
		GridProperties: &sheets.GridProperties{
			RowCount:    NewTabRows,
			ColumnCount: NewTabColumns,
		},
	}}
	f.nextID++
	f.tabs = append(f.tabs, t)
	return t
}

// SetGrid overrides a tab's extents. A zero value removes that property.
func (f *Fake) SetGrid(title string, rows, cols int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.find(title)
	if t == nil {
		panic("spreadsheettest: no tab " + title)
	}
	if rows == 0 && cols == 0 {
		t.props.GridProperties = nil
		return
	}
	t.props.GridProperties = &sheets.GridProperties{RowCount: rows, ColumnCount: cols}
}

// SetValues replaces the values held by a tab.
func (f *Fake) SetValues(title string, values [][]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.find(title)
	if t == nil {
		panic("spreadsheettest: no tab " + title)
	}
	t.values = values
}

// SetErr makes every remote call fail with err until cleared with nil.
func (f *Fake) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// SetSessionErr makes Session fail with err until cleared with nil.
func (f *Fake) SetSessionErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionErr = err
}

// Tabs returns a snapshot of the tab properties in order.
func (f *Fake) Tabs() []sheets.SheetProperties {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sheets.SheetProperties, len(f.tabs))
	for i, t := range f.tabs {
		out[i] = copyProps(t.props)
	}
	return out
}

// Tab returns the properties of the tab titled title.
func (f *Fake) Tab(title string) (sheets.SheetProperties, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.find(title)
	if t == nil {
		return sheets.SheetProperties{}, false
	}
	return copyProps(t.props), true
}

// Values returns a copy of a tab's values.
func (f *Fake) Values(title string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.find(title)
	if t == nil {
		return nil
	}
	return copyValues(t.values)
}

// Requests returns every batch request received, in order.
func (f *Fake) Requests() []*sheets.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

// ValueWrites returns every UpdateValues call received, in order.
func (f *Fake) ValueWrites() []ValueWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.valueWrites)
}

// MetadataReads returns how many times GetSpreadsheet was called.
func (f *Fake) MetadataReads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metadataReads
}

// Sessions returns how many sessions were handed out.
func (f *Fake) Sessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions
}

// Session implements spreadsheet.Sessions.
func (f *Fake) Session(ctx context.Context) (spreadsheet.Remote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.sessions++
	return f, nil
}

func (f *Fake) check(spreadsheetID string) error {
	if f.err != nil {
		return f.err
	}
	if spreadsheetID != f.spreadsheetID {
		return &googleapi.Error{Code: http.StatusNotFound, Message: "Requested entity was not found."}
	}
	return nil
}

// GetSpreadsheet implements spreadsheet.Remote.
func (f *Fake) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*sheets.Spreadsheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(spreadsheetID); err != nil {
		return nil, err
	}
	f.metadataReads++
	ss := &sheets.Spreadsheet{SpreadsheetId: f.spreadsheetID}
	for _, t := range f.tabs {
		p := copyProps(t.props)
		ss.Sheets = append(ss.Sheets, &sheets.Sheet{Properties: &p})
	}
	return ss, nil
}

// GetValues implements spreadsheet.Remote. Only whole-tab ranges are supported.
func (f *Fake) GetValues(ctx context.Context, spreadsheetID, rng string) (*sheets.ValueRange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(spreadsheetID); err != nil {
		return nil, err
	}
	t := f.find(rng)
	if t == nil {
		return nil, badRequest("Unable to parse range: %s", rng)
	}
	return &sheets.ValueRange{Range: rng, MajorDimension: "ROWS", Values: copyValues(t.values)}, nil
}

// UpdateValues implements spreadsheet.Remote for single-cell ranges.
func (f *Fake) UpdateValues(ctx context.Context, spreadsheetID, rng string, values *sheets.ValueRange, inputOption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(spreadsheetID); err != nil {
		return err
	}
	f.valueWrites = append(f.valueWrites, ValueWrite{Range: rng, InputOption: inputOption, Values: copyValues(values.Values)})

	name, cell, ok := strings.Cut(rng, "!")
	if !ok {
		return badRequest("Unable to parse range: %s", rng)
	}
	t := f.find(name)
	if t == nil {
		return badRequest("Unable to parse range: %s", rng)
	}
	row, col, err := parseCell(cell)
	if err != nil {
		return badRequest("Unable to parse range: %s", rng)
	}
	for len(t.values) <= row {
		t.values = append(t.values, nil)
	}
	for len(t.values[row]) <= col {
		t.values[row] = append(t.values[row], "")
	}
	if len(values.Values) > 0 && len(values.Values[0]) > 0 {
		t.values[row][col] = values.Values[0][0]
	}
	return nil
}

// BatchUpdate implements spreadsheet.Remote. Requests are applied in order;
// the first failing request aborts the rest.
func (f *Fake) BatchUpdate(ctx context.Context, spreadsheetID string, req *sheets.BatchUpdateSpreadsheetRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(spreadsheetID); err != nil {
		return err
	}
	for i, r := range req.Requests {
		f.requests = append(f.requests, r)
		if err := f.apply(r); err != nil {
			return badRequest("Invalid requests[%d]: %s", i, err)
		}
	}
	return nil
}

func (f *Fake) apply(r *sheets.Request) error {
	switch {
	case r.AddSheet != nil:
		title := r.AddSheet.Properties.Title
		if f.find(title) != nil {
			return fmt.Errorf("addSheet: A sheet with the name \"%s\" already exists. Please enter another name.", title)
		}
		f.appendTab(title)
	case r.UpdateSheetProperties != nil:
		return f.updateProperties(r.UpdateSheetProperties)
	case r.DeleteSheet != nil:
		i := f.indexOf(r.DeleteSheet.SheetId)
		if i < 0 {
			return fmt.Errorf("deleteSheet: No sheet with id: %d", r.DeleteSheet.SheetId)
		}
		if len(f.tabs) == 1 {
			return fmt.Errorf("deleteSheet: You can't remove all the sheets in a document.")
		}
		f.tabs = slices.Delete(f.tabs, i, i+1)
		f.reindex()
	case r.InsertDimension != nil:
		return f.insertDimension(r.InsertDimension.Range)
	case r.DeleteDimension != nil:
		return f.deleteDimension(r.DeleteDimension.Range)
	default:
		return fmt.Errorf("unsupported request")
	}
	return nil
}

func (f *Fake) updateProperties(u *sheets.UpdateSheetPropertiesRequest) error {
	i := f.indexOf(u.Properties.SheetId)
	if i < 0 {
		return fmt.Errorf("updateSheetProperties: No grid with id: %d", u.Properties.SheetId)
	}
	t := f.tabs[i]
	for _, field := range strings.Split(u.Fields, ",") {
		switch strings.TrimSpace(field) {
		case "title":
			if other := f.find(u.Properties.Title); other != nil && other != t {
				return fmt.Errorf("updateSheetProperties: A sheet with the name \"%s\" already exists. Please enter another name.", u.Properties.Title)
			}
			t.props.Title = u.Properties.Title
		case "index":
			to := int(u.Properties.Index)
			if to < 0 || to > len(f.tabs) {
				return fmt.Errorf("updateSheetProperties: index %d out of range", to)
			}
			if to > i {
				to--
			}
			f.tabs = slices.Delete(f.tabs, i, i+1)
			f.tabs = slices.Insert(f.tabs, to, t)
			f.reindex()
		default:
			return fmt.Errorf("updateSheetProperties: unsupported field %q", field)
		}
	}
	return nil
}

func (f *Fake) insertDimension(r *sheets.DimensionRange) error {
	i := f.indexOf(r.SheetId)
	if i < 0 {
		return fmt.Errorf("insertDimension: No grid with id: %d", r.SheetId)
	}
	t := f.tabs[i]
	g := f.grid(t)
	n := int(r.EndIndex - r.StartIndex)
	start := int(r.StartIndex)
	if n < 1 {
		return fmt.Errorf("insertDimension: empty range")
	}

	switch r.Dimension {
	case "ROWS":
		if start < 0 || int64(start) > g.RowCount {
			return fmt.Errorf("insertDimension: range out of grid limits")
		}
		g.RowCount += int64(n)
		if start < len(t.values) {
			t.values = slices.Insert(t.values, start, make([][]any, n)...)
		}
	case "COLUMNS":
		if start < 0 || int64(start) > g.ColumnCount {
			return fmt.Errorf("insertDimension: range out of grid limits")
		}
		g.ColumnCount += int64(n)
		for j, row := range t.values {
			if start < len(row) {
				t.values[j] = slices.Insert(row, start, make([]any, n)...)
			}
		}
	default:
		return fmt.Errorf("insertDimension: unknown dimension %q", r.Dimension)
	}
	return nil
}

func (f *Fake) deleteDimension(r *sheets.DimensionRange) error {
	i := f.indexOf(r.SheetId)
	if i < 0 {
		return fmt.Errorf("deleteDimension: No grid with id: %d", r.SheetId)
	}
	t := f.tabs[i]
	g := f.grid(t)
	start, end := int(r.StartIndex), int(r.EndIndex)
	if start < 0 || end <= start {
		return fmt.Errorf("deleteDimension: invalid range")
	}

	switch r.Dimension {
	case "ROWS":
		if int64(end) > g.RowCount {
			return fmt.Errorf("deleteDimension: range out of grid limits")
		}
		if int64(end-start) == g.RowCount {
			return fmt.Errorf("deleteDimension: You can't delete all the rows on the sheet.")
		}
		g.RowCount -= int64(end - start)
		if start < len(t.values) {
			t.values = slices.Delete(t.values, start, min(end, len(t.values)))
		}
	case "COLUMNS":
		if int64(end) > g.ColumnCount {
			return fmt.Errorf("deleteDimension: range out of grid limits")
		}
		if int64(end-start) == g.ColumnCount {
			return fmt.Errorf("deleteDimension: You can't delete all the columns on the sheet.")
		}
		g.ColumnCount -= int64(end - start)
		for j, row := range t.values {
			if start < len(row) {
				t.values[j] = slices.Delete(row, start, min(end, len(row)))
			}
		}
	default:
		return fmt.Errorf("deleteDimension: unknown dimension %q", r.Dimension)
	}
	return nil
}

// grid returns the tab's grid properties, materialising remote defaults.
func (f *Fake) grid(t *tab) *sheets.GridProperties {
	g := t.props.GridProperties
	if g == nil {
		g = &sheets.GridProperties{}
		t.props.GridProperties = g
	}
	if g.RowCount == 0 {
		g.RowCount = spreadsheet.DefaultRowCount
	}
	if g.ColumnCount == 0 {
		g.ColumnCount = spreadsheet.DefaultColumnCount
	}
	return g
}

func (f *Fake) find(title string) *tab {
	for _, t := range f.tabs {
		if t.props.Title == title {
			return t
		}
	}
	return nil
}

func (f *Fake) indexOf(id int64) int {
	return slices.IndexFunc(f.tabs, func(t *tab) bool { return t.props.SheetId == id })
}

func (f *Fake) reindex() {
	for i, t := range f.tabs {
		t.props.Index = int64(i)
	}
}

func badRequest(format string, args ...any) *googleapi.Error {
	return &googleapi.Error{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func copyProps(p sheets.SheetProperties) sheets.SheetProperties {
	if p.GridProperties != nil {
		g := *p.GridProperties
		p.GridProperties = &g
	}
	return p
}

func copyValues(v [][]any) [][]any {
	if v == nil {
		return nil
	}
	out := make([][]any, len(v))
	for i, row := range v {
		out[i] = slices.Clone(row)
	}
	return out
}

// parseCell splits an A1 cell address into 0-based row and column.
func parseCell(addr string) (row, col int, err error) {
	i := 0
	for i < len(addr) && addr[i] >= 'A' && addr[i] <= 'Z' {
		col = col*26 + int(addr[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(addr) {
		return 0, 0, fmt.Errorf("bad cell address %q", addr)
	}
	n, err := strconv.Atoi(addr[i:])
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("bad cell address %q", addr)
	}
	return n - 1, col - 1, nil
}
