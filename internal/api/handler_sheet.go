package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ryanbastic/go-sheetdesk/internal/spreadsheet"
)

// Sheets is the spreadsheet surface served over HTTP. *spreadsheet.Service
// implements it.
type Sheets interface {
	ListTabs(ctx context.Context) ([]spreadsheet.CustomTab, error)
	ReadData(ctx context.Context, name string) ([][]any, error)
	MoveTab(ctx context.Context, name string, targetIndex, right int) error
	RenameTab(ctx context.Context, oldName, newName string) error
	RemoveTab(ctx context.Context, name string) error
	AddAndPlaceTab(ctx context.Context, name string, refIndex, right int) error
	InsertColumn(ctx context.Context, name string, referenceIndex, right int) error
	DeleteColumn(ctx context.Context, name string, startIndex int) error
	InsertRow(ctx context.Context, name string, referenceIndex, below int) error
	DeleteRows(ctx context.Context, name string, startIndex, numRows int) error
	UpdateCell(ctx context.Context, name string, row, col int, value string) error
}

// SheetHandler serves the tab, row, column and cell endpoints.
type SheetHandler struct {
	sheets Sheets
	views  *Views
	logger *slog.Logger
}

func NewSheetHandler(sheets Sheets, views *Views, logger *slog.Logger) *SheetHandler {
	return &SheetHandler{sheets: sheets, views: views, logger: logger}
}

type sheetIndexPage struct {
	SheetList []spreadsheet.CustomTab
}

// List renders the tab listing page.
func (h *SheetHandler) List(w http.ResponseWriter, r *http.Request) {
	tabs, err := h.sheets.ListTabs(r.Context())
	if err != nil {
		writeOperationError(w, h.logger, "list tabs", err)
		return
	}
	if err := h.views.Render(w, http.StatusOK, "sheet/index", sheetIndexPage{SheetList: tabs}); err != nil {
		h.logger.Error("failed to render view", "view", "sheet/index", "error", err)
		writeError(w, http.StatusInternalServerError, msgUnexpected)
	}
}

// Data returns {sheetName: values}. A tab without values yields an empty matrix.
func (h *SheetHandler) Data(w http.ResponseWriter, r *http.Request) {
	name, err := stringParam(r, "sheetName")
	if err != nil {
		writeOperationError(w, h.logger, "read data", err)
		return
	}
	values, err := h.sheets.ReadData(r.Context(), name)
	if err != nil {
		writeOperationError(w, h.logger, "read data", err)
		return
	}
	if values == nil {
		values = [][]any{}
	}
	writeJSON(w, http.StatusOK, map[string][][]any{name: values})
}

func (h *SheetHandler) Move(w http.ResponseWriter, r *http.Request) {
	var p params
	name := p.str(r, "sheetName")
	target := p.int(r, "targetIndex")
	right := p.int(r, "right")
	if h.rejected(w, "move tab", p) {
		return
	}
	h.respond(w, "move tab", h.sheets.MoveTab(r.Context(), name, target, right), "Sheet moved successfully.")
}

func (h *SheetHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var p params
	oldName := p.str(r, "oldName")
	newName := p.str(r, "newName")
	if h.rejected(w, "rename tab", p) {
		return
	}
	h.respond(w, "rename tab", h.sheets.RenameTab(r.Context(), oldName, newName), "Sheet renamed successfully.")
}

func (h *SheetHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var p params
	name := p.str(r, "sheetName")
	if h.rejected(w, "remove tab", p) {
		return
	}
	h.respond(w, "remove tab", h.sheets.RemoveTab(r.Context(), name), "Sheet removed successfully.")
}

func (h *SheetHandler) Add(w http.ResponseWriter, r *http.Request) {
	var p params
	name := p.str(r, "newSheetName")
	ref := p.int(r, "currentSheetIndex")
	right := p.int(r, "right")
	if h.rejected(w, "add tab", p) {
		return
	}
	h.respond(w, "add tab", h.sheets.AddAndPlaceTab(r.Context(), name, ref, right), "Sheet added and moved successfully.")
}

func (h *SheetHandler) AddColumn(w http.ResponseWriter, r *http.Request) {
	var p params
	name := p.str(r, "sheetName")
	start := p.int(r, "startIndex")
	right := p.int(r, "right")
	if h.rejected(w, "insert column", p) {
		return
	}
	h.respond(w, "insert column", h.sheets.InsertColumn(r.Context(), name, start, right), "Column added successfully.")
}

func (h *SheetHandler) RemoveColumn(w http.ResponseWriter, r *http.Request) {
	var p params
	name := p.str(r, "sheetName")
	col := p.int(r, "colIndex")
	if h.rejected(w, "delete column", p) {
		return
	}
	h.respond(w, "delete column", h.sheets.DeleteColumn(r.Context(), name, col), "Column removed successfully.")
}

func (h *SheetHandler) AddRow(w http.ResponseWriter, r *http.Request) {
	var p params
	name := p.str(r, "sheetName")
	start := p.int(r, "startIndex")
	below := p.int(r, "below")
	if h.rejected(w, "insert row", p) {
		return
	}
	h.respond(w, "insert row", h.sheets.InsertRow(r.Context(), name, start, below), "Row added successfully.")
}

func (h *SheetHandler) DeleteRows(w http.ResponseWriter, r *http.Request) {
	var p params
	name := p.str(r, "sheetName")
	start := p.int(r, "startIndex")
	num := p.int(r, "numRows")
	if h.rejected(w, "delete rows", p) {
		return
	}
	h.respond(w, "delete rows", h.sheets.DeleteRows(r.Context(), name, start, num), "Row(s) deleted successfully.")
}

func (h *SheetHandler) UpdateCell(w http.ResponseWriter, r *http.Request) {
	var p params
	name := p.str(r, "sheetName")
	row := p.int(r, "rowIndex")
	col := p.int(r, "colIndex")
	value := p.raw(r, "newValue")
	if h.rejected(w, "update cell", p) {
		return
	}
	h.respond(w, "update cell", h.sheets.UpdateCell(r.Context(), name, row, col, value), "Cell updated successfully.")
}

func (h *SheetHandler) respond(w http.ResponseWriter, op string, err error, msg string) {
	if err != nil {
		writeOperationError(w, h.logger, op, err)
		return
	}
	writeSuccess(w, msg)
}

func (h *SheetHandler) rejected(w http.ResponseWriter, op string, p params) bool {
	if p.err == nil {
		return false
	}
	writeOperationError(w, h.logger, op, p.err)
	return true
}

// params collects form values, keeping the first parse failure.
type params struct {
	err error
}

func (p *params) str(r *http.Request, name string) string {
	v, err := stringParam(r, name)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

// raw returns the value verbatim; presence is required but it may be empty.
func (p *params) raw(r *http.Request, name string) string {
	if err := r.ParseForm(); err != nil && p.err == nil {
		p.err = badParam("request form is malformed")
		return ""
	}
	vs, ok := r.Form[name]
	if !ok {
		if p.err == nil {
			p.err = missingParam(name)
		}
		return ""
	}
	return vs[0]
}

func (p *params) int(r *http.Request, name string) int {
	s, err := stringParam(r, name)
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		if p.err == nil {
			p.err = badParam(fmt.Sprintf("Parameter '%s' must be an integer, got '%s'.", name, s))
		}
		return 0
	}
	return n
}

func stringParam(r *http.Request, name string) (string, error) {
	v := r.FormValue(name)
	if v == "" {
		return "", missingParam(name)
	}
	return v, nil
}

func missingParam(name string) error {
	return badParam(fmt.Sprintf("Required parameter '%s' is not present.", name))
}

func badParam(msg string) error {
	return spreadsheet.NewError(spreadsheet.KindInvalidArgument, "parse request", msg, nil)
}
