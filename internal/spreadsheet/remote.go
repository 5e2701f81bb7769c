package spreadsheet

import (
	"context"

	"google.golang.org/api/sheets/v4"
)

// ValueInputRaw stores values verbatim without parsing formulas or formats.
const ValueInputRaw = "RAW"

// Remote is the subset of the hosted spreadsheet service used by Service.
type Remote interface {
	// GetSpreadsheet returns spreadsheet metadata without grid data.
	GetSpreadsheet(ctx context.Context, spreadsheetID string) (*sheets.Spreadsheet, error)

	// GetValues returns the values of an A1 range (a bare tab name reads the whole tab).
	GetValues(ctx context.Context, spreadsheetID, rng string) (*sheets.ValueRange, error)

	// BatchUpdate applies the requests in a single round trip.
	BatchUpdate(ctx context.Context, spreadsheetID string, req *sheets.BatchUpdateSpreadsheetRequest) error

	// UpdateValues writes values into rng using the given value input option.
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values *sheets.ValueRange, inputOption string) error
}

// Sessions hands out the process-wide authenticated Remote, constructing it
// on first use.
type Sessions interface {
	Session(ctx context.Context) (Remote, error)
}
