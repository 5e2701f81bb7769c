package spreadsheet_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"

	"google.golang.org/api/googleapi"

	"github.com/ryanbastic/go-sheetdesk/internal/spreadsheet"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want spreadsheet.Kind
	}{
		{"typed", spreadsheet.NewError(spreadsheet.KindNotFound, "op", "missing", nil), spreadsheet.KindNotFound},
		{"wrapped typed", fmt.Errorf("outer: %w", spreadsheet.NewError(spreadsheet.KindInvalidArgument, "op", "bad", nil)), spreadsheet.KindInvalidArgument},
		{"googleapi", &googleapi.Error{Code: http.StatusForbidden, Message: "The caller does not have permission"}, spreadsheet.KindRemote},
		{"duplicate title", &googleapi.Error{Code: http.StatusBadRequest, Message: `Invalid requests[0].addSheet: A sheet with the name "A" already exists. Please enter another name.`}, spreadsheet.KindConflict},
		{"url error", &url.Error{Op: "Get", URL: "https://sheets.googleapis.com", Err: errors.New("connection refused")}, spreadsheet.KindTransport},
		{"net error", &net.OpError{Op: "dial", Err: errors.New("no route to host")}, spreadsheet.KindTransport},
		{"deadline", context.DeadlineExceeded, spreadsheet.KindTransport},
		{"other", errors.New("boom"), spreadsheet.KindUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spreadsheet.Classify(tt.err); got != tt.want {
				t.Errorf("Classify: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	cause := errors.New("cause")
	err := spreadsheet.NewError(spreadsheet.KindRemote, "add tab", "rejected", cause)

	if got, want := err.Error(), "add tab: rejected: cause"; got != want {
		t.Errorf("Error(): got %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestKind_String(t *testing.T) {
	if got := spreadsheet.KindInvalidArgument.String(); got != "invalid_argument" {
		t.Errorf("got %q", got)
	}
	if got := spreadsheet.Kind(99).String(); got != "unexpected" {
		t.Errorf("got %q", got)
	}
}
