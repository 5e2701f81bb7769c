package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ryanbastic/go-sheetdesk/internal/pixel"
)

type sentEvents struct {
	pixelID string
	token   string
	events  []pixel.Event
}

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []sentEvents
}

func (f *fakeSender) Send(_ context.Context, pixelID, accessToken string, events ...pixel.Event) (*pixel.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEvents{pixelID: pixelID, token: accessToken, events: events})
	if f.err != nil {
		return nil, f.err
	}
	return &pixel.Response{EventsReceived: len(events)}, nil
}

func (f *fakeSender) calls() []sentEvents {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEvents(nil), f.sent...)
}

func newPixelServer(sender ConversionSender) http.Handler {
	return NewServer(ServerConfig{Logger: testLogger(), Pixel: sender})
}

const purchaseJSON = `{
	"tokenId": "tok",
	"pixelId": "123456",
	"urlId": "https://shop.example.com/checkout",
	"email": " User@Example.com ",
	"phone": "010-1234-5678",
	"eventId": "evt-1",
	"productId": "sku-9",
	"productValue": 15000,
	"fbp": "fb.1.111.222",
	"fbc": "fb.1.333.abc"
}`

func postPurchase(t *testing.T, srv http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent/1.0")
	req.RemoteAddr = "203.0.113.7:54321"
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var out map[string]any
	if w.Code == http.StatusOK {
		if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return w, out
}

func TestSendPurchase_Success(t *testing.T) {
	sender := &fakeSender{}
	srv := newPixelServer(sender)

	w, out := postPurchase(t, srv, "/meta/pixel", purchaseJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	if out["result"] != "Success" || out["pixelId"] != "123456" || out["productValue"] != float64(15000) {
		t.Errorf("echo: %v", out)
	}

	calls := sender.calls()
	if len(calls) != 1 || len(calls[0].events) != 1 {
		t.Fatalf("calls: %+v", calls)
	}
	if calls[0].pixelID != "123456" || calls[0].token != "tok" {
		t.Errorf("target: %+v", calls[0])
	}

	ev := calls[0].events[0]
	if ev.EventName != "Purchase" || ev.ActionSource != "website" || ev.EventSourceURL != "https://shop.example.com/checkout" {
		t.Errorf("event: %+v", ev)
	}
	if ev.EventID != "" {
		t.Errorf("/meta/pixel forwarded event id %q", ev.EventID)
	}
	if ev.EventTime == 0 {
		t.Error("event time not set")
	}
	ud := ev.UserData
	if ud.ClientIPAddress != "203.0.113.7" || ud.ClientUserAgent != "test-agent/1.0" {
		t.Errorf("client: %+v", ud)
	}
	if len(ud.Emails) != 1 || ud.Emails[0] != pixel.HashEmail("user@example.com") {
		t.Errorf("email hash: %v", ud.Emails)
	}
	if ud.FBP != "fb.1.111.222" || ud.FBC != "fb.1.333.abc" {
		t.Errorf("fbp/fbc: %+v", ud)
	}
	if ev.CustomData.Currency != "krw" || ev.CustomData.Value != 15000 {
		t.Errorf("custom data: %+v", ev.CustomData)
	}
}

func TestSendPurchase_SwForwardsEventID(t *testing.T) {
	sender := &fakeSender{}
	srv := newPixelServer(sender)

	w, out := postPurchase(t, srv, "/sw/meta", purchaseJSON)
	if w.Code != http.StatusOK || out["result"] != "Success" {
		t.Fatalf("got %d %v", w.Code, out)
	}
	if ev := sender.calls()[0].events[0]; ev.EventID != "evt-1" {
		t.Errorf("event id: got %q", ev.EventID)
	}
}

func TestSendPurchase_UpstreamErrorEchoed(t *testing.T) {
	sender := &fakeSender{err: errors.New("Invalid OAuth access token")}
	srv := newPixelServer(sender)

	w, out := postPurchase(t, srv, "/meta/pixel", purchaseJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if out["result"] != "Invalid OAuth access token" {
		t.Errorf("result: got %v", out["result"])
	}
}

func TestSendPurchase_RequiresIdentifiers(t *testing.T) {
	sender := &fakeSender{}
	srv := newPixelServer(sender)

	w, _ := postPurchase(t, srv, "/meta/pixel", `{"productValue": 1}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	if len(sender.calls()) != 0 {
		t.Error("invalid body reached the sender")
	}
}

func TestPixelPages(t *testing.T) {
	srv := newPixelServer(&fakeSender{})

	for path, title := range map[string]string{"/meta/pixel": "<title>Meta pixel</title>", "/sw/meta": "<title>Meta pixel (sw)</title>"} {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: status %d", path, w.Code)
			continue
		}
		if !strings.Contains(w.Body.String(), title) {
			t.Errorf("%s: page title missing", path)
		}
	}
}
