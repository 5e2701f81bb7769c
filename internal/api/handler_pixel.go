package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ryanbastic/go-sheetdesk/internal/pixel"
)

const resultSuccess = "Success"

// --- Huma Input/Output types ---

type ConversionBody struct {
	TokenID      string  `json:"tokenId" doc:"Conversions API access token" minLength:"1"`
	PixelID      string  `json:"pixelId" doc:"Pixel (dataset) id" minLength:"1"`
	URLID        string  `json:"urlId,omitempty" doc:"Page the purchase happened on" required:"false"`
	Email        string  `json:"email,omitempty" doc:"Buyer email, hashed before sending" required:"false"`
	Phone        string  `json:"phone,omitempty" doc:"Buyer phone, hashed before sending" required:"false"`
	EventID      string  `json:"eventId,omitempty" doc:"Deduplication id" required:"false"`
	ProductID    string  `json:"productId,omitempty" doc:"Purchased product id" required:"false"`
	ProductValue float64 `json:"productValue" doc:"Order value in KRW" required:"false"`
	FBP          string  `json:"fbp,omitempty" doc:"_fbp browser cookie" required:"false"`
	FBC          string  `json:"fbc,omitempty" doc:"_fbc click cookie" required:"false"`
}

type ConversionInput struct {
	UserAgent string `header:"User-Agent" doc:"Buyer user agent" required:"false"`
	Body      ConversionBody

	clientIP string
}

// Resolve records the caller's address as the buyer IP.
func (i *ConversionInput) Resolve(ctx huma.Context) []error {
	addr := ctx.RemoteAddr()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	i.clientIP = addr
	return nil
}

type ConversionResult struct {
	ConversionBody
	Result string `json:"result" doc:"Success or the upstream error text"`
}

type ConversionOutput struct {
	Body ConversionResult
}

// --- Handler ---

// ConversionSender delivers events to a pixel. *pixel.Client implements it.
type ConversionSender interface {
	Send(ctx context.Context, pixelID, accessToken string, events ...pixel.Event) (*pixel.Response, error)
}

// PixelHandler forwards purchases posted by the storefront pages.
type PixelHandler struct {
	sender ConversionSender
	views  *Views
	logger *slog.Logger
	now    func() time.Time
}

func NewPixelHandler(sender ConversionSender, views *Views, logger *slog.Logger) *PixelHandler {
	return &PixelHandler{sender: sender, views: views, logger: logger, now: time.Now}
}

func registerPixelRoutes(api huma.API, h *PixelHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "send-purchase",
		Method:      http.MethodPost,
		Path:        "/meta/pixel",
		Summary:     "Forward a purchase conversion",
		Tags:        []string{"conversions"},
	}, h.sendPurchase(false))

	huma.Register(api, huma.Operation{
		OperationID: "send-purchase-sw",
		Method:      http.MethodPost,
		Path:        "/sw/meta",
		Summary:     "Forward a purchase conversion with a deduplication id",
		Tags:        []string{"conversions"},
	}, h.sendPurchase(true))
}

// sendPurchase builds the handler for one endpoint. Only the /sw variant
// forwards the event id.
func (h *PixelHandler) sendPurchase(withEventID bool) func(context.Context, *ConversionInput) (*ConversionOutput, error) {
	return func(ctx context.Context, input *ConversionInput) (*ConversionOutput, error) {
		b := input.Body
		p := pixel.Purchase{
			SourceURL: b.URLID,
			Email:     b.Email,
			Phone:     b.Phone,
			ProductID: b.ProductID,
			Value:     b.ProductValue,
			FBP:       b.FBP,
			FBC:       b.FBC,
			ClientIP:  input.clientIP,
			UserAgent: input.UserAgent,
			Time:      h.now(),
		}
		if withEventID {
			p.EventID = b.EventID
		}

		out := &ConversionOutput{Body: ConversionResult{ConversionBody: b, Result: resultSuccess}}
		if _, err := h.sender.Send(ctx, b.PixelID, b.TokenID, pixel.NewPurchaseEvent(p)); err != nil {
			h.logger.Warn("purchase not forwarded", "pixel_id", b.PixelID, "error", err)
			out.Body.Result = err.Error()
		}
		return out, nil
	}
}

type pixelPage struct {
	Title  string
	Action string
}

// PixelPage renders the purchase form for /meta/pixel.
func (h *PixelHandler) PixelPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "meta/pixel", pixelPage{Title: "Meta pixel", Action: "/meta/pixel"})
}

// SwPage renders the purchase form for /sw/meta.
func (h *PixelHandler) SwPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "sw/meta/index", pixelPage{Title: "Meta pixel (sw)", Action: "/sw/meta"})
}

func (h *PixelHandler) render(w http.ResponseWriter, name string, data any) {
	if err := h.views.Render(w, http.StatusOK, name, data); err != nil {
		h.logger.Error("failed to render view", "view", name, "error", err)
		writeError(w, http.StatusInternalServerError, msgUnexpected)
	}
}
