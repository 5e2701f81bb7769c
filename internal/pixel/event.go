// Package pixel forwards purchase conversions to the Meta Conversions API.
package pixel

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const (
	eventPurchase        = "Purchase"
	actionSourceWebsite  = "website"
	currencyKRW          = "krw"
	deliveryHomeDelivery = "home_delivery"
)

// Purchase carries the visitor and product details of one completed order.
type Purchase struct {
	EventID   string
	SourceURL string
	Email     string
	Phone     string
	ProductID string
	Value     float64
	FBP       string
	FBC       string
	ClientIP  string
	UserAgent string
	Time      time.Time
}

// Event is a server event as accepted by the /events edge.
type Event struct {
	EventName      string     `json:"event_name"`
	EventTime      int64      `json:"event_time"`
	EventID        string     `json:"event_id,omitempty"`
	EventSourceURL string     `json:"event_source_url,omitempty"`
	ActionSource   string     `json:"action_source"`
	UserData       UserData   `json:"user_data"`
	CustomData     CustomData `json:"custom_data"`
}

// UserData identifies the visitor. Email and phone are SHA-256 hashed.
type UserData struct {
	Emails          []string `json:"em,omitempty"`
	Phones          []string `json:"ph,omitempty"`
	ClientIPAddress string   `json:"client_ip_address,omitempty"`
	ClientUserAgent string   `json:"client_user_agent,omitempty"`
	FBC             string   `json:"fbc,omitempty"`
	FBP             string   `json:"fbp,omitempty"`
}

type CustomData struct {
	Currency string    `json:"currency"`
	Value    float64   `json:"value"`
	Contents []Content `json:"contents"`
}

type Content struct {
	ID               string `json:"id"`
	Quantity         int    `json:"quantity"`
	DeliveryCategory string `json:"delivery_category"`
}

// NewPurchaseEvent builds the single-item Purchase event for p.
func NewPurchaseEvent(p Purchase) Event {
	ud := UserData{
		ClientIPAddress: p.ClientIP,
		ClientUserAgent: p.UserAgent,
		FBC:             p.FBC,
		FBP:             p.FBP,
	}
	if h := HashEmail(p.Email); h != "" {
		ud.Emails = []string{h}
	}
	if h := HashPhone(p.Phone); h != "" {
		ud.Phones = []string{h}
	}

	ts := p.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	return Event{
		EventName:      eventPurchase,
		EventTime:      ts.Unix(),
		EventID:        p.EventID,
		EventSourceURL: p.SourceURL,
		ActionSource:   actionSourceWebsite,
		UserData:       ud,
		CustomData: CustomData{
			Currency: currencyKRW,
			Value:    p.Value,
			Contents: []Content{{
				ID:               p.ProductID,
				Quantity:         1,
				DeliveryCategory: deliveryHomeDelivery,
			}},
		},
	}
}

// HashEmail normalizes an address (trimmed, lower case) and returns its
// hex SHA-256. An empty address hashes to "".
func HashEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	return sha256Hex(email)
}

// HashPhone keeps only the digits of phone and returns their hex SHA-256.
func HashPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	return sha256Hex(digits)
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
