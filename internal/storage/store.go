package storage

import (
	"context"
	"errors"
	"time"
)

// ErrMemberNotFound is returned when a member lookup finds no matching row.
var ErrMemberNotFound = errors.New("member not found")

// AppTypo identifies the typo-report application members are granted.
const AppTypo = "TYPO"

// Member grants one signed-in email access to an application document.
type Member struct {
	AppID     string    `json:"app_id"`
	Email     string    `json:"email"`
	DocID     string    `json:"doc_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberStore persists application memberships. Emails are compared
// case-insensitively.
type MemberStore interface {
	// FindByAppIDAndEmail returns the membership for (appID, email).
	FindByAppIDAndEmail(ctx context.Context, appID, email string) (*Member, error)

	// PutMember inserts a membership or replaces the document of an existing one.
	PutMember(ctx context.Context, m Member) (*Member, error)

	// DeleteMember removes a membership. Missing rows yield ErrMemberNotFound.
	DeleteMember(ctx context.Context, appID, email string) error

	// ListMembers returns every membership of appID ordered by email.
	ListMembers(ctx context.Context, appID string) ([]Member, error)
}
