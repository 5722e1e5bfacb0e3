// Package session keeps the in-progress conversational form of each bot user,
// keyed by Telegram id. Two backends are provided: an in-process map and
// Redis. Sessions are serialized to JSON in both so callers never share
// mutable state with the store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/tbourn/lawdesk/internal/forms"
)

// ErrNotFound is returned by Get when the user has no active form.
var ErrNotFound = errors.New("session not found")

// Kind names the form a session holds.
type Kind string

// Form kinds.
const (
	KindQuestionnaire Kind = "questionnaire"
	KindProfile       Kind = "profile"
	KindRevenue       Kind = "revenue"
)

// Session is the active form of one user. Exactly one of the form pointers
// matching Kind is set.
type Session struct {
	Kind          Kind                 `json:"kind"`
	Questionnaire *forms.Questionnaire `json:"questionnaire,omitempty"`
	Profile       *forms.ProfileForm   `json:"profile,omitempty"`
	Revenue       *forms.RevenueForm   `json:"revenue,omitempty"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// Store persists sessions. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, telegramID int64) (*Session, error)
	Put(ctx context.Context, telegramID int64, s *Session) error
	Delete(ctx context.Context, telegramID int64) error
}

func encode(s *Session) ([]byte, error) {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	return json.Marshal(s)
}

func decode(b []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
