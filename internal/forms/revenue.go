package forms

import (
	"strconv"
	"strings"
)

// DefaultRevenueDescription is stored when the partner skips the
// description step.
const DefaultRevenueDescription = "Added via bot"

// Revenue form steps.
const (
	RevenueAmount = iota
	RevenueDescription
	RevenueDone
)

// RevenueForm collects one revenue ledger entry.
type RevenueForm struct {
	Step        int    `json:"step"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// NewRevenueForm returns a form positioned at the amount step.
func NewRevenueForm() *RevenueForm { return &RevenueForm{} }

// Done reports whether the entry is complete.
func (f *RevenueForm) Done() bool { return f.Step >= RevenueDone }

// Prompt returns the question for the current step.
func (f *RevenueForm) Prompt() string {
	switch f.Step {
	case RevenueAmount:
		return "Enter the revenue amount (whole number):"
	case RevenueDescription:
		return "Enter a description, or send \"skip\":"
	default:
		return ""
	}
}

// Answer validates text for the current step, stores it and advances.
func (f *RevenueForm) Answer(text string) error {
	text = strings.TrimSpace(text)
	switch f.Step {
	case RevenueAmount:
		n, err := ParseAmount(text)
		if err != nil {
			return err
		}
		f.Amount = n
	case RevenueDescription:
		if text == "" || text == "-" || strings.EqualFold(text, "skip") {
			text = DefaultRevenueDescription
		}
		f.Description = text
	default:
		return ErrWrongState
	}
	f.Step++
	return nil
}

// ParseAmount parses a positive whole amount. Spaces (including
// non-breaking ones) used as thousands separators are ignored.
func ParseAmount(s string) (int64, error) {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\u202f' {
			return -1
		}
		return r
	}, s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidAmount
	}
	return n, nil
}
