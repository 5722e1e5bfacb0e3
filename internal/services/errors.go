// Package services defines the business logic shared by the bot and the
// admin API: users, referrals, partner profiles, revenue, questionnaires,
// the messaging relay, payouts, admin queries and reminders.
//
// This file centralizes service-level error values so that callers can match
// them with errors.Is. Translation into user-facing text or HTTP status codes
// is performed by the bot and the HTTP handlers.
package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Lookup errors.
var (
	// ErrUserNotFound indicates that no user has the given id or Telegram id.
	ErrUserNotFound = errors.New("user not found")

	// ErrProfileNotFound indicates that the user has no partner profile.
	ErrProfileNotFound = errors.New("partner profile not found")

	// ErrCaseNotFound indicates that the questionnaire does not exist.
	ErrCaseNotFound = errors.New("case not found")

	// ErrPayoutNotFound indicates that one or more payouts do not exist.
	ErrPayoutNotFound = errors.New("payout not found")

	// ErrRevenueNotFound indicates that the ledger entry does not exist.
	ErrRevenueNotFound = errors.New("revenue entry not found")

	// ErrUnknownReferralCode is returned when an invitation code resolves to
	// no partner.
	ErrUnknownReferralCode = errors.New("unknown referral code")
)

// Validation errors.
var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message too long")
	ErrNoTarget       = errors.New("either telegram_id or case_id is required")
	ErrInvalidRevenue = errors.New("revenue amount must be positive")
	ErrInvalidPayout  = errors.New("invalid payout: amount must be >= 0, month 1-12, year 2000-2100")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrEmptyBatch     = errors.New("no payout ids given")
	ErrNotReady       = errors.New("questionnaire is not ready to submit")
	ErrInvalidPeriod  = errors.New("invalid period")
	ErrEmptyQuery     = errors.New("search query is empty")
)

// Conflict errors.
var (
	ErrPayoutAlreadyPaid       = errors.New("payout already paid")
	ErrPayoutCancelled         = errors.New("payout is cancelled")
	ErrSelfReferral            = errors.New("self-referral is not allowed")
	ErrAlreadyReferred         = errors.New("user already has a referrer")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// MissingPayoutsError lists payout ids that do not exist. It matches
// ErrPayoutNotFound.
type MissingPayoutsError struct {
	IDs []uint
}

func (e *MissingPayoutsError) Error() string {
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return fmt.Sprintf("%s: %s", ErrPayoutNotFound, strings.Join(parts, ", "))
}

// Is reports whether target is ErrPayoutNotFound.
func (e *MissingPayoutsError) Is(target error) bool { return target == ErrPayoutNotFound }
