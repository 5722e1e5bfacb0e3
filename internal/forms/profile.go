package forms

import (
	"regexp"
	"strconv"
	"strings"
)

// Profile form steps.
const (
	ProfileFullName = iota
	ProfileCompany
	ProfilePhone
	ProfileEmail
	ProfileSpecialization
	ProfileExperience
	ProfileDone
)

// MaxExperience is the largest accepted number of years of experience.
const MaxExperience = 80

var profilePrompts = [...]string{
	ProfileFullName:       "Enter your full name:",
	ProfileCompany:        "Enter your company name:",
	ProfilePhone:          "Enter your phone number:",
	ProfileEmail:          "Enter your e-mail:",
	ProfileSpecialization: "Enter your specialization:",
	ProfileExperience:     "Enter your experience in years:",
}

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// ProfileForm collects a partner profile in six steps.
type ProfileForm struct {
	Step           int    `json:"step"`
	FullName       string `json:"full_name"`
	CompanyName    string `json:"company_name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
	Experience     int    `json:"experience"`
}

// NewProfileForm returns a form positioned at the first step.
func NewProfileForm() *ProfileForm { return &ProfileForm{} }

// Prompt returns the question for the current step.
func (f *ProfileForm) Prompt() string {
	if f.Step < 0 || f.Step >= ProfileDone {
		return ""
	}
	return profilePrompts[f.Step]
}

// Done reports whether every step has been answered.
func (f *ProfileForm) Done() bool { return f.Step >= ProfileDone }

// Answer validates text for the current step, stores it and advances.
func (f *ProfileForm) Answer(text string) error {
	text = strings.TrimSpace(text)
	if f.Done() {
		return ErrWrongState
	}
	if text == "" {
		return ErrEmptyAnswer
	}
	switch f.Step {
	case ProfileFullName:
		f.FullName = text
	case ProfileCompany:
		f.CompanyName = text
	case ProfilePhone:
		p, err := NormalizePhone(text)
		if err != nil {
			return err
		}
		f.Phone = p
	case ProfileEmail:
		if !ValidEmail(text) {
			return ErrInvalidEmail
		}
		f.Email = text
	case ProfileSpecialization:
		f.Specialization = text
	case ProfileExperience:
		n, err := strconv.Atoi(text)
		if err != nil || n < 0 || n > MaxExperience {
			return ErrInvalidExperience
		}
		f.Experience = n
	}
	f.Step++
	return nil
}

// NormalizePhone keeps the digits of s and requires 10 or 11 of them.
// A leading '+' is preserved.
func NormalizePhone(s string) (string, error) {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '(', r == ')', r == '+':
		default:
			return "", ErrInvalidPhone
		}
	}
	digits := b.String()
	if len(digits) < 10 || len(digits) > 11 {
		return "", ErrInvalidPhone
	}
	if strings.HasPrefix(s, "+") {
		return "+" + digits, nil
	}
	return digits, nil
}

// ValidEmail reports whether s looks like an e-mail address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}
