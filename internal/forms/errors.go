package forms

import "errors"

// Validation and state errors returned by the forms. Callers compare with
// errors.Is and re-prompt the user; none of them changes form state.
var (
	ErrEmptyAnswer         = errors.New("answer must not be empty")
	ErrWrongState          = errors.New("operation not allowed in current state")
	ErrUnknownSection      = errors.New("unknown section")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInvalidPhone        = errors.New("phone must contain 10 or 11 digits")
	ErrInvalidEmail        = errors.New("invalid e-mail address")
	ErrInvalidExperience   = errors.New("experience must be a whole number of years between 0 and 80")
	ErrInvalidAmount       = errors.New("amount must be a positive whole number")
)
