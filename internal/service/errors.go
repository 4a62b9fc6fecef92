package service

import (
	"errors"

	"github.com/sunghyun0422/snf.semi/internal/database"
)

const (
	BadRequest          = 400
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
	ServiceUnavailable  = 503
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrOversizeUpload     = errors.New("attachment is larger than 20 MB")
	ErrMailUnavailable    = errors.New("mail is not configured")
	ErrStoreUnavailable   = database.ErrStoreUnavailable

	ErrCodeMissing      = errors.New("verification code missing")
	ErrNothingToUpdate  = errors.New("nothing to update")
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrCodeNotFound     = errors.New("no verification code issued")
	ErrCodeAlreadyUsed  = errors.New("verification code already used")
	ErrCodeExpired      = errors.New("verification code expired")
	ErrCodeMismatch     = errors.New("verification code mismatch")
	ErrConflict         = errors.New("account update conflict")
)

var ErrorMap = map[error]int{
	ErrInvalidInput:       BadRequest,
	ErrNotFound:           NotFound,
	ErrInvalidCredentials: BadRequest,
	ErrOversizeUpload:     BadRequest,
	ErrMailUnavailable:    ServiceUnavailable,
	ErrStoreUnavailable:   InternalServerError,
	ErrCodeMissing:        BadRequest,
	ErrNothingToUpdate:    BadRequest,
	ErrPasswordTooShort:   BadRequest,
	ErrPasswordTooLong:    BadRequest,
	ErrCodeNotFound:       BadRequest,
	ErrCodeAlreadyUsed:    BadRequest,
	ErrCodeExpired:        BadRequest,
	ErrCodeMismatch:       BadRequest,
	ErrConflict:           Conflict,
}

// OTPReasons are the ?error= values the account page understands.
var OTPReasons = map[error]string{
	ErrCodeMissing:      "code_missing",
	ErrNothingToUpdate:  "nothing_to_update",
	ErrPasswordTooShort: "password_too_short",
	ErrPasswordTooLong:  "password_too_long",
	ErrCodeNotFound:     "code_not_found",
	ErrCodeAlreadyUsed:  "code_already_used",
	ErrCodeExpired:      "code_expired",
	ErrCodeMismatch:     "code_mismatch",
	ErrConflict:         "conflict",
	ErrMailUnavailable:  "mail_unavailable",
}

// StatusOf maps err onto an HTTP status. Anything unrecognised is a 500.
func StatusOf(err error) int {
	for target, status := range ErrorMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return InternalServerError
}

// ReasonOf returns the redirect reason for an account change error, or "" when err is
// not one of them.
func ReasonOf(err error) string {
	for target, reason := range OTPReasons {
		if errors.Is(err, target) {
			return reason
		}
	}
	return ""
}

// ValidationError carries a message meant for the form that was submitted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(err error) error {
	return &ValidationError{Msg: err.Error()}
}

// Message returns the text a form should show for err.
func Message(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Msg
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Wrong username or password."
	case errors.Is(err, ErrOversizeUpload):
		return "The attachment is larger than 20 MB. Choose a smaller file."
	case errors.Is(err, ErrMailUnavailable):
		return "Mail is not configured on this server. Please contact us directly."
	}
	return "Something went wrong. Please try again."
}
