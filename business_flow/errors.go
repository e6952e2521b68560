// Package businessflow contains the referral catalog and intake use cases
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Catalog errors
	ErrReferralNotFound   = errors.New("referral not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrInvalidLimit       = errors.New("invalid limit")

	// Intake errors
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrInvalidLinkedinURL    = errors.New("linkedinUrl is not a linkedin.com URL")
	ErrInvalidEmail          = errors.New("email is malformed")
	ErrInvalidCvURL          = errors.New("cvUrl is not an http(s) URL")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsReferralNotFound(err error) bool {
	return errors.Is(err, ErrReferralNotFound)
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsCatalogUnavailable(err error) bool {
	return errors.Is(err, ErrCatalogUnavailable)
}

func IsInvalidLimit(err error) bool {
	return errors.Is(err, ErrInvalidLimit)
}

func IsMissingRequiredFields(err error) bool {
	return errors.Is(err, ErrMissingRequiredFields)
}

// IsInvalidField reports whether err rejects a present but malformed intake field
func IsInvalidField(err error) bool {
	return errors.Is(err, ErrInvalidLinkedinURL) || errors.Is(err, ErrInvalidEmail) || errors.Is(err, ErrInvalidCvURL)
}
