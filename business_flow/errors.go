// Package businessflow contains the core business logic and use cases for the event and shortlink workflows
package businessflow

import (
	"errors"
	"fmt"

	"github.com/eventdesk/eventdesk/storage"
)

// Business flow error constants
var (
	// Shortlink-related errors
	ErrShortLinkNotFound   = errors.New("short link not found")
	ErrShortLinkInactive   = errors.New("short link is inactive")
	ErrLinkKeyRequired     = errors.New("link key is required")
	ErrTargetURLRequired   = errors.New("target URL is required")
	ErrOwnerKeyRequired    = errors.New("owner key is required")
	ErrTokenSpaceExhausted = errors.New("could not mint a unique token")

	// Event-related errors
	ErrEventNotFound      = errors.New("event not found")
	ErrEventNameRequired  = errors.New("event name is required")
	ErrStartDateRequired  = errors.New("event start date is required")
	ErrEventArchived      = errors.New("event is archived")
	ErrProvisioningFailed = errors.New("page asset provisioning failed")
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

// ErrorCode extracts the BusinessError code from err, or "" when err carries none.
func ErrorCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func IsShortLinkNotFound(err error) bool {
	return errors.Is(err, ErrShortLinkNotFound)
}

func IsShortLinkInactive(err error) bool {
	return errors.Is(err, ErrShortLinkInactive)
}

func IsTokenSpaceExhausted(err error) bool {
	return errors.Is(err, ErrTokenSpaceExhausted)
}

func IsEventNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

func IsEventArchived(err error) bool {
	return errors.Is(err, ErrEventArchived)
}

func IsProvisioningFailed(err error) bool {
	return errors.Is(err, ErrProvisioningFailed)
}

// IsStoreUnavailable reports whether err stems from an unreachable backing
// store. These failures are transient; callers should answer retryable.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, storage.ErrStoreUnavailable)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrEventNameRequired) ||
		errors.Is(err, ErrStartDateRequired) ||
		errors.Is(err, ErrLinkKeyRequired) ||
		errors.Is(err, ErrTargetURLRequired) ||
		errors.Is(err, ErrOwnerKeyRequired)
}
