package extraction

import (
	"errors"
	"fmt"
)

// Kind classifies an extraction or automation failure.
type Kind string

// Failure kinds.
const (
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindInvalidImageFormat  Kind = "INVALID_IMAGE_FORMAT"
	KindNotFound            Kind = "NOT_FOUND"
	KindUnsupportedMerchant Kind = "UNSUPPORTED_MERCHANT"
	KindRecognitionFailed   Kind = "RECOGNITION_FAILED"
	KindBrowserLaunchFailed Kind = "BROWSER_LAUNCH_FAILED"
	KindNavigationFailed    Kind = "NAVIGATION_FAILED"
	KindElementNotFound     Kind = "ELEMENT_NOT_FOUND"
	KindElementTimeout      Kind = "ELEMENT_TIMEOUT"
	KindOptionNotFound      Kind = "OPTION_NOT_FOUND"
	KindCancelled           Kind = "CANCELLED"
)

// IsAutomationFault reports whether the kind originates from the remote
// form automation rather than from caller input.
func (k Kind) IsAutomationFault() bool {
	switch k {
	case KindBrowserLaunchFailed, KindNavigationFailed, KindElementNotFound,
		KindElementTimeout, KindOptionNotFound:
		return true
	}
	return false
}

// Error is a typed failure. State and Selector are diagnostic only and
// must not be shown to API callers.
type Error struct {
	Kind     Kind
	Message  string
	State    State
	Selector string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.State != StateUnknown {
		msg = fmt.Sprintf("%s (state=%s)", msg, e.State)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError creates a typed error without a cause.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a typed error around cause.
func WrapError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidInput        = NewError(KindInvalidInput, "invalid input")
	ErrInvalidImageFormat  = NewError(KindInvalidImageFormat, "image could not be decoded")
	ErrFolioNotFound       = NewError(KindNotFound, "folio not found in recognized text")
	ErrUnsupportedMerchant = NewError(KindUnsupportedMerchant, "merchant is not supported")
	ErrElementTimeout      = NewError(KindElementTimeout, "element did not become interactable")
	ErrOptionNotFound      = NewError(KindOptionNotFound, "option not present in form")
)

// KindOf returns the Kind of err, or the empty Kind when err is not a
// typed extraction error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
