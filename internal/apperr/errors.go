package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies a failure so callers can branch on it without string matching.
type Kind string

const (
	NotFound              Kind = "NotFound"
	InsufficientStock     Kind = "InsufficientStock"
	UnbalancedEntry       Kind = "UnbalancedEntry"
	AlreadyVoided         Kind = "AlreadyVoided"
	InvalidPayment        Kind = "InvalidPayment"
	SupplierNotFound      Kind = "SupplierNotFound"
	AccountNotFound       Kind = "AccountNotFound"
	MissingAccountMapping Kind = "MissingAccountMapping"
	CreditLimitExceeded   Kind = "CreditLimitExceeded"
	Validation            Kind = "Validation"
	InvalidSignature      Kind = "InvalidSignature"
	MachineMismatch       Kind = "MachineMismatch"
	Expired               Kind = "Expired"
	NoLicenseFile         Kind = "NoLicenseFile"
	InvalidLicense        Kind = "InvalidLicense"
	PersistenceFailure    Kind = "PersistenceFailure"
)

// Error is the structured failure returned by services and the license engine.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind, so errors.Is(err, apperr.E(apperr.NotFound, "")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// E builds an error of the given kind.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Ef builds an error of the given kind with a formatted message.
func Ef(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an operation name to err. Plain errors become PersistenceFailure,
// except gorm's record-not-found which becomes NotFound.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Op == "" {
			ae.Op = op
		}
		return ae
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: NotFound, Op: op, Message: "record not found", Err: err}
	}
	return &Error{Kind: PersistenceFailure, Op: op, Message: "persistence failure", Err: err}
}

// KindOf classifies any error. Unknown errors are persistence failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound
	}
	return PersistenceFailure
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the user facing message without the wrapped cause.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Message != "" {
			return ae.Message
		}
		return string(ae.Kind)
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// HTTPStatus maps a kind to the status code the API answers with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case NotFound, SupplierNotFound, AccountNotFound, NoLicenseFile:
		return http.StatusNotFound
	case AlreadyVoided:
		return http.StatusConflict
	case InsufficientStock, UnbalancedEntry, InvalidPayment, MissingAccountMapping, CreditLimitExceeded:
		return http.StatusUnprocessableEntity
	case Validation, InvalidLicense:
		return http.StatusBadRequest
	case InvalidSignature, MachineMismatch, Expired:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
