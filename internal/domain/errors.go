package domain

import (
	"errors"
	"fmt"
)

// Kind groups errors by how callers are expected to react to them.
type Kind int

const (
	KindUnknown Kind = iota
	KindConflict
	KindValidation
	KindAuth
	KindPrivilege
	KindNotFound
	KindStorage
	KindCredentialFormat
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindPrivilege:
		return "privilege"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	case KindCredentialFormat:
		return "credential_format"
	default:
		return "unknown"
	}
}

// Error is the typed result returned by repositories and services.
// Two errors are equal under errors.Is when their codes match, so wrapped
// instances still compare equal to the sentinels below.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newErr(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

// Conflict
var (
	ErrUsernameTaken = newErr(KindConflict, "username_taken", "username already exists")
	ErrEmailTaken    = newErr(KindConflict, "email_taken", "email already registered")
)

// Validation
var (
	ErrMissingFields    = newErr(KindValidation, "missing_fields", "username, password, name and email are required")
	ErrWeakPassword     = newErr(KindValidation, "weak_password", "password is too short")
	ErrPasswordTooLong  = newErr(KindValidation, "password_too_long", "password is too long")
	ErrPasswordMismatch = newErr(KindValidation, "password_mismatch", "passwords do not match")
	ErrInvalidEmail     = newErr(KindValidation, "invalid_email", "email address is not valid")
	ErrInvalidRole      = newErr(KindValidation, "invalid_role", "role must be user or admin")
	ErrInvalidFarmSize  = newErr(KindValidation, "invalid_farm_size", "farm size must not be negative")
	ErrInvalidRecord    = newErr(KindValidation, "invalid_record", "record is not valid")
	ErrInvalidImage     = newErr(KindValidation, "invalid_image", "image is not a supported leaf photo")
	ErrInvalidLocation  = newErr(KindValidation, "invalid_location", "location is required")
)

// Auth
var (
	ErrInvalidCredentials = newErr(KindAuth, "invalid_credentials", "invalid username or password")
	ErrAccountLocked      = newErr(KindAuth, "account_locked", "account temporarily locked after repeated failed logins")
)

var (
	ErrInsufficientPrivilege = newErr(KindPrivilege, "insufficient_privilege", "admin privilege required")
	ErrUserNotFound          = newErr(KindNotFound, "user_not_found", "user not found")
	ErrStorage               = newErr(KindStorage, "storage", "storage unavailable, please try again")
	ErrCredentialFormat      = newErr(KindCredentialFormat, "credential_format", "stored credential is corrupt")
)

// Storage wraps a persistence failure. The cause is kept for logging only.
func Storage(op string, err error) error {
	return &Error{Kind: KindStorage, Code: ErrStorage.Code, Msg: ErrStorage.Msg, Err: fmt.Errorf("%s: %w", op, err)}
}

// Invalid returns a validation error carrying a field-specific detail.
func Invalid(base *Error, detail string) error {
	return &Error{Kind: base.Kind, Code: base.Code, Msg: base.Msg, Err: errors.New(detail)}
}

// KindOf reports the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// CodeOf reports the code of err, or "internal" for foreign errors.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "internal"
}
