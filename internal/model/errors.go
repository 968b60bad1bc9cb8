package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by stores when a record does not exist and by
	// the asset resolver when a local file is absent.
	ErrNotFound = errors.New("not found")
	// ErrEmptyUpload rejects zero-byte image payloads.
	ErrEmptyUpload = errors.New("cannot upload empty file")
	// ErrNoImage is returned when a user has no image assigned.
	ErrNoImage = errors.New("user has no image assigned")
)

// ConflictError reports every identity field already taken by existing
// records, not just the first one found.
type ConflictError struct {
	Fields []string
}

func (e *ConflictError) Error() string {
	return strings.Join(e.Fields, ", ") + " already exists"
}

// CredentialsReason tags why a login attempt was rejected.
type CredentialsReason string

const (
	ReasonNotFound    CredentialsReason = "not_found"
	ReasonBadPassword CredentialsReason = "bad_password"
	// ReasonAmbiguous means more than one account matched the identifier.
	// That is a violated uniqueness invariant surfaced as a login failure
	// rather than silently picking one account.
	ReasonAmbiguous CredentialsReason = "ambiguous"
)

// CredentialsError is returned on any failed login attempt.
type CredentialsError struct {
	Reason CredentialsReason
}

func (e *CredentialsError) Error() string {
	switch e.Reason {
	case ReasonBadPassword:
		return "invalid credentials: incorrect password"
	case ReasonAmbiguous:
		return "invalid credentials: ambiguous user, multiple accounts found"
	default:
		return "invalid credentials: user not found"
	}
}

// BackendError reports a non-2xx response from the remote content store.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("content store responded %d: %s", e.Status, e.Body)
}

// FetchError wraps a transport failure while retrieving an asset by URL.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch asset: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
