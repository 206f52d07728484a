// Package common defines the error taxonomy shared by the archive engine and
// its collaborators. Callers should use errors.Is to match the sentinels and
// errors.As to read the details carried by the typed errors.
package common

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors.
	ErrMissingKey        = errors.New("no AES key configured")
	ErrInvalidKey        = errors.New("invalid AES key or IV")
	ErrInvalidTableName  = errors.New("invalid table name")
	ErrInvalidColumnName = errors.New("invalid column name")

	// Untrusted input errors.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// Query errors.
	ErrResultTooLarge = errors.New("result too large")
	ErrDecrypt        = errors.New("decrypt failed")
)

// MalformedTimestampError reports a search bound that does not match
// YYYY-MM-DDTHH:MM:SS exactly.
type MalformedTimestampError struct {
	Value string
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("times must be like 2021-02-19T17:11:00 (YYYY-MM-DDTHH:MM:SS), got %q", e.Value)
}

func (e *MalformedTimestampError) Is(target error) bool {
	return target == ErrMalformedTimestamp
}

// ResultTooLargeError carries the row count reported by the count probe.
// ShortIdentity names an identity that could not be narrowed in an encrypted
// archive, in which case Count includes rows of other identities.
type ResultTooLargeError struct {
	Count         int64
	Threshold     int64
	ShortIdentity string
}

func (e *ResultTooLargeError) Error() string {
	return fmt.Sprintf("search would return %d rows (threshold %d)", e.Count, e.Threshold)
}

func (e *ResultTooLargeError) Is(target error) bool {
	return target == ErrResultTooLarge
}

// DecryptError wraps a failure to decode or decrypt a single column value.
type DecryptError struct {
	Column string
	Err    error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("decrypt column %s: %v", e.Column, e.Err)
}

func (e *DecryptError) Is(target error) bool {
	return target == ErrDecrypt
}

func (e *DecryptError) Unwrap() error {
	return e.Err
}
