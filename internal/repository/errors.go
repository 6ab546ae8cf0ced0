package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDataIntegrity indicates a uniqueness or referential constraint violation.
	ErrDataIntegrity = errors.New("repository: data integrity violation")
	// ErrInvalidCredential indicates the supplied password did not verify or
	// the account's credential has been permanently deactivated.
	ErrInvalidCredential = errors.New("repository: invalid credential")
)
