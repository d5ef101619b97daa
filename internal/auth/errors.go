package auth

import "errors"

var (
	ErrDuplicateEmail     = errors.New("auth: email already in use")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrNotFound           = errors.New("auth: not found")
	ErrInvalidInput       = errors.New("auth: invalid input")

	// ErrPasswordManaged rejects password changes on accounts whose
	// credentials are owned by the external identity provider.
	ErrPasswordManaged = errors.New("auth: password is managed by the identity provider")

	// ErrProviderConflict is returned by the reject relink policy when a
	// Google assertion arrives for an email with local credentials.
	ErrProviderConflict = errors.New("auth: account already uses local credentials")
)
