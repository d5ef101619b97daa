package auth

import "time"

// Provider identifies how an account authenticates.
type Provider string

const (
	ProviderLocal  Provider = "LOCAL"
	ProviderGoogle Provider = "GOOGLE"
)

// User is one account record. Email is the unique login identifier and
// the token subject. PasswordHash is empty for pure-OAuth accounts;
// ProviderSubject is set only when Provider is GOOGLE.
type User struct {
	ID              string
	Email           string
	FullName        string
	PasswordHash    string
	Provider        Provider
	ProviderSubject string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
