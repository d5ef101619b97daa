package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RelinkPolicy decides what happens when a Google assertion arrives for
// an email that already has a local-credential account.
type RelinkPolicy int

const (
	// RelinkUpgrade converts the account to Google-controlled in place.
	RelinkUpgrade RelinkPolicy = iota
	// RelinkReject refuses the assertion with ErrProviderConflict.
	RelinkReject
)

// LinkOutcome reports what LinkGoogle did to the account.
type LinkOutcome string

const (
	LinkCreated  LinkOutcome = "created"
	LinkUpgraded LinkOutcome = "upgraded"
	LinkExisting LinkOutcome = "existing"
)

// Session is the result of a successful registration, login or link:
// a signed bearer token plus the resolved account.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// GoogleIdentity carries the attributes asserted by Google after the
// consent flow. The redirect/consent dance itself happens in the HTTP
// layer; by the time this struct exists the assertion is verified.
type GoogleIdentity struct {
	Email   string
	Name    string
	Subject string
}

// ProfileUpdate holds optional profile mutations; empty fields are left
// untouched.
type ProfileUpdate struct {
	FullName string
	Password string
}

// Service implements the authentication core: credential verification,
// token issuance, OAuth2 account linking and profile operations.
type Service struct {
	store  Store
	tokens *TokenService
	now    func() time.Time
	relink RelinkPolicy
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithRelinkPolicy sets the policy for Google assertions against
// local-credential accounts. The default is RelinkUpgrade, matching the
// behavior this service has always had.
func WithRelinkPolicy(p RelinkPolicy) Option {
	return func(s *Service) {
		s.relink = p
	}
}

// NewService constructs the authentication service.
func NewService(store Store, tokens *TokenService, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tokens: tokens,
		now:    time.Now,
		relink: RelinkUpgrade,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail applies the fixed email case policy: trim and lower-case
// before any store access.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a local-credential account and issues a token.
// The store's uniqueness constraint is the authoritative duplicate guard;
// the pre-check only produces a friendlier error on the common path.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidInput
	}
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return Session{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return Session{}, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, err
	}
	now := s.now().UTC()
	u := &User{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		Provider:     ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return Session{}, err
	}
	return s.newSession(u)
}

// Login verifies local credentials and issues a token. Unknown email,
// non-local provider, missing hash and password mismatch all collapse
// into the same ErrInvalidCredentials so callers cannot enumerate
// accounts.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if u.Provider != ProviderLocal || u.PasswordHash == "" {
		return Session{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(u.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	sess, err := s.newSession(u)
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// LinkGoogle reconciles a verified Google assertion with the local
// account table: creates the account on first login, upgrades or rejects
// a local account per policy, and leaves an already-linked account
// untouched. Always issues a token on success.
func (s *Service) LinkGoogle(ctx context.Context, identity GoogleIdentity) (Session, LinkOutcome, error) {
	email := NormalizeEmail(identity.Email)
	subject := strings.TrimSpace(identity.Subject)
	if email == "" || subject == "" {
		return Session{}, "", ErrInvalidInput
	}

	u, err := s.store.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		now := s.now().UTC()
		u = &User{
			Email:           email,
			FullName:        strings.TrimSpace(identity.Name),
			Provider:        ProviderGoogle,
			ProviderSubject: subject,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if createErr := s.store.Create(ctx, u); createErr != nil {
			if !errors.Is(createErr, ErrDuplicateEmail) {
				return Session{}, "", createErr
			}
			// Lost a creation race; reconcile against the winner.
			u, err = s.store.FindByEmail(ctx, email)
			if err != nil {
				return Session{}, "", err
			}
			return s.linkExisting(ctx, u, subject)
		}
		sess, err := s.newSession(u)
		if err != nil {
			return Session{}, "", err
		}
		return sess, LinkCreated, nil
	case err != nil:
		return Session{}, "", err
	default:
		return s.linkExisting(ctx, u, subject)
	}
}

func (s *Service) linkExisting(ctx context.Context, u *User, subject string) (Session, LinkOutcome, error) {
	outcome := LinkExisting
	if u.Provider != ProviderGoogle {
		if s.relink == RelinkReject {
			return Session{}, "", ErrProviderConflict
		}
		u.Provider = ProviderGoogle
		u.ProviderSubject = subject
		u.UpdatedAt = s.now().UTC()
		if err := s.store.Update(ctx, u); err != nil {
			return Session{}, "", err
		}
		outcome = LinkUpgraded
	}
	sess, err := s.newSession(u)
	if err != nil {
		return Session{}, "", err
	}
	return sess, outcome, nil
}

// Resolve maps a validated token subject back to the account. Returns
// ErrNotFound when the account was deleted after the token was issued.
func (s *Service) Resolve(ctx context.Context, subject string) (*User, error) {
	return s.store.FindByEmail(ctx, NormalizeEmail(subject))
}

// Profile fetches an account by id.
func (s *Service) Profile(ctx context.Context, id string) (*User, error) {
	return s.store.Find(ctx, id)
}

// UpdateProfile applies non-empty fields. Password changes are rejected
// outright for Google-controlled accounts, regardless of what else the
// request carries. Timestamps are set here, explicitly, by the mutating
// component.
func (s *Service) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error) {
	u, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if password := strings.TrimSpace(update.Password); password != "" {
		if u.Provider == ProviderGoogle {
			return nil, ErrPasswordManaged
		}
		hash, err := HashPassword(password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if name := strings.TrimSpace(update.FullName); name != "" {
		u.FullName = name
	}
	u.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteAccount hard-deletes an account by id.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) newSession(u *User) (Session, error) {
	token, expiresAt, err := s.tokens.Issue(u.Email)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}
