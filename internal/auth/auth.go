// Package auth handles CareerVani accounts: signup with bcrypt password
// hashing, login issuing HS256 JWTs, and request authentication.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/careervani/careervani/pkg/store"
)

var (
	// ErrEmailExists is returned by Signup for a registered email.
	ErrEmailExists = errors.New("auth: email already exists")

	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidInput is returned when the email or password is malformed.
	ErrInvalidInput = errors.New("auth: invalid email or password")

	// ErrInvalidToken is returned by Authenticate for a missing, expired or
	// forged token.
	ErrInvalidToken = errors.New("auth: invalid token")
)

const (
	issuer          = "careervani"
	defaultTokenTTL = 24 * time.Hour
	minPasswordLen  = 6
)

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	Email  string
}

// Claims is the JWT payload. Subject holds the decimal user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Token is a signed session token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Option configures a [Service].
type Option func(*Service)

// WithTokenTTL sets how long issued tokens stay valid. Defaults to 24h.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithBcryptCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// Service implements signup, login and token verification.
type Service struct {
	users  store.UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// New creates a Service. secret signs and verifies tokens and must not be
// empty.
func New(users store.UserStore, secret string, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("auth: user store must not be nil")
	}
	if secret == "" {
		return nil, errors.New("auth: jwt secret must not be empty")
	}
	s := &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    defaultTokenTTL,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Signup creates an account.
func (s *Service) Signup(ctx context.Context, email, password string) (*store.User, error) {
	email, err := validate(email, password)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password longer than 72 bytes", ErrInvalidInput)
		}
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, email, hash)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("auth: signup: %w", err)
	}
	return u, nil
}

// Login verifies the password and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*Token, *store.User, error) {
	u, err := s.users.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("auth: login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tok, err := s.Issue(u)
	if err != nil {
		return nil, nil, err
	}
	return tok, u, nil
}

// Issue signs a token for u.
func (s *Service) Issue(u *store.User) (*Token, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return &Token{Value: signed, ExpiresAt: exp}, nil
}

// Authenticate verifies a token and returns the caller's identity.
func (s *Service) Authenticate(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return &Identity{UserID: id, Email: claims.Email}, nil
}

// validate normalises email and checks the password length.
func validate(email, password string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return "", fmt.Errorf("%w: password shorter than %d characters", ErrInvalidInput, minPasswordLen)
	}
	return email, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Context helpers
// ─────────────────────────────────────────────────────────────────────────────

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by the middleware, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
