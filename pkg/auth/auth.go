// Package auth is the local authenticator used in mock mode and by the mock
// backend. It checks passwords of the seeded accounts, runs the wallet
// challenge-response and issues HS256 session tokens.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/getmockd/regdesk/internal/id"
	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/logging"
	"github.com/getmockd/regdesk/pkg/seed"
	"github.com/getmockd/regdesk/pkg/wallet"
)

// Defaults.
const (
	DefaultTokenTTL = 24 * time.Hour
	DefaultNonceTTL = 5 * time.Minute
	Issuer          = "regdesk"
)

type account struct {
	user domain.User
	hash []byte
}

type challenge struct {
	nonce  string
	issued time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithSecret sets the token signing key. Without it a random key is used,
// so tokens do not survive a restart.
func WithSecret(secret []byte) Option {
	return func(a *Authenticator) { a.secret = secret }
}

// WithTokenTTL sets the token lifetime.
func WithTokenTTL(d time.Duration) Option {
	return func(a *Authenticator) { a.tokenTTL = d }
}

// WithNonceTTL sets how long a wallet challenge stays valid.
func WithNonceTTL(d time.Duration) Option {
	return func(a *Authenticator) { a.nonceTTL = d }
}

// WithWalletRole sets the role given to wallets that sign in for the first
// time.
func WithWalletRole(r domain.Role) Option {
	return func(a *Authenticator) { a.walletRole = r }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(a *Authenticator) { a.cost = cost }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *Authenticator) { a.log = log }
}

// Authenticator is safe for concurrent use.
type Authenticator struct {
	secret     []byte
	tokenTTL   time.Duration
	nonceTTL   time.Duration
	walletRole domain.Role
	cost       int
	now        func() time.Time
	log        *slog.Logger

	mu         sync.Mutex
	byName     map[string]*account
	byID       map[string]*account
	byAddress  map[string]*account
	challenges map[string]challenge
}

// New hashes the seeded passwords and returns an authenticator.
func New(accounts []seed.Account, opts ...Option) (*Authenticator, error) {
	a := &Authenticator{
		tokenTTL:   DefaultTokenTTL,
		nonceTTL:   DefaultNonceTTL,
		walletRole: domain.RoleOfficer,
		cost:       bcrypt.DefaultCost,
		now:        time.Now,
		log:        logging.Nop(),
		byName:     make(map[string]*account),
		byID:       make(map[string]*account),
		byAddress:  make(map[string]*account),
		challenges: make(map[string]challenge),
	}
	for _, opt := range opts {
		opt(a)
	}
	if len(a.secret) == 0 {
		a.secret = make([]byte, 32)
		if _, err := rand.Read(a.secret); err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
	}

	for _, acc := range accounts {
		if acc.Username == "" {
			return nil, errors.New("seed account without username")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), a.cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", acc.Username, err)
		}
		u := acc.User
		if u.ID == "" {
			u.ID = id.UUID()
		}
		a.add(&account{user: u, hash: hash})
	}
	return a, nil
}

func (a *Authenticator) add(acc *account) {
	a.byName[strings.ToLower(acc.user.Username)] = acc
	a.byID[acc.user.ID] = acc
	if acc.user.WalletAddress != "" {
		a.byAddress[strings.ToLower(acc.user.WalletAddress)] = acc
	}
}

// Users returns the known users.
func (a *Authenticator) Users() []domain.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.User, 0, len(a.byID))
	for _, acc := range a.byID {
		out = append(out, acc.user)
	}
	return out
}

// Login checks a username and password and issues a token.
func (a *Authenticator) Login(_ context.Context, username, password string) (domain.LoginResponse, error) {
	a.mu.Lock()
	acc, ok := a.byName[strings.ToLower(strings.TrimSpace(username))]
	a.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		a.log.Info("login rejected", "username", username)
		return domain.LoginResponse{}, &apperr.UnauthorizedError{Message: "invalid username or password"}
	}
	a.log.Info("login", "username", acc.user.Username)
	return a.Issue(acc.user)
}

// WalletNonce issues a one-time challenge for address. A new challenge
// replaces any earlier one for the same address.
func (a *Authenticator) WalletNonce(_ context.Context, address string) (domain.NonceResponse, error) {
	if !wallet.IsAddress(address) {
		return domain.NonceResponse{}, &apperr.ValidationError{Field: "address", Message: "must be a 0x-prefixed 20-byte hex address"}
	}
	nonce, err := id.Nonce()
	if err != nil {
		return domain.NonceResponse{}, err
	}
	now := a.now()
	a.mu.Lock()
	a.challenges[strings.ToLower(address)] = challenge{nonce: nonce, issued: now}
	a.mu.Unlock()

	return domain.NonceResponse{
		Nonce:     nonce,
		Message:   wallet.ChallengeMessage(wallet.ChecksumAddress(address), nonce, now.Unix()),
		Timestamp: now.Unix(),
	}, nil
}

// WalletLogin verifies a signed challenge and issues a token. The nonce is
// consumed by the attempt whether or not the signature checks out. Unknown
// addresses are registered with the configured wallet role.
func (a *Authenticator) WalletLogin(_ context.Context, req domain.WalletLoginRequest) (domain.LoginResponse, error) {
	key := strings.ToLower(req.Address)
	a.mu.Lock()
	ch, ok := a.challenges[key]
	if ok && ch.nonce == req.Nonce {
		delete(a.challenges, key)
	}
	a.mu.Unlock()

	if !ok || req.Nonce == "" || ch.nonce != req.Nonce {
		return domain.LoginResponse{}, &apperr.UnauthorizedError{Message: "invalid or used nonce"}
	}
	if a.now().Sub(ch.issued) > a.nonceTTL {
		return domain.LoginResponse{}, &apperr.UnauthorizedError{Message: "challenge expired"}
	}
	parsed, err := wallet.ParseChallenge(req.Message)
	if err != nil || parsed.Nonce != req.Nonce || !wallet.SameAddress(parsed.Address, req.Address) {
		return domain.LoginResponse{}, &apperr.UnauthorizedError{Message: "signed message does not match the challenge"}
	}
	if err := wallet.Verify(req.Address, req.Message, req.Signature); err != nil {
		a.log.Info("wallet login rejected", "address", req.Address)
		return domain.LoginResponse{}, &apperr.UnauthorizedError{Message: "signature verification failed"}
	}

	a.mu.Lock()
	acc, ok := a.byAddress[key]
	if !ok {
		checksum := wallet.ChecksumAddress(req.Address)
		acc = &account{user: domain.User{
			ID:            id.UUID(),
			Username:      checksum,
			FullName:      "Wallet " + checksum[:6] + "…" + checksum[len(checksum)-4:],
			Role:          a.walletRole,
			WalletAddress: checksum,
			CreatedAt:     a.now().UTC(),
		}}
		a.add(acc)
		a.log.Info("wallet registered", "address", checksum, "role", a.walletRole)
	}
	user := acc.user
	a.mu.Unlock()

	return a.Issue(user)
}

// Claims are the session token claims.
type Claims struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	Wallet   string      `json:"wallet,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a session token for u.
func (a *Authenticator) Issue(u domain.User) (domain.LoginResponse, error) {
	now := a.now()
	expires := now.Add(a.tokenTTL)
	claims := Claims{
		Username: u.Username,
		Role:     u.Role,
		Wallet:   u.WalletAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        id.UUID(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return domain.LoginResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return domain.LoginResponse{Token: token, ExpiresAt: expires, User: u}, nil
}

// Verify parses a session token and returns its user.
func (a *Authenticator) Verify(token string) (domain.User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return domain.User{}, &apperr.UnauthorizedError{Message: "invalid or expired token"}
	}

	a.mu.Lock()
	acc, ok := a.byID[claims.Subject]
	a.mu.Unlock()
	if !ok {
		return domain.User{}, &apperr.UnauthorizedError{Message: "unknown user"}
	}
	return acc.user, nil
}

// Me returns the user of token. It matches the shape of the HTTP client's
// auth module so the CLI can use either.
func (a *Authenticator) Me(_ context.Context, token string) (domain.User, error) {
	return a.Verify(token)
}
