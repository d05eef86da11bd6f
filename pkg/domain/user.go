package domain

import "time"

// Role is the access level of a console user.
type Role string

// User roles.
const (
	RoleAdmin   Role = "admin"
	RoleOfficer Role = "officer"
	RoleViewer  Role = "viewer"
)

// User is an authenticated console operator.
type User struct {
	ID            string    `json:"id" yaml:"id"`
	Username      string    `json:"username" yaml:"username"`
	FullName      string    `json:"full_name" yaml:"full_name"`
	Email         string    `json:"email,omitempty" yaml:"email"`
	Role          Role      `json:"role" yaml:"role"`
	WalletAddress string    `json:"wallet_address,omitempty" yaml:"wallet_address"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// CanWrite reports whether the user may mutate registry records.
func (u User) CanWrite() bool {
	return u.Role == RoleAdmin || u.Role == RoleOfficer
}

// LoginRequest is the body of a password login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by both password and wallet logins.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// NonceRequest asks the backend for a wallet challenge.
type NonceRequest struct {
	Address string `json:"address"`
}

// NonceResponse carries a wallet challenge.
type NonceResponse struct {
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// WalletLoginRequest proves control of a wallet address.
type WalletLoginRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
	Nonce     string `json:"nonce"`
}
