// Package session persists the signed-in state between commands: the bearer
// token, the last known user and the wallet credentials of a wallet login.
//
// The presence of a token is the only liveness signal. Nothing here checks
// expiry; the backend answers 401 for a stale token and the HTTP client then
// clears the session.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/getmockd/regdesk/pkg/domain"
)

// Fixed storage keys.
const (
	KeyToken           = "auth_token"
	KeyUser            = "auth_user"
	KeyWalletAddress   = "wallet_address"
	KeyWalletSignature = "wallet_signature"
	KeyWalletNonce     = "wallet_nonce"
)

// AuthKeys are cleared when the backend rejects the session.
var AuthKeys = []string{KeyToken, KeyUser}

// WalletKeys hold the credentials of the last wallet login.
var WalletKeys = []string{KeyWalletAddress, KeyWalletSignature, KeyWalletNonce}

// Store is a string key-value store. Get returns "" for absent keys.
type Store interface {
	Get(key string) string
	Set(key, value string) error
	Delete(keys ...string) error
}

// Token returns the stored bearer token.
func Token(s Store) string {
	return s.Get(KeyToken)
}

// LoggedIn reports whether a token is stored.
func LoggedIn(s Store) bool {
	return Token(s) != ""
}

// User returns the stored user. ok is false when none is stored or the
// stored value cannot be decoded.
func User(s Store) (u domain.User, ok bool) {
	raw := s.Get(KeyUser)
	if raw == "" {
		return domain.User{}, false
	}
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return domain.User{}, false
	}
	return u, true
}

// SaveLogin stores the token and user of a successful login.
func SaveLogin(s Store, resp domain.LoginResponse) error {
	data, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.Set(KeyToken, resp.Token); err != nil {
		return err
	}
	return s.Set(KeyUser, string(data))
}

// Wallet is the proof of a wallet login.
type Wallet struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Nonce     string `json:"nonce"`
}

// SaveWallet stores the wallet credentials.
func SaveWallet(s Store, w Wallet) error {
	for key, value := range map[string]string{
		KeyWalletAddress:   w.Address,
		KeyWalletSignature: w.Signature,
		KeyWalletNonce:     w.Nonce,
	} {
		if err := s.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// LoadWallet returns the stored wallet credentials.
func LoadWallet(s Store) (Wallet, bool) {
	w := Wallet{
		Address:   s.Get(KeyWalletAddress),
		Signature: s.Get(KeyWalletSignature),
		Nonce:     s.Get(KeyWalletNonce),
	}
	return w, w.Address != ""
}

// ClearAuth removes the token and user.
func ClearAuth(s Store) error {
	return s.Delete(AuthKeys...)
}

// ClearWallet removes the wallet proof and leaves the token and user.
func ClearWallet(s Store) error {
	return s.Delete(WalletKeys...)
}

// Clear removes every session key.
func Clear(s Store) error {
	return s.Delete(append(append([]string{}, AuthKeys...), WalletKeys...)...)
}
