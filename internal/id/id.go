package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// UUID generates a random (version 4) UUID.
func UUID() string {
	return uuid.NewString()
}

// Nonce returns 32 random bytes as 64 hex characters.
func Nonce() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// TxHash returns a random 0x-prefixed 32-byte hex hash.
func TxHash() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return "0x" + hex.EncodeToString(b)
}

// Number returns a random decimal string of exactly digits characters.
func Number(digits int) string {
	if digits <= 0 {
		return ""
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		n = big.NewInt(0)
	}
	s := n.String()
	return strings.Repeat("0", digits-len(s)) + s
}
