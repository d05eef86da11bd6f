package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// ErrInvalidSignature is returned when a signature does not recover to the
// claimed address.
var ErrInvalidSignature = errors.New("invalid wallet signature")

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsAddress reports whether s is a 0x-prefixed 20-byte hex address.
func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// SameAddress compares two addresses ignoring checksum case.
func SameAddress(a, b string) bool {
	return IsAddress(a) && IsAddress(b) && strings.EqualFold(a, b)
}

// Keccak256 hashes data with the legacy Keccak-256 used by Ethereum.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// HashMessage returns the EIP-191 personal_sign digest of message.
func HashMessage(message string) []byte {
	prefix := "\x19Ethereum Signed Message:\n" + strconv.Itoa(len(message))
	return Keccak256([]byte(prefix), []byte(message))
}

// ChecksumAddress returns the EIP-55 mixed-case form of address.
func ChecksumAddress(address string) string {
	lower := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X"))
	digest := hex.EncodeToString(Keccak256([]byte(lower)))
	var b strings.Builder
	b.WriteString("0x")
	for i, c := range lower {
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			c -= 'a' - 'A'
		}
		b.WriteRune(c)
	}
	return b.String()
}

// PubKeyAddress derives the address of a public key.
func PubKeyAddress(pub *secp256k1.PublicKey) string {
	raw := pub.SerializeUncompressed()
	return ChecksumAddress(hex.EncodeToString(Keccak256(raw[1:])[12:]))
}

// Key is a secp256k1 private key that signs like a browser wallet.
type Key struct {
	priv *secp256k1.PrivateKey
}

// GenerateKey creates a random key.
func GenerateKey() (*Key, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &Key{priv: priv}, nil
}

// ParseKey decodes a hex private key, with or without 0x.
func ParseKey(s string) (*Key, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid private key: want 32 bytes, got %d", len(raw))
	}
	return &Key{priv: secp256k1.PrivKeyFromBytes(raw)}, nil
}

// Hex returns the private key as 0x-prefixed hex.
func (k *Key) Hex() string {
	return "0x" + hex.EncodeToString(k.priv.Serialize())
}

// Address returns the checksummed address of the key.
func (k *Key) Address() string {
	return PubKeyAddress(k.priv.PubKey())
}

// SignMessage signs message with personal_sign semantics and returns the
// 65-byte r||s||v signature as 0x-prefixed hex, v being 27 or 28.
func (k *Key) SignMessage(message string) string {
	compact := ecdsa.SignCompact(k.priv, HashMessage(message), false)
	sig := make([]byte, 65)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	return "0x" + hex.EncodeToString(sig)
}

// Recover returns the address that produced signature over message.
func Recover(message, signature string) (string, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil || len(sig) != 65 {
		return "", ErrInvalidSignature
	}
	v := sig[64]
	if v < 27 {
		v += 27
	}
	if v != 27 && v != 28 {
		return "", ErrInvalidSignature
	}
	compact := make([]byte, 65)
	compact[0] = v
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, HashMessage(message))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return PubKeyAddress(pub), nil
}

// Verify checks that signature over message was made by address.
func Verify(address, message, signature string) error {
	signer, err := Recover(message, signature)
	if err != nil {
		return err
	}
	if !SameAddress(signer, address) {
		return ErrInvalidSignature
	}
	return nil
}
