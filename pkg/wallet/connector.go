package wallet

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/huh"

	"github.com/getmockd/regdesk/pkg/apperr"
)

// DefaultChainID is reported by key-backed connectors.
const DefaultChainID = 1

// ConfirmFunc asks the user whether to sign message. Returning false
// rejects the request.
type ConfirmFunc func(ctx context.Context, address, message string) (bool, error)

// KeyConnector is a Connector backed by a local private key. The CLI uses it
// in place of a browser wallet extension.
type KeyConnector struct {
	id      string
	name    string
	key     *Key
	confirm ConfirmFunc

	mu        sync.Mutex
	connected bool
}

// KeyOption configures a KeyConnector.
type KeyOption func(*KeyConnector)

// WithConfirm installs a prompt shown before each signature.
func WithConfirm(fn ConfirmFunc) KeyOption {
	return func(k *KeyConnector) { k.confirm = fn }
}

// WithName sets the id and display name.
func WithName(id, name string) KeyOption {
	return func(k *KeyConnector) {
		k.id = id
		k.name = name
	}
}

// NewKeyConnector returns a connector that signs with key.
func NewKeyConnector(key *Key, opts ...KeyOption) *KeyConnector {
	k := &KeyConnector{id: "local-key", name: "Local key", key: key}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// ID returns the connector id.
func (k *KeyConnector) ID() string { return k.id }

// Name returns the display name.
func (k *KeyConnector) Name() string { return k.name }

// Connected reports whether Connect succeeded and Disconnect has not run.
func (k *KeyConnector) Connected() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.connected
}

// Connect returns the key's account.
func (k *KeyConnector) Connect(ctx context.Context) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	k.mu.Lock()
	k.connected = true
	k.mu.Unlock()
	return Account{Address: k.key.Address(), ChainID: DefaultChainID}, nil
}

// SignMessage signs message after the optional confirmation.
func (k *KeyConnector) SignMessage(ctx context.Context, address, message string) (string, error) {
	if !k.Connected() {
		return "", errors.New("wallet not connected")
	}
	if !SameAddress(address, k.key.Address()) {
		return "", errors.New("address does not belong to this wallet")
	}
	if k.confirm != nil {
		ok, err := k.confirm(ctx, address, message)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", &apperr.UserCancelledError{Op: "sign"}
		}
	}
	return k.key.SignMessage(message), nil
}

// Disconnect forgets the connection.
func (k *KeyConnector) Disconnect(context.Context) error {
	k.mu.Lock()
	k.connected = false
	k.mu.Unlock()
	return nil
}

// PromptConfirm is a ConfirmFunc that shows the message in a terminal
// prompt. Aborting the prompt counts as a rejection.
func PromptConfirm(_ context.Context, address, message string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title("Sign in as " + address + "?").
		Description(message).
		Affirmative("Sign").
		Negative("Reject").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
