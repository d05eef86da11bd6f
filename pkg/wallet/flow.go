// Package wallet signs a user in by proving control of a wallet address.
//
// The flow is challenge-response: connect a wallet, fetch a one-time nonce
// from the backend, have the wallet sign a message that embeds it, and
// trade the signature for a session. No private key ever leaves the
// connector. Flow drives this as an explicit state machine so a rejected or
// failed attempt always lands in a clean, retryable state.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/logging"
	"github.com/getmockd/regdesk/pkg/session"
)

// State is the stage of a wallet sign-in.
type State int

// Flow states.
const (
	Idle State = iota
	Connecting
	AwaitingSignature
	Signed
	Rejected
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case AwaitingSignature:
		return "awaiting_signature"
	case Signed:
		return "signed"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Busy reports whether a sign-in is in progress.
func (s State) Busy() bool {
	return s == Connecting || s == AwaitingSignature
}

// ErrBusy is returned when Connect is called while another attempt runs.
var ErrBusy = errors.New("wallet sign-in already in progress")

// Backend issues challenges and exchanges signed challenges for sessions.
// The HTTP client's auth module and the local authenticator both satisfy it.
type Backend interface {
	WalletNonce(ctx context.Context, address string) (domain.NonceResponse, error)
	WalletLogin(ctx context.Context, req domain.WalletLoginRequest) (domain.LoginResponse, error)
}

// Notifier shows short messages to the user.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Log *slog.Logger
}

// Info logs msg at info level.
func (n LogNotifier) Info(msg string) { n.Log.Info(msg) }

// Error logs msg at error level.
func (n LogNotifier) Error(msg string) { n.Log.Error(msg) }

// Option configures a Flow.
type Option func(*Flow)

// WithNotifier sets where user-facing messages go.
func WithNotifier(n Notifier) Option {
	return func(f *Flow) { f.notify = n }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(f *Flow) { f.log = log }
}

// OnLogin registers fn to run after a successful sign-in has been stored.
func OnLogin(fn func(domain.LoginResponse)) Option {
	return func(f *Flow) { f.onLogin = fn }
}

// Flow runs wallet sign-ins. It is safe for concurrent use, but only one
// attempt runs at a time.
type Flow struct {
	backend Backend
	session session.Store
	notify  Notifier
	log     *slog.Logger
	onLogin func(domain.LoginResponse)

	mu       sync.Mutex
	state    State
	selected Connector
	autoSign bool
	account  Account
}

// NewFlow returns an idle flow.
func NewFlow(backend Backend, store session.Store, opts ...Option) *Flow {
	f := &Flow{
		backend: backend,
		session: store,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.notify == nil {
		f.notify = LogNotifier{Log: f.log}
	}
	return f
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Selected returns the connector of the running attempt, or nil.
func (f *Flow) Selected() Connector {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

// AutoSignArmed reports whether the flow will request a signature on the
// next completed connection.
func (f *Flow) AutoSignArmed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.autoSign
}

// Account returns the connected account, if any.
func (f *Flow) Account() (Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.account, f.account.Address != ""
}

// Connect signs in with c. It arms auto-sign, connects, fetches a
// challenge, asks the wallet to sign it exactly once, stores the proof and
// trades it for a session. A user rejection returns a UserCancelledError
// and leaves the flow Rejected; any other failure leaves it Failed. In both
// cases the wallet is disconnected and the flow can be retried.
func (f *Flow) Connect(ctx context.Context, c Connector) (domain.LoginResponse, error) {
	f.mu.Lock()
	if f.state.Busy() {
		f.mu.Unlock()
		return domain.LoginResponse{}, ErrBusy
	}
	f.selected = c
	f.autoSign = true
	f.state = Connecting
	f.account = Account{}
	f.mu.Unlock()

	f.log.Debug("connecting wallet", "provider", c.ID())
	acct, err := c.Connect(ctx)
	if err != nil {
		return domain.LoginResponse{}, f.fail(ctx, c, "connect", err)
	}
	if !f.beginSigning(acct) {
		return domain.LoginResponse{}, f.fail(ctx, c, "connect", errors.New("signature request was not armed"))
	}

	challenge, err := f.backend.WalletNonce(ctx, acct.Address)
	if err != nil {
		return domain.LoginResponse{}, f.fail(ctx, c, "challenge", err)
	}
	message := challenge.Message
	if message == "" {
		message = ChallengeMessage(acct.Address, challenge.Nonce, challenge.Timestamp)
	}

	signature, err := c.SignMessage(ctx, acct.Address, message)
	if err != nil {
		return domain.LoginResponse{}, f.fail(ctx, c, "sign", err)
	}

	proof := session.Wallet{Address: acct.Address, Signature: signature, Nonce: challenge.Nonce}
	if err := session.SaveWallet(f.session, proof); err != nil {
		return domain.LoginResponse{}, f.fail(ctx, c, "store", err)
	}
	resp, err := f.backend.WalletLogin(ctx, domain.WalletLoginRequest{
		Address:   acct.Address,
		Signature: signature,
		Message:   message,
		Nonce:     challenge.Nonce,
	})
	if err != nil {
		_ = session.ClearWallet(f.session)
		return domain.LoginResponse{}, f.fail(ctx, c, "login", err)
	}
	if err := session.SaveLogin(f.session, resp); err != nil {
		return domain.LoginResponse{}, f.fail(ctx, c, "store", err)
	}

	f.mu.Lock()
	f.state = Signed
	f.selected = nil
	f.autoSign = false
	f.mu.Unlock()

	f.log.Info("wallet sign-in complete", "address", acct.Address)
	if f.onLogin != nil {
		f.onLogin(resp)
	}
	return resp, nil
}

// beginSigning consumes the auto-sign arming. It returns false when the
// flow was not armed, which means no signature may be requested.
func (f *Flow) beginSigning(acct Account) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.autoSign {
		return false
	}
	f.autoSign = false
	f.account = acct
	f.state = AwaitingSignature
	return true
}

func (f *Flow) fail(ctx context.Context, c Connector, op string, err error) error {
	if derr := c.Disconnect(ctx); derr != nil {
		f.log.Debug("wallet disconnect failed", "error", derr)
	}

	cancelled := IsUserCancelled(err)
	f.mu.Lock()
	f.selected = nil
	f.autoSign = false
	f.account = Account{}
	if cancelled {
		f.state = Rejected
	} else {
		f.state = Failed
	}
	f.mu.Unlock()

	if cancelled {
		f.notify.Info("Wallet request cancelled. You can try again.")
		return &apperr.UserCancelledError{Op: "wallet " + op}
	}
	f.notify.Error("Wallet sign-in failed: " + err.Error())
	return fmt.Errorf("wallet %s: %w", op, err)
}

// Restore records an account the wallet reconnected on its own, such as a
// saved session at startup. It never requests a signature.
func (f *Flow) Restore(acct Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Busy() {
		return
	}
	f.account = acct
	f.selected = nil
	f.autoSign = false
}

// Logout disconnects c, if given, clears the stored session and returns
// the flow to Idle.
func (f *Flow) Logout(ctx context.Context, c Connector) error {
	if c != nil {
		if err := c.Disconnect(ctx); err != nil {
			f.log.Debug("wallet disconnect failed", "error", err)
		}
	}
	f.mu.Lock()
	f.state = Idle
	f.selected = nil
	f.autoSign = false
	f.account = Account{}
	f.mu.Unlock()
	return session.Clear(f.session)
}

var cancelMarkers = []string{
	"user rejected",
	"user denied",
	"user cancelled",
	"user canceled",
	"rejected by user",
	"request rejected",
	"user aborted",
}

// coder is implemented by wallet errors that carry an EIP-1193 code.
type coder interface {
	Code() int
}

// IsUserCancelled reports whether err means the user declined a wallet
// prompt, as opposed to something going wrong.
func IsUserCancelled(err error) bool {
	if err == nil {
		return false
	}
	if apperr.IsCancelled(err) {
		return true
	}
	var c coder
	if errors.As(err, &c) && c.Code() == 4001 {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range cancelMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
