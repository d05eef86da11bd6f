package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/wallet"
)

// loginResult is what login commands print. The token stays in the session
// file.
type loginResult struct {
	User      domain.User `json:"user"`
	ExpiresAt string      `json:"expires_at"`
	Wallet    string      `json:"wallet,omitempty"`
}

func newLoginCmd(e *env) *cobra.Command {
	var (
		username      string
		password      string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a username and password",
		Example: `  # Prompt for credentials
  regdesk login

  # Non-interactive
  echo "$PASSWORD" | regdesk login -u officer --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if username == "" || password == "" {
				if !e.interactive() {
					return &apperr.ValidationError{Message: "username and password are required (use -u and -p or --password-stdin)"}
				}
				form := huh.NewForm(
					huh.NewGroup(
						huh.NewInput().
							Title("Username").
							Value(&username).
							Validate(func(s string) error {
								if strings.TrimSpace(s) == "" {
									return errors.New("username is required")
								}
								return nil
							}),
						huh.NewInput().
							Title("Password").
							EchoMode(huh.EchoModePassword).
							Value(&password),
					),
				)
				if err := form.Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return &apperr.UserCancelledError{Op: "login"}
					}
					return err
				}
			}

			a, err := e.App()
			if err != nil {
				return err
			}
			resp, err := a.Auth.Login(cmd.Context(), strings.TrimSpace(username), password)
			if err != nil {
				return err
			}
			res := loginResult{User: resp.User, ExpiresAt: resp.ExpiresAt.Format("2006-01-02 15:04 MST")}
			return e.printResult(cmd, res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Logged in as %s (%s), session expires %s\n", resp.User.Username, resp.User.Role, res.ExpiresAt)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
	return cmd
}

// streamNotifier forwards wallet flow messages to stderr.
type streamNotifier struct {
	w io.Writer
}

func (n streamNotifier) Info(msg string)  { fmt.Fprintln(n.w, msg) }
func (n streamNotifier) Error(msg string) { fmt.Fprintln(n.w, "Error: "+msg) }

func newWalletLoginCmd(e *env) *cobra.Command {
	var (
		keyHex   string
		generate bool
		yes      bool
		provider string
	)
	cmd := &cobra.Command{
		Use:   "wallet-login",
		Short: "Sign in by signing a challenge with a wallet key",
		Long: `Sign in by signing a challenge with a wallet key.

The backend issues a one-time nonce, the wallet signs the challenge message
(EIP-191 personal_sign) and the backend verifies the signature. Unknown
wallets are registered with the configured walletRole.

Keys come from --key, the walletKey setting (REGDESK_WALLET_KEY), or a new
throwaway key with --generate.`,
		Example: `  # Sign with the configured key, confirming in the terminal
  regdesk wallet-login

  # Throwaway key without confirmation
  regdesk wallet-login --generate --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			connectors, err := walletConnectors(e, cmd, keyHex, generate, yes)
			if err != nil {
				return err
			}
			c, err := pickConnector(e, connectors, provider)
			if err != nil {
				return err
			}

			a, err := e.App()
			if err != nil {
				return err
			}
			flow := a.Flow(wallet.WithNotifier(streamNotifier{w: cmd.ErrOrStderr()}))
			resp, err := flow.Connect(cmd.Context(), c)
			if err != nil {
				return err
			}
			acct, _ := flow.Account()
			res := loginResult{
				User:      resp.User,
				ExpiresAt: resp.ExpiresAt.Format("2006-01-02 15:04 MST"),
				Wallet:    wallet.ChecksumAddress(acct.Address),
			}
			return e.printResult(cmd, res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Signed in with wallet %s as %s (%s)\n", res.Wallet, resp.User.Username, resp.User.Role)
				return err
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&keyHex, "key", "", "Hex-encoded secp256k1 private key")
	f.BoolVar(&generate, "generate", false, "Sign with a new throwaway key")
	f.BoolVarP(&yes, "yes", "y", false, "Sign without asking for confirmation")
	f.StringVar(&provider, "provider", "", "Wallet provider id when several are available")
	return cmd
}

// walletConnectors lists the key-backed wallets available to this run.
func walletConnectors(e *env, cmd *cobra.Command, keyHex string, generate, yes bool) ([]wallet.Connector, error) {
	var opts []wallet.KeyOption
	if !yes {
		if !e.interactive() {
			return nil, &apperr.ValidationError{Field: "yes", Message: "signature confirmation needs a terminal; pass --yes to sign without it"}
		}
		opts = append(opts, wallet.WithConfirm(wallet.PromptConfirm))
	}
	with := func(id, name string) []wallet.KeyOption {
		return append([]wallet.KeyOption{wallet.WithName(id, name)}, opts...)
	}

	var providers []wallet.Provider
	if keyHex != "" {
		key, err := wallet.ParseKey(keyHex)
		if err != nil {
			return nil, &apperr.ValidationError{Field: "key", Message: err.Error()}
		}
		providers = append(providers, wallet.NewKeyConnector(key, with("flag-key", "Key from --key")...))
	}
	if e.cfg.WalletKey != "" {
		key, err := wallet.ParseKey(e.cfg.WalletKey)
		if err != nil {
			return nil, &apperr.ValidationError{Field: "walletKey", Message: err.Error()}
		}
		providers = append(providers, wallet.NewKeyConnector(key, with("config-key", "Configured wallet key")...))
	}
	if generate {
		key, err := wallet.GenerateKey()
		if err != nil {
			return nil, err
		}
		hint(cmd, "Generated wallet %s", key.Address())
		providers = append(providers, wallet.NewKeyConnector(key, with("new-key", "New throwaway key")...))
	}

	connectors := wallet.Available(providers...)
	if len(connectors) == 0 {
		return nil, &apperr.ValidationError{Field: "key", Message: "no wallet available; pass --key, set walletKey or use --generate"}
	}
	return connectors, nil
}

// pickConnector selects by id, asks when several remain, and otherwise
// takes the only one.
func pickConnector(e *env, connectors []wallet.Connector, id string) (wallet.Connector, error) {
	if id != "" {
		for _, c := range connectors {
			if c.ID() == id {
				return c, nil
			}
		}
		ids := make([]string, len(connectors))
		for i, c := range connectors {
			ids[i] = c.ID()
		}
		return nil, &apperr.ValidationError{Field: "provider", Message: fmt.Sprintf("unknown provider %q (available: %s)", id, strings.Join(ids, ", "))}
	}
	if len(connectors) == 1 || !e.interactive() {
		return connectors[0], nil
	}

	options := make([]huh.Option[string], len(connectors))
	for i, c := range connectors {
		options[i] = huh.NewOption(c.Name(), c.ID())
	}
	err := huh.NewSelect[string]().
		Title("Which wallet do you want to sign in with?").
		Options(options...).
		Value(&id).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, &apperr.UserCancelledError{Op: "wallet selection"}
		}
		return nil, err
	}
	return pickConnector(e, connectors, id)
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			if err := a.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			return e.printMessage(cmd, "Logged out")
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			u, err := a.Auth.Me(cmd.Context())
			if err != nil {
				return err
			}
			return e.printResult(cmd, u, func(w io.Writer) error {
				if _, err := fmt.Fprintf(w, "%s (%s)\n", u.Username, u.Role); err != nil {
					return err
				}
				if u.FullName != "" {
					fmt.Fprintln(w, u.FullName)
				}
				if u.WalletAddress != "" {
					fmt.Fprintln(w, "wallet "+u.WalletAddress)
				}
				return nil
			})
		},
	}
}
