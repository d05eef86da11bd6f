package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/regdesk/pkg/audit"
	"github.com/getmockd/regdesk/pkg/cli/internal/ports"
	"github.com/getmockd/regdesk/pkg/config"
	"github.com/getmockd/regdesk/pkg/ratelimit"
	"github.com/getmockd/regdesk/pkg/server"
)

func newServeCmd(e *env) *cobra.Command {
	var (
		listen    string
		authRate  float64
		authBurst int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mock REST backend over the mock data set",
		Long: `Run the mock REST backend over the mock data set.

The server exposes every resource under /api/v1 with the same contract the
live backend has, so a second console can point API_BASE_URL at it and run
with USE_MOCK_DATA=false. Changes are kept in memory until the server stops.`,
		Example: `  # Serve on the default address
  regdesk serve

  # Serve extra seed files on another port
  REGDESK_SEED_DIR=./seed regdesk serve --listen 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("listen") {
				if err := e.cfg.Set("listen", listen, config.SourceFlag); err != nil {
					return err
				}
			}
			if e.cfg.Mode() == config.ModeLive {
				return errors.New("serve runs over the mock data set; drop USE_MOCK_DATA=false or pass --mock")
			}
			a, err := e.App()
			if err != nil {
				return err
			}
			auditLog, err := audit.Open(e.cfg.AuditLog)
			if err != nil {
				return err
			}
			defer auditLog.Close()

			srv, err := server.New(server.Deps{
				Licenses:    a.Licenses,
				Vehicles:    a.Vehicles,
				Violations:  a.Violations,
				Authorities: a.Authorities,
				News:        a.News,
				Auth:        a.Authenticator,
			}, server.WithLogger(a.Log), server.WithAuthRateLimit(authRate, authBurst), server.WithAuditLog(auditLog))
			if err != nil {
				return err
			}

			ln, err := ports.Listen(e.cfg.Listen)
			if err != nil {
				return err
			}
			if e.cfg.JWTSecret == "" {
				hint(cmd, "Tokens are signed with a random secret; set jwtSecret to keep sessions across restarts")
			}
			hint(cmd, "Serving mock registry on http://%s%s (Ctrl+C to stop)", ln.Addr(), server.BasePath)
			hint(cmd, "Metrics on http://%s/metrics", ln.Addr())
			if e.cfg.AuditLog != "" {
				hint(cmd, "Recording changes and sign-ins to %s", e.cfg.AuditLog)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx, ln)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&listen, "listen", "l", config.DefaultListen, "Address to listen on")
	f.Float64Var(&authRate, "auth-rate", ratelimit.DefaultRate, "Sign-in requests per second allowed per client IP (0 disables the limit)")
	f.IntVar(&authBurst, "auth-burst", ratelimit.DefaultBurst, "Sign-in requests a client may send at once")
	return cmd
}
