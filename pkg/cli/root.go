package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/getmockd/regdesk/pkg/app"
	"github.com/getmockd/regdesk/pkg/config"
	"github.com/getmockd/regdesk/pkg/logging"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// Options customizes the command tree. Zero values use the process
// environment and standard streams.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// LookupEnv reads environment variables.
	LookupEnv func(string) (string, bool)
	// Dir is searched for the local config file.
	Dir string
	// GlobalDir is searched for the global config file.
	GlobalDir string
	// AppOptions are passed to app.New.
	AppOptions []app.Option
	// Interactive forces prompts on or off. Nil detects a terminal on stdin.
	Interactive *bool
}

// globalFlags are the persistent flags of every command.
type globalFlags struct {
	configPath string
	json       bool
	apiURL     string
	live       bool
	mock       bool
	session    string
	logLevel   string
	verbose    bool
}

// env is the state shared by the commands of one invocation.
type env struct {
	opts  Options
	flags globalFlags

	cfg    *config.Config
	log    *slog.Logger
	closer io.Closer
	app    *app.App
}

// skipConfig marks commands that run without loading configuration.
const skipConfig = "regdesk/skip-config"

// NewRootCmd builds the command tree.
func NewRootCmd(opts Options) *cobra.Command {
	root, _ := newRoot(opts)
	return root
}

func newRoot(opts Options) (*cobra.Command, *env) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	e := &env{opts: opts}

	root := &cobra.Command{
		Use:   "regdesk",
		Short: "regdesk is the console of the vehicle registry",
		Long: `regdesk manages driver licenses, vehicles, traffic violations, authorities
and news of the vehicle registry.

Records come from a built-in mock data set unless USE_MOCK_DATA=false, in
which case they come from the backend at API_BASE_URL.

Configuration can be provided via flags, environment variables, or a
configuration file (.regdeskrc.yaml in the working directory or
$XDG_CONFIG_HOME/regdesk/config.yaml).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			return e.setup(cmd)
		},
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&e.flags.configPath, "config", "", "Config file path (replaces the local .regdeskrc.yaml)")
	pf.BoolVar(&e.flags.json, "json", false, "Output command results in JSON format")
	pf.StringVar(&e.flags.apiURL, "api-url", "", "Backend API base URL")
	pf.BoolVar(&e.flags.live, "live", false, "Use the live backend instead of mock data")
	pf.BoolVar(&e.flags.mock, "mock", false, "Use mock data even if configured otherwise")
	pf.StringVar(&e.flags.session, "session", "", "Session file path")
	pf.StringVar(&e.flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVarP(&e.flags.verbose, "verbose", "v", false, "Shorthand for --log-level debug")
	root.MarkFlagsMutuallyExclusive("live", "mock")

	root.AddCommand(
		newServeCmd(e),
		newLicensesCmd(e),
		newVehiclesCmd(e),
		newViolationsCmd(e),
		newAuthoritiesCmd(e),
		newNewsCmd(e),
		newLoginCmd(e),
		newWalletLoginCmd(e),
		newLogoutCmd(e),
		newWhoamiCmd(e),
		newWatchCmd(e),
		newConfigCmd(e),
		newVersionCmd(e),
	)
	return root, e
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute() int {
	return Run(os.Args[1:], Options{})
}

// Run runs the CLI with args and returns the exit code.
func Run(args []string, opts Options) int {
	root, e := newRoot(opts)
	defer func() { _ = e.close() }()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error: "+FormatError(err))
		return exitCode(err)
	}
	return 0
}

// setup resolves configuration, applies flag overrides and builds the
// logger.
func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{
		Path:      e.flags.configPath,
		Dir:       e.opts.Dir,
		GlobalDir: e.opts.GlobalDir,
		LookupEnv: e.opts.LookupEnv,
	})
	if err != nil {
		return err
	}

	overrides := []struct {
		flag, key, value string
	}{
		{"api-url", "apiBaseUrl", e.flags.apiURL},
		{"live", "useMockData", "false"},
		{"mock", "useMockData", "true"},
		{"session", "sessionFile", e.flags.session},
		{"log-level", "logLevel", e.flags.logLevel},
		{"verbose", "logLevel", "debug"},
		{"json", "json", fmt.Sprint(e.flags.json)},
	}
	for _, o := range overrides {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}
		if err := cfg.Set(o.key, o.value, config.SourceFlag); err != nil {
			return err
		}
	}
	e.cfg = cfg

	lc := cfg.Logging()
	lc.Output = e.opts.Stderr
	if cfg.LogFile != "" {
		log, closer, err := logging.Tee(lc, cfg.LogFile)
		if err != nil {
			return err
		}
		e.log, e.closer = log, closer
	} else {
		e.log = logging.New(lc)
	}
	return nil
}

// App builds the console on first use.
func (e *env) App() (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	if e.cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	opts := append([]app.Option{app.WithLogger(e.log)}, e.opts.AppOptions...)
	a, err := app.New(e.cfg, opts...)
	if err != nil {
		return nil, err
	}
	e.app = a
	return a, nil
}

func (e *env) close() error {
	if e.closer == nil {
		return nil
	}
	err := e.closer.Close()
	e.closer = nil
	return err
}

// jsonOutput reports whether results are printed as JSON.
func (e *env) jsonOutput() bool {
	if e.cfg != nil {
		return e.cfg.JSON
	}
	return e.flags.json
}

// interactive reports whether prompts may be shown.
func (e *env) interactive() bool {
	if e.opts.Interactive != nil {
		return *e.opts.Interactive
	}
	f, ok := e.opts.Stdin.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
