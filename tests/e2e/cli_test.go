package e2e_test

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/getmockd/regdesk/pkg/app"
	"github.com/getmockd/regdesk/pkg/cli"
	"github.com/getmockd/regdesk/pkg/config"
	"github.com/getmockd/regdesk/pkg/server"
	"github.com/getmockd/regdesk/pkg/session"
)

// TestMain registers the regdesk command so scripts run it in-process.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"regdesk": cli.Execute,
	}))
}

// TestCLI runs every script in testdata. Each script gets its own mock
// backend at $BACKEND_URL and its own config directory.
func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			ts, err := startBackend()
			if err != nil {
				return err
			}
			env.Defer(ts.Close)
			env.Setenv("BACKEND_URL", ts.URL+server.BasePath)
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, ".config"))
			env.Setenv("XDG_DATA_HOME", filepath.Join(env.WorkDir, ".local", "share"))
			env.Setenv("REGDESK_LOG_LEVEL", "error")
			return nil
		},
	})
}

func startBackend() (*httptest.Server, error) {
	a, err := app.New(config.NewDefault(), app.WithSession(session.NewMemory()))
	if err != nil {
		return nil, err
	}
	srv, err := server.New(server.Deps{
		Licenses:    a.Licenses,
		Vehicles:    a.Vehicles,
		Violations:  a.Violations,
		Authorities: a.Authorities,
		News:        a.News,
		Auth:        a.Authenticator,
	}, server.WithLogger(a.Log))
	if err != nil {
		return nil, err
	}
	return httptest.NewServer(srv.Handler()), nil
}
