package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/regdesk/pkg/domain"
)

func newWatchCmd(e *env) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow record changes on the backend",
		Long: `Follow record changes on the backend.

Each change made through the backend is printed as it happens. With --json
every change is one JSON object per line. Needs the live backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			events, err := a.Events()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			seen := 0
			hint(cmd, "Watching %s (Ctrl+C to stop)", events.URL())
			return events.Watch(ctx, func(n domain.Notification) {
				if e.jsonOutput() {
					_ = enc.Encode(n)
				} else {
					fmt.Fprintf(out, "%s  %-24s %s\n", n.CreatedAt.Local().Format("15:04:05"), n.Title, n.Message)
				}
				seen++
				if count > 0 && seen >= count {
					cancel()
				}
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Stop after this many changes")
	return cmd
}
