package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/getmockd/regdesk/pkg/cli/internal/output"
)

// printResult outputs a single operation result.
//
// Contract: when --json is active, ONLY the JSON encoding of data is written
// to stdout. Human-readable prose (progress messages, hints) must go to stderr
// or be omitted entirely. textFn is called only in text mode.
func (e *env) printResult(cmd *cobra.Command, data any, textFn func(w io.Writer) error) error {
	if e.jsonOutput() {
		return output.JSON(cmd.OutOrStdout(), data)
	}
	return textFn(cmd.OutOrStdout())
}

// printRecord outputs one record: JSON with --json, YAML otherwise.
func (e *env) printRecord(cmd *cobra.Command, data any) error {
	return e.printResult(cmd, data, func(w io.Writer) error {
		return output.YAML(w, data)
	})
}

// printMessage outputs a short confirmation. In JSON mode it becomes
// {"message": ...}.
func (e *env) printMessage(cmd *cobra.Command, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return e.printResult(cmd, map[string]string{"message": msg}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, msg)
		return err
	})
}

// hint writes prose to stderr, never to stdout.
func hint(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
