// regdesk is the command-line client for the vehicle and driver registry.
package main

import (
	"os"

	"github.com/getmockd/regdesk/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
