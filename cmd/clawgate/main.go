// Command clawgate is a demo CLI exercising the approval-gate policy
// engine end to end: evaluating one tool call, inspecting and dry-running
// the session allowlist, validating a config file, and relaying a
// subagent's approval requests.
package main

import (
	"fmt"
	"os"

	"github.com/wrenlabs/clawgate/cmd/clawgate/commands"
)

var version = "dev"

func main() {
	if err := commands.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
