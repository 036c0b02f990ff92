package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/neo-testbed/cli/runner"
	"github.com/nspcc-dev/neo-testbed/cli/testbed"
	"github.com/nspcc-dev/neo-testbed/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "neo-testbed\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a neo-testbed instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "neo-testbed"
	ctl.Version = config.Version
	ctl.Usage = "Integration test runner for Neo networks"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, runner.NewCommands()...)
	ctl.Commands = append(ctl.Commands, testbed.NewCommands()...)
	return ctl
}
