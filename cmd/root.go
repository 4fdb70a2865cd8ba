package cmd

import (
	"github.com/urfave/cli/v2"
)

// App is the main urfave/cli.App for fedsetup
var App = &cli.App{
	Name:                 "fedsetup",
	Usage:                "Fedora workstation setup tool",
	EnableBashCompletion: true,
	Flags: []cli.Flag{
		debugFlag,
		traceFlag,
	},
	Commands: []*cli.Command{
		versionCommand,
		applyCommand,
		initCommand,
		completionCommand,
	},
}
