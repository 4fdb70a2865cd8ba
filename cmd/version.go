package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/fedsetup/fedsetup/analytics"
	"github.com/fedsetup/fedsetup/version"
)

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "Output fedsetup version",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:   "machine-id",
			Hidden: true,
		},
	},
	Action: func(ctx *cli.Context) error {
		fmt.Printf("version: %s\n", version.Version)
		fmt.Printf("commit: %s\n", version.GitCommit)
		if ctx.Bool("machine-id") {
			id, err := analytics.MachineID()
			if err != nil {
				id = "failed: " + err.Error()
			}
			fmt.Printf("machine-id: %s\n", id)
		}
		return nil
	},
}
