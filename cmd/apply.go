package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/fedsetup/fedsetup/action"
	"github.com/fedsetup/fedsetup/pkg/host"
)

var applyCommand = &cli.Command{
	Name:  "apply",
	Usage: "Apply a setup configuration to this machine",
	Flags: []cli.Flag{
		configFlag,
		dryRunFlag,
		forceFlag,
		&cli.StringFlag{
			Name:      "backup",
			Usage:     "Override the backup source location from the configuration",
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:  "packages",
			Usage: "Run the package management stage",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "system",
			Usage: "Run the system configuration stage",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "home",
			Usage: "Run the home directory stage",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "scripts",
			Usage: "Run the installer script stage",
			Value: true,
		},
		debugFlag,
		traceFlag,
		analyticsFlag,
		upgradeCheckFlag,
	},
	Before: actions(initLogging, initConfig, initAnalytics, upgradeCheck),
	After:  actions(closeAnalytics),
	Action: func(ctx *cli.Context) error {
		cfg, err := readConfig(ctx)
		if err != nil {
			return err
		}

		if backup := ctx.String("backup"); backup != "" {
			cfg.Spec.Backup = backup
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration is invalid: %w", err)
			}
		}

		runCtx, cancel := signal.NotifyContext(ctx.Context, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		applyAction := action.NewApply(action.ApplyOptions{
			Config:   cfg,
			Host:     host.NewLocal(),
			Packages: ctx.Bool("packages"),
			System:   ctx.Bool("system"),
			Home:     ctx.Bool("home"),
			Scripts:  ctx.Bool("scripts"),
			Force:    ctx.Bool("force"),
			DryRun:   ctx.Bool("dry-run"),
		})

		if err := applyAction.Run(runCtx); err != nil {
			if errors.Is(err, action.ErrInterrupted) {
				return cli.Exit(err, 130)
			}
			return fmt.Errorf("apply failed - log file saved to %s: %w", logPath, err)
		}

		return nil
	},
}
