package action

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/k0sproject/dig"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/fedsetup/fedsetup/analytics"
	"github.com/fedsetup/fedsetup/cache"
	"github.com/fedsetup/fedsetup/pipeline"
	v1beta1 "github.com/fedsetup/fedsetup/pkg/apis/fedsetup.dev/v1beta1"
	"github.com/fedsetup/fedsetup/pkg/host"
)

// ErrInterrupted is returned when the run is canceled before finishing
var ErrInterrupted = errors.New("interrupted")

type ApplyOptions struct {
	// Config is the setup configuration
	Config *v1beta1.Setup
	// Host is the target host
	Host *host.Host
	// Packages toggles the package management stage
	Packages bool
	// System toggles the system configuration stage
	System bool
	// Home toggles the home directory stage
	Home bool
	// Scripts toggles the installer script stage
	Scripts bool
	// Force skips the interactive confirmation
	Force bool
	// DryRun validates the configuration and prints the plan without running it
	DryRun bool
	// Stdout is the stream the confirmation prompt and the plan are written to
	Stdout io.Writer
}

type Apply struct {
	ApplyOptions
}

// NewApply creates a new Apply action
func NewApply(opts ApplyOptions) *Apply {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &Apply{ApplyOptions: opts}
}

// Run the Apply action
func (a *Apply) Run(ctx context.Context) error {
	start := time.Now()

	if !a.DryRun && !a.Force {
		if stdoutFile, ok := a.Stdout.(*os.File); ok && !isatty.IsTerminal(stdoutFile.Fd()) {
			return fmt.Errorf("confirmation requires an interactive terminal, use --force to skip it")
		}
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Going to apply the %s setup to this machine. Are you sure?", a.Config.Metadata.Name),
		}
		_ = survey.AskOne(prompt, &confirmed)
		if !confirmed {
			return fmt.Errorf("confirmation aborted")
		}
	}

	ar := &analytics.Run{}
	if err := ar.Before(a.Config.Metadata.Name); err != nil {
		log.Debugf("analytics: %v", err)
	}

	if err := GatherFacts(a.Host, a.Config.Spec.User); err != nil {
		_ = ar.After(err)
		return err
	}

	steps, err := Steps{
		Config:   a.Config,
		Host:     a.Host,
		Packages: a.Packages,
		System:   a.System,
		Home:     a.Home,
		Scripts:  a.Scripts,
	}.Build()
	if err != nil {
		_ = ar.After(err)
		return err
	}

	artifacts := cache.StateFile("artifacts", start.Format("20060102-150405"))
	m := pipeline.NewManager(log.StandardLogger(), a.Host, artifacts)
	m.AddStep(steps...)

	if a.DryRun {
		if err := m.Validate(); err != nil {
			_ = ar.After(err)
			return err
		}
		a.printPlan(steps)
		_ = ar.After(nil)
		return nil
	}

	run, err := m.Run(ctx)
	if err != nil {
		_ = ar.After(err)
		log.Info(pipeline.Colorize.Red("==> Apply failed").String())
		return err
	}

	ar.SetProp("steps", len(run.Results))
	ar.SetProp("failed", run.Failed())
	ar.SetProp("skipped", run.Skipped())
	ar.SetProp("os", a.Host.Metadata.Os.String())

	a.report(run)

	if run.Interrupted {
		_ = ar.After(ErrInterrupted)
		log.Info(pipeline.Colorize.Red("==> Apply interrupted").String())
		return ErrInterrupted
	}

	if run.Status == pipeline.StatusAborted {
		err := fmt.Errorf("aborted at step %q", run.Results[len(run.Results)-1].StepName)
		_ = ar.After(err)
		log.Info(pipeline.Colorize.Red("==> Apply failed").String())
		return err
	}

	log.Infof("%d steps succeeded, %d failed, %d skipped", run.Succeeded(), run.Failed(), run.Skipped())
	if run.Failed() > 0 {
		log.Warnf("output of the failed steps is saved under %s", artifacts)
	}

	duration := time.Since(start).Truncate(time.Second)
	text := fmt.Sprintf("==> Finished in %s", duration)
	log.Info(pipeline.Colorize.Green(text).String())

	_ = ar.After(nil)
	return nil
}

func (a *Apply) printPlan(steps []pipeline.Step) {
	fmt.Fprintf(a.Stdout, "Would run %d steps:\n", len(steps))
	for i, s := range steps {
		fmt.Fprintf(a.Stdout, "%3d. %s (on failure: %s)\n", i+1, s.Name, s.OnFailure)
	}
}

// report saves the run outcome and the host facts for later inspection
func (a *Apply) report(run *pipeline.Run) {
	path := cache.StateFile("last-run.yaml")
	if err := cache.EnsureDir(filepath.Dir(path)); err != nil {
		log.Warnf("could not save the run report: %v", err)
		return
	}

	f, err := os.Create(path)
	if err != nil {
		log.Warnf("could not save the run report: %v", err)
		return
	}
	defer f.Close()

	report := dig.Mapping{
		"name": a.Config.Metadata.Name,
		"host": dig.Mapping{
			"hostname": a.Host.Metadata.Hostname,
			"os":       a.Host.Metadata.Os.Name,
			"release":  a.Host.Metadata.Os.Version,
			"arch":     a.Host.Metadata.Arch,
			"user":     a.Host.Metadata.User,
		},
		"run": run,
	}

	enc := yaml.NewEncoder(f)
	defer enc.Close()
	if err := enc.Encode(report); err != nil {
		log.Warnf("could not save the run report: %v", err)
		return
	}

	log.Infof("run report saved to %s", path)
}
