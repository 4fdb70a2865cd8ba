package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fedsetup/fedsetup/cache"
	"github.com/fedsetup/fedsetup/pkg/host"

	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	// ErrConfig is returned when the pipeline definition is invalid. The
	// pipeline never starts and no results are recorded.
	ErrConfig = errors.New("invalid pipeline definition")

	// ErrOrchestration is returned when the runner itself cannot proceed for
	// reasons unrelated to any single step.
	ErrOrchestration = errors.New("orchestration error")
)

// Colorize is used for the step banners and the summary
var Colorize = aurora.NewAurora(isatty.IsTerminal(os.Stdout.Fd()))

// Manager executes an ordered list of steps against a host. The logging
// sink is passed in explicitly so tests can capture the entries.
type Manager struct {
	log         logrus.FieldLogger
	host        *host.Host
	artifactDir string

	steps []Step
}

// NewManager creates a step manager. The logger must not be nil. When
// artifactDir is empty, failure artifacts go under the state directory.
func NewManager(logger logrus.FieldLogger, h *host.Host, artifactDir string) *Manager {
	if artifactDir == "" {
		artifactDir = cache.StateFile("artifacts")
	}
	return &Manager{log: logger, host: h, artifactDir: artifactDir}
}

// AddStep adds steps to be executed in order
func (m *Manager) AddStep(steps ...Step) {
	m.steps = append(m.steps, steps...)
}

// Steps returns the steps added so far
func (m *Manager) Steps() []Step {
	return m.steps
}

// Validate checks the pipeline definition before anything runs: step names
// must be unique and every eagerly checkable step input must be valid.
// Inputs produced by earlier steps are checked lazily at execution time.
func (m *Manager) Validate() error {
	seen := make(map[string]bool, len(m.steps))
	for _, s := range m.steps {
		if s.Name == "" {
			return fmt.Errorf("%w: step with an empty name", ErrConfig)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate step name %q", ErrConfig, s.Name)
		}
		seen[s.Name] = true
		if s.Action == nil {
			return fmt.Errorf("%w: step %q has no action", ErrConfig, s.Name)
		}
		if v, ok := s.Action.(Validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("%w: step %q: %s", ErrConfig, s.Name, err.Error())
			}
		}
	}
	return nil
}

// Run executes the steps strictly in order and returns the populated run
// record whether it completed or aborted. Step failures are data, not
// errors: the error return is reserved for invalid definitions and for
// orchestration failures such as an unwritable artifact directory.
func (m *Manager) Run(ctx context.Context) (*Run, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	run := &Run{Steps: m.steps, Status: StatusCompleted, StartedAt: time.Now()}
	defer func() { run.EndedAt = time.Now() }()

	for _, s := range m.steps {
		if ctx.Err() != nil {
			run.Status = StatusAborted
			run.Interrupted = true
			return run, nil
		}

		if sk, ok := s.Action.(Skippable); ok {
			if reason := sk.SkipReason(m.host); reason != "" {
				m.log.Warnf("skipping step %s: %s", s.Name, reason)
				now := time.Now()
				run.Results = append(run.Results, Result{
					StepName:  s.Name,
					Succeeded: true,
					Skipped:   true,
					Reason:    reason,
					StartedAt: now,
					EndedAt:   now,
				})
				continue
			}
		}

		m.log.Infof(Colorize.Green("==> Running step: %s").String(), s.Name)

		started := time.Now()
		out, err := s.Action.Run(ctx, m.host)
		if ctx.Err() != nil {
			// the in-flight step's outcome is indeterminate and is not recorded
			m.log.Warnf("interrupted during step %s", s.Name)
			run.Status = StatusAborted
			run.Interrupted = true
			return run, nil
		}

		res := Result{
			StepName:  s.Name,
			Succeeded: err == nil,
			Stdout:    out.Stdout,
			Stderr:    out.Stderr,
			StartedAt: started,
			EndedAt:   time.Now(),
		}
		if out.ExitCode >= 0 {
			code := out.ExitCode
			res.ExitCode = &code
		}
		run.Results = append(run.Results, res)

		if err == nil {
			continue
		}

		m.log.Errorf("step %s failed: %s", s.Name, err.Error())

		if s.OnFailure == Abort {
			run.Status = StatusAborted
			return run, nil
		}

		if aerr := m.archive(res); aerr != nil {
			return run, fmt.Errorf("%w: archiving output of step %q: %s", ErrOrchestration, s.Name, aerr.Error())
		}
	}

	return run, nil
}

// archive persists the captured output of a failed step into a pair of
// files named after the step for later inspection
func (m *Manager) archive(res Result) error {
	if err := cache.EnsureDir(m.artifactDir); err != nil {
		return err
	}

	slug := Slug(res.StepName)
	outPath := filepath.Join(m.artifactDir, slug+".stdout")
	errPath := filepath.Join(m.artifactDir, slug+".stderr")

	if err := os.WriteFile(outPath, []byte(res.Stdout), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(errPath, []byte(res.Stderr), 0644); err != nil {
		return err
	}

	m.log.Infof("step %s output saved to %s and %s", res.StepName, outPath, errPath)
	return nil
}
