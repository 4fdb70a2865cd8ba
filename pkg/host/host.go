package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/fedsetup/fedsetup/configurer"

	"github.com/alessio/shellescape"
	"github.com/k0sproject/rig"
	"github.com/k0sproject/rig/os/registry"
	log "github.com/sirupsen/logrus"
)

// Command is one process invocation dispatched to the host.
type Command struct {
	Args  []string
	Stdin string
	Dir   string
	Sudo  bool
}

// String returns the command as a quoted single line for logging
func (c Command) String() string {
	args := c.Args
	if c.Sudo {
		args = append([]string{"sudo"}, args...)
	}
	return shellescape.QuoteCommand(args)
}

// Output is the captured outcome of one command. ExitCode is -1 when no
// process was spawned or the process was terminated by a signal.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunnerFunc executes commands for a host. A nil Runner on the host spawns
// processes on the local machine; tests swap in fakes.
type RunnerFunc func(ctx context.Context, cmd Command) (Output, error)

// Host is the machine being provisioned. Only the local machine is
// supported: the rig connection serves as the fact probing plane while
// step commands spawn through Run so that stdout and stderr can be
// captured separately.
type Host struct {
	rig.Connection

	Metadata   Metadata
	Configurer configurer.Configurer
	Runner     RunnerFunc
}

// Metadata is filled in during fact gathering
type Metadata struct {
	Os        rig.OSVersion
	Arch      string
	Hostname  string
	User      string
	Home      string
	MachineID string
}

// NewLocal returns a host for the local machine
func NewLocal() *Host {
	return &Host{
		Connection: rig.Connection{
			Localhost: &rig.Localhost{Enabled: true},
		},
	}
}

func (h *Host) String() string {
	if h.Metadata.Hostname != "" {
		return h.Metadata.Hostname
	}
	return "localhost"
}

// ResolveConfigurer assigns an os support module to the host (see configurer/)
func (h *Host) ResolveConfigurer() error {
	if h.OSVersion == nil {
		return fmt.Errorf("os release facts have not been gathered")
	}

	bf, err := registry.GetOSModuleBuilder(*h.OSVersion)
	if err != nil {
		return err
	}

	if c, ok := bf().(configurer.Configurer); ok {
		h.Configurer = c
		return nil
	}

	return fmt.Errorf("unsupported OS")
}

// Run executes a command on the host, capturing the streams separately
func (h *Host) Run(ctx context.Context, cmd Command) (Output, error) {
	log.Debugf("%s: executing %s", h, cmd)
	if h.Runner != nil {
		return h.Runner(ctx, cmd)
	}
	return LocalRunner(ctx, cmd)
}

// LocalRunner spawns the command as a local process
func LocalRunner(ctx context.Context, cmd Command) (Output, error) {
	if len(cmd.Args) == 0 {
		return Output{ExitCode: -1}, fmt.Errorf("empty command")
	}

	args := cmd.Args
	if cmd.Sudo {
		args = append([]string{"sudo"}, args...)
	}

	c := exec.CommandContext(ctx, args[0], args[1:]...)
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		out.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
		}
		return out, fmt.Errorf("command %s: %w", cmd, err)
	}

	return out, nil
}
