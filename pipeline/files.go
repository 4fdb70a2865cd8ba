package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/fedsetup/fedsetup/pkg/host"
)

// InstallFile copies a file into place preserving attributes, then applies
// ownership, mode and the SELinux context. The sub-commands run in sequence
// and the step fails at the first failing one, with all output captured.
// A missing source skips the step with a warning instead of failing it.
type InstallFile struct {
	Source string
	Dest   string
	Owner  string
	Mode   string
}

func (a InstallFile) SkipReason(_ *host.Host) string {
	if _, err := os.Stat(a.Source); err != nil {
		return fmt.Sprintf("source %s does not exist", a.Source)
	}
	return ""
}

func (a InstallFile) Run(ctx context.Context, h *host.Host) (host.Output, error) {
	cmds := [][]string{{"cp", "-a", a.Source, a.Dest}}
	if a.Owner != "" {
		cmds = append(cmds, []string{"chown", a.Owner, a.Dest})
	}
	if a.Mode != "" {
		cmds = append(cmds, []string{"chmod", a.Mode, a.Dest})
	}
	if rc := h.Configurer.RestoreconCommand(a.Dest); rc != nil {
		cmds = append(cmds, rc)
	}

	var out host.Output
	for _, args := range cmds {
		o, err := h.Run(ctx, host.Command{Args: args, Sudo: true})
		out.Stdout += o.Stdout
		out.Stderr += o.Stderr
		out.ExitCode = o.ExitCode
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// WriteFile writes literal content to a privileged path by piping it to
// tee, then applies the mode. Used for generated files such as the
// sysctl drop-in.
type WriteFile struct {
	Dest    string
	Content string
	Mode    string
}

func (a WriteFile) Validate() error {
	if a.Dest == "" {
		return fmt.Errorf("no destination path")
	}
	return nil
}

func (a WriteFile) Run(ctx context.Context, h *host.Host) (host.Output, error) {
	out, err := h.Run(ctx, host.Command{Args: []string{"tee", a.Dest}, Stdin: a.Content, Sudo: true})
	if err != nil {
		return out, err
	}
	if a.Mode != "" {
		o, err := h.Run(ctx, host.Command{Args: []string{"chmod", a.Mode, a.Dest}, Sudo: true})
		out.Stderr += o.Stderr
		out.ExitCode = o.ExitCode
		if err != nil {
			return out, err
		}
	}
	return out, nil
}
