package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fedsetup/fedsetup/pkg/host"
)

// RunScript executes an installer script with positional arguments. The
// script usually lives in a repository cloned by an earlier step, so its
// existence is checked right before execution and the step is skipped
// with a warning when the file is still missing.
type RunScript struct {
	Path string
	Args []string
}

func (a RunScript) Validate() error {
	if a.Path == "" {
		return fmt.Errorf("no script path")
	}
	return nil
}

func (a RunScript) SkipReason(_ *host.Host) string {
	if _, err := os.Stat(a.Path); err != nil {
		return fmt.Sprintf("script %s does not exist", a.Path)
	}
	return ""
}

func (a RunScript) Run(ctx context.Context, h *host.Host) (host.Output, error) {
	args := append([]string{"bash", a.Path}, a.Args...)
	return h.Run(ctx, host.Command{Args: args, Dir: filepath.Dir(a.Path)})
}
