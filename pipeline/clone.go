package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/fedsetup/fedsetup/pkg/host"
)

// CloneRepo fetches a repository with the version control client. The
// clone is skipped when the target path already exists, which makes
// re-running a partially applied pipeline a no-op for this step.
type CloneRepo struct {
	RemoteURL string
	Dest      string
}

func (a CloneRepo) Validate() error {
	if a.RemoteURL == "" {
		return fmt.Errorf("no remote url")
	}
	if a.Dest == "" {
		return fmt.Errorf("no clone destination")
	}
	return nil
}

func (a CloneRepo) SkipReason(_ *host.Host) string {
	if _, err := os.Stat(a.Dest); err == nil {
		return fmt.Sprintf("%s already exists", a.Dest)
	}
	return ""
}

func (a CloneRepo) Run(ctx context.Context, h *host.Host) (host.Output, error) {
	return h.Run(ctx, host.Command{Args: []string{"git", "clone", a.RemoteURL, a.Dest}})
}
