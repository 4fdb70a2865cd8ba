package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fedsetup/fedsetup/pkg/host"
)

// SyncDir mirrors a directory tree with the sync utility in archive mode,
// preserving permissions. Trailing slashes are normalized so the source
// contents land inside the destination. A source that exists before the
// run is required up front; one produced by an earlier step in the same
// run is only checked right before execution.
type SyncDir struct {
	Source string
	Dest   string

	// SourceFromStep defers the source existence check to execution
	// time because an earlier step creates it.
	SourceFromStep bool
}

func (a SyncDir) SkipReason(_ *host.Host) string {
	if _, err := os.Stat(a.Source); err != nil {
		return fmt.Sprintf("source %s does not exist", a.Source)
	}
	return ""
}

func (a SyncDir) Validate() error {
	if a.Source == "" || a.Dest == "" {
		return fmt.Errorf("sync requires a source and a destination")
	}
	if !a.SourceFromStep {
		if _, err := os.Stat(a.Source); err != nil {
			return fmt.Errorf("source %s does not exist", a.Source)
		}
	}
	return nil
}

func (a SyncDir) Run(ctx context.Context, h *host.Host) (host.Output, error) {
	src := strings.TrimSuffix(a.Source, "/") + "/"
	dst := strings.TrimSuffix(a.Dest, "/") + "/"
	return h.Run(ctx, host.Command{Args: []string{"rsync", "-a", "--progress", src, dst}})
}
