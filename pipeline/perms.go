package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fedsetup/fedsetup/pkg/host"

	"github.com/bmatcuk/doublestar/v4"
)

// public key material and other shareable ssh files keep world-readable bits
var defaultPublicPatterns = []string{"**/*.pub", "**/known_hosts*"}

// EnsureSSHPerms normalizes permissions under an ssh directory: the
// directory tree 0700, public artifacts 0644 and everything else 0600.
// The directory is created when missing.
type EnsureSSHPerms struct {
	Dir string
	// PublicPatterns override the globs that classify a file as public
	PublicPatterns []string
}

func (a EnsureSSHPerms) Validate() error {
	if a.Dir == "" {
		return fmt.Errorf("no directory")
	}
	return nil
}

func (a EnsureSSHPerms) Run(_ context.Context, _ *host.Host) (host.Output, error) {
	out := host.Output{ExitCode: -1}

	if err := os.MkdirAll(a.Dir, 0700); err != nil {
		return out, err
	}
	if err := os.Chmod(a.Dir, 0700); err != nil {
		return out, err
	}

	patterns := a.PublicPatterns
	if patterns == nil {
		patterns = defaultPublicPatterns
	}

	var sb strings.Builder
	err := filepath.WalkDir(a.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == a.Dir {
			return nil
		}

		rel, err := filepath.Rel(a.Dir, p)
		if err != nil {
			return err
		}

		mode := fs.FileMode(0600)
		if d.IsDir() {
			mode = 0700
		} else {
			for _, pattern := range patterns {
				if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
					mode = 0644
					break
				}
			}
		}

		if err := os.Chmod(p, mode); err != nil {
			return err
		}
		fmt.Fprintf(&sb, "%s mode %04o\n", rel, mode)
		return nil
	})

	out.Stdout = sb.String()
	return out, err
}
