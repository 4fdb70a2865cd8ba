package pipeline

import (
	"context"
	"fmt"

	"github.com/fedsetup/fedsetup/pkg/host"
)

// Exec runs a raw command line, used for configured hook commands and for
// one-off system commands such as reloading sysctl settings.
type Exec struct {
	Args []string
	Sudo bool
	Dir  string
}

func (a Exec) Validate() error {
	if len(a.Args) == 0 {
		return fmt.Errorf("empty command")
	}
	return nil
}

func (a Exec) Run(ctx context.Context, h *host.Host) (host.Output, error) {
	return h.Run(ctx, host.Command{Args: a.Args, Sudo: a.Sudo, Dir: a.Dir})
}
