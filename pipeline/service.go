package pipeline

import (
	"context"
	"fmt"

	"github.com/fedsetup/fedsetup/pkg/host"
)

// Service drives the init manager: enable, start, stop or disable a unit,
// or reload the manager configuration with op "daemon-reload".
type Service struct {
	Op   string
	Unit string
}

func (a Service) Validate() error {
	switch a.Op {
	case "daemon-reload":
		if a.Unit != "" {
			return fmt.Errorf("daemon-reload takes no unit")
		}
	case "enable", "start", "stop", "disable":
		if a.Unit == "" {
			return fmt.Errorf("service %s requires a unit", a.Op)
		}
	default:
		return fmt.Errorf("unknown service op %q", a.Op)
	}
	return nil
}

func (a Service) Run(ctx context.Context, h *host.Host) (host.Output, error) {
	var args []string
	switch a.Op {
	case "daemon-reload":
		args = h.Configurer.DaemonReloadCommand()
	case "enable":
		args = h.Configurer.EnableServiceCommand(a.Unit)
	case "start":
		args = h.Configurer.StartServiceCommand(a.Unit)
	case "stop":
		args = h.Configurer.StopServiceCommand(a.Unit)
	case "disable":
		args = h.Configurer.DisableServiceCommand(a.Unit)
	default:
		return host.Output{ExitCode: -1}, fmt.Errorf("unknown service op %q", a.Op)
	}
	return h.Run(ctx, host.Command{Args: args, Sudo: true})
}
