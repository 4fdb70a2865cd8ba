package pipeline

import (
	"context"
	"fmt"

	"github.com/fedsetup/fedsetup/pkg/host"
)

// InstallPackages installs packages or package URLs with the package
// manager in a single assume-yes invocation.
type InstallPackages struct {
	Packages []string
}

func (a InstallPackages) Validate() error {
	if len(a.Packages) == 0 {
		return fmt.Errorf("no packages to install")
	}
	return nil
}

func (a InstallPackages) Run(ctx context.Context, h *host.Host) (host.Output, error) {
	return h.Run(ctx, host.Command{Args: h.Configurer.InstallCommand(a.Packages...), Sudo: true})
}

// RemovePackages removes packages in a single assume-yes invocation
type RemovePackages struct {
	Packages []string
}

func (a RemovePackages) Validate() error {
	if len(a.Packages) == 0 {
		return fmt.Errorf("no packages to remove")
	}
	return nil
}

func (a RemovePackages) Run(ctx context.Context, h *host.Host) (host.Output, error) {
	return h.Run(ctx, host.Command{Args: h.Configurer.RemoveCommand(a.Packages...), Sudo: true})
}

// UpgradePackages upgrades everything that is installed
type UpgradePackages struct{}

func (a UpgradePackages) Run(ctx context.Context, h *host.Host) (host.Output, error) {
	return h.Run(ctx, host.Command{Args: h.Configurer.UpgradeCommand(), Sudo: true})
}

// AutoremovePackages removes packages that no longer have a dependent
type AutoremovePackages struct{}

func (a AutoremovePackages) Run(ctx context.Context, h *host.Host) (host.Output, error) {
	return h.Run(ctx, host.Command{Args: h.Configurer.AutoremoveCommand(), Sudo: true})
}
