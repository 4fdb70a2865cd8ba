package linux

import (
	"strings"

	"github.com/fedsetup/fedsetup/configurer"
	"github.com/k0sproject/rig"
	"github.com/k0sproject/rig/os/registry"
)

// EnterpriseLinux provides the dnf command forms shared by the RHEL family
type EnterpriseLinux struct {
	configurer.Linux
}

var _ configurer.Configurer = (*EnterpriseLinux)(nil)

func (l EnterpriseLinux) Kind() string {
	return "enterpriselinux"
}

func (l EnterpriseLinux) InstallCommand(packages ...string) []string {
	return append([]string{"dnf", "install", "-y"}, packages...)
}

func (l EnterpriseLinux) RemoveCommand(packages ...string) []string {
	return append([]string{"dnf", "remove", "-y"}, packages...)
}

func (l EnterpriseLinux) UpgradeCommand() []string {
	return []string{"dnf", "upgrade", "-y"}
}

func (l EnterpriseLinux) AutoremoveCommand() []string {
	return []string{"dnf", "autoremove", "-y"}
}

func init() {
	registry.RegisterOSModule(
		func(os rig.OSVersion) bool {
			return os.ID == "rhel" || strings.Contains(os.IDLike, "rhel")
		},
		func() any {
			return &EnterpriseLinux{}
		},
	)
}
