package linux

import (
	"strings"

	"github.com/fedsetup/fedsetup/configurer"
	"github.com/k0sproject/rig"
	"github.com/k0sproject/rig/os/registry"
)

// Fedora provides the command forms for Fedora
type Fedora struct {
	EnterpriseLinux
}

var _ configurer.Configurer = (*Fedora)(nil)

func (l Fedora) Kind() string {
	return "fedora"
}

// RestoreconCommand resets the SELinux context after a file lands in /etc
func (l Fedora) RestoreconCommand(path string) []string {
	return []string{"restorecon", path}
}

func init() {
	registry.RegisterOSModule(
		func(os rig.OSVersion) bool {
			return os.ID == "fedora" && !strings.Contains(os.Name, "CoreOS")
		},
		func() any {
			return &Fedora{}
		},
	)
}
