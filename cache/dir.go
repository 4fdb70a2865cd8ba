package cache

import (
	"path"

	"github.com/adrg/xdg"
)

// Dir returns the directory where re-creatable data such as the upgrade
// check stamp is kept between runs
func Dir() string {
	return path.Join(xdg.CacheHome, "fedsetup")
}

// StateDir returns the directory where run logs, reports and failure
// artifacts are written
func StateDir() string {
	return path.Join(xdg.StateHome, "fedsetup")
}
