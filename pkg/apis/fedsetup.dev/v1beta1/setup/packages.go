package setup

import (
	"github.com/creasty/defaults"
)

// Packages defines the package management section
type Packages struct {
	RemoveList  string     `yaml:"removeList,omitempty"`
	InstallList string     `yaml:"installList,omitempty"`
	RPMFusion   *RPMFusion `yaml:"rpmFusion,omitempty"`
}

// RPMFusion selects which RPM Fusion repositories get installed. Both are
// on unless explicitly turned off, which is why the fields are pointers.
type RPMFusion struct {
	Free    *bool `yaml:"free,omitempty" default:"true"`
	Nonfree *bool `yaml:"nonfree,omitempty" default:"true"`
}

// UnmarshalYAML sets in some sane defaults when unmarshaling the data from yaml
func (p *Packages) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type packages Packages
	yp := (*packages)(p)
	yp.RPMFusion = &RPMFusion{}

	if err := unmarshal(yp); err != nil {
		return err
	}

	return defaults.Set(p)
}

// SetDefaults sets defaults
func (p *Packages) SetDefaults() {
	if p.RPMFusion == nil {
		p.RPMFusion = &RPMFusion{}
		_ = defaults.Set(p.RPMFusion)
	}
}

// FreeEnabled returns true when the free repository should be installed
func (r *RPMFusion) FreeEnabled() bool {
	return r != nil && r.Free != nil && *r.Free
}

// NonfreeEnabled returns true when the nonfree repository should be installed
func (r *RPMFusion) NonfreeEnabled() bool {
	return r != nil && r.Nonfree != nil && *r.Nonfree
}
