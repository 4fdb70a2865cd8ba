package setup

import (
	"github.com/creasty/defaults"
)

// System defines the system configuration section
type System struct {
	Files  []*File `yaml:"files,omitempty" validate:"omitempty,dive"`
	Moduli *Moduli `yaml:"moduli,omitempty"`
}

// File is a configuration file to install from the backup into the system
type File struct {
	Source string `yaml:"src" validate:"required"`
	Dest   string `yaml:"dest" validate:"required,startswith=/"`
	Owner  string `yaml:"owner,omitempty" default:"root:root"`
	Mode   string `yaml:"mode,omitempty" default:"0644"`
}

// Moduli configures the sshd moduli hardening. The field number is 1-based
// and points at the column holding the group size in bits.
type Moduli struct {
	Path    string `yaml:"path,omitempty" default:"/etc/ssh/moduli"`
	Field   int    `yaml:"field,omitempty" default:"5" validate:"min=1"`
	MinBits int    `yaml:"minBits,omitempty" default:"3000" validate:"min=1"`
}

// UnmarshalYAML sets in some sane defaults when unmarshaling the data from yaml
func (s *System) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type system System
	ys := (*system)(s)
	ys.Moduli = &Moduli{}

	if err := unmarshal(ys); err != nil {
		return err
	}

	return defaults.Set(s)
}

// SetDefaults sets defaults
func (s *System) SetDefaults() {
	if s.Moduli == nil {
		s.Moduli = &Moduli{}
		_ = defaults.Set(s.Moduli)
	}
}

// UnmarshalYAML sets in some sane defaults when unmarshaling the data from yaml
func (f *File) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type file File
	yf := (*file)(f)

	if err := unmarshal(yf); err != nil {
		return err
	}

	return defaults.Set(f)
}
