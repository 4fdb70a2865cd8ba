package setup

import (
	"github.com/creasty/defaults"
	validator "github.com/go-playground/validator/v10"
)

// Spec defines the setup document spec section
type Spec struct {
	User     string    `yaml:"user,omitempty"`
	Backup   string    `yaml:"backup,omitempty" validate:"omitempty,startswith=/"`
	Repos    Repos     `yaml:"repos,omitempty"`
	Packages *Packages `yaml:"packages,omitempty"`
	System   *System   `yaml:"system,omitempty"`
	Features Features  `yaml:"features,omitempty"`
	Scripts  Scripts   `yaml:"scripts,omitempty" validate:"omitempty,dive"`
	Hooks    Hooks     `yaml:"hooks,omitempty"`
}

// UnmarshalYAML sets in some sane defaults when unmarshaling the data from yaml
func (s *Spec) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type spec Spec
	ys := (*spec)(s)
	ys.Packages = &Packages{}
	ys.System = &System{}

	if err := unmarshal(ys); err != nil {
		return err
	}

	return defaults.Set(s)
}

// SetDefaults sets defaults
func (s *Spec) SetDefaults() {
	if s.Packages == nil {
		s.Packages = &Packages{}
		_ = defaults.Set(s.Packages)
	}
	if s.System == nil {
		s.System = &System{}
		_ = defaults.Set(s.System)
	}
}

// Validate performs a configuration sanity check
func (s *Spec) Validate() error {
	v := validator.New()
	v.RegisterStructValidation(validateFeatures, Features{})
	return v.Struct(s)
}
