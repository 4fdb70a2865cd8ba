package v1beta1

import (
	"fmt"

	"github.com/creasty/defaults"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fedsetup/fedsetup/pkg/apis/fedsetup.dev/v1beta1/setup"
)

// APIVersion is the current api version
const APIVersion = "fedsetup.dev/v1beta1"

// SetupMetadata defines setup document metadata
type SetupMetadata struct {
	Name string `yaml:"name" validate:"required" default:"fedsetup"`
}

// Setup describes fedsetup.yaml configuration
type Setup struct {
	APIVersion string         `yaml:"apiVersion"`
	Kind       string         `yaml:"kind"`
	Metadata   *SetupMetadata `yaml:"metadata"`
	Spec       *setup.Spec    `yaml:"spec"`
}

// UnmarshalYAML sets in some sane defaults when unmarshaling the data from yaml
func (s *Setup) UnmarshalYAML(unmarshal func(interface{}) error) error {
	s.Metadata = &SetupMetadata{
		Name: "fedsetup",
	}
	s.Spec = &setup.Spec{}

	type setupConfig Setup
	ys := (*setupConfig)(s)

	if err := unmarshal(ys); err != nil {
		return err
	}

	if err := defaults.Set(s); err != nil {
		return fmt.Errorf("failed to set defaults: %w", err)
	}

	return nil
}

// Validate performs a configuration sanity check
func (s *Setup) Validate() error {
	validation.ErrorTag = "yaml"
	return validation.ValidateStruct(s,
		validation.Field(&s.APIVersion, validation.Required, validation.In(APIVersion).Error("must equal "+APIVersion)),
		validation.Field(&s.Kind, validation.Required, validation.In("setup", "Setup").Error("must equal setup")),
		validation.Field(&s.Spec),
	)
}
