package setup

import (
	validator "github.com/go-playground/validator/v10"
)

// Features toggles the optional parts of the setup. Everything is off
// unless enabled in the configuration.
type Features struct {
	TLP            bool   `yaml:"tlp,omitempty"`
	TLPThinkpad    bool   `yaml:"tlpThinkpad,omitempty"`
	DisableIPv6    bool   `yaml:"disableIPv6,omitempty"`
	EnableIptables bool   `yaml:"enableIptables,omitempty"`
	IntelUndervolt bool   `yaml:"intelUndervolt,omitempty"`
	I3lock         bool   `yaml:"i3lock,omitempty"`
	Julia          string `yaml:"julia,omitempty" validate:"omitempty,semver"`
}

func validateFeatures(sl validator.StructLevel) {
	if f, ok := sl.Current().Interface().(Features); ok {
		if f.TLPThinkpad && !f.TLP {
			sl.ReportError(f.TLPThinkpad, "tlpThinkpad", "TLPThinkpad", "requires tlp", "")
		}
	}
}
