package setup

// Hooks define a list of hook commands to run around actions
type Hooks struct {
	Apply *ActionHooks `yaml:"apply,omitempty"`
}

// ActionHooks holds the commands to run before and after an action
type ActionHooks struct {
	Before []string `yaml:"before,omitempty"`
	After  []string `yaml:"after,omitempty"`
}

// ForApply returns the hook commands for the given stage of the apply
// action, "before" or "after"
func (h Hooks) ForApply(stage string) []string {
	if h.Apply == nil {
		return nil
	}
	switch stage {
	case "before":
		return h.Apply.Before
	case "after":
		return h.Apply.After
	}
	return nil
}
