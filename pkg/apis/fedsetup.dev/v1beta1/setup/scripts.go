package setup

// Script is an installer script from the shell-scripts repository,
// referenced by file name so it cannot escape the repository tree.
type Script struct {
	Name string   `yaml:"name" validate:"required,excludesall=/"`
	Args []string `yaml:"args,omitempty,flow"`
}

// Scripts is a list of installer scripts to run in order
type Scripts []Script
