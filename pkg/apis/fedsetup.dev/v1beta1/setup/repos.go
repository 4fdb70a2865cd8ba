package setup

// Repos lists the remote repositories the setup pulls personal content
// from. An empty url leaves the corresponding steps out of the run.
type Repos struct {
	Dotfiles     string `yaml:"dotfiles,omitempty"`
	ShellScripts string `yaml:"shellScripts,omitempty"`
}
