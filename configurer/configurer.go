package configurer

// Configurer builds the distribution specific command forms the provisioning
// steps spawn. The commands are returned as plain argv slices so the caller
// can capture stdout and stderr separately.
type Configurer interface {
	Kind() string
	InstallCommand(packages ...string) []string
	RemoveCommand(packages ...string) []string
	UpgradeCommand() []string
	AutoremoveCommand() []string
	DaemonReloadCommand() []string
	EnableServiceCommand(service string) []string
	StartServiceCommand(service string) []string
	StopServiceCommand(service string) []string
	DisableServiceCommand(service string) []string
	RestoreconCommand(path string) []string
}
