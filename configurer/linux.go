package configurer

// Linux is the base for linux OS support modules. It provides the init
// manager command forms shared by all distributions.
type Linux struct{}

func (l Linux) DaemonReloadCommand() []string {
	return []string{"systemctl", "daemon-reload"}
}

func (l Linux) EnableServiceCommand(service string) []string {
	return []string{"systemctl", "enable", service}
}

func (l Linux) StartServiceCommand(service string) []string {
	return []string{"systemctl", "start", service}
}

func (l Linux) StopServiceCommand(service string) []string {
	return []string{"systemctl", "stop", service}
}

func (l Linux) DisableServiceCommand(service string) []string {
	return []string{"systemctl", "disable", service}
}

// RestoreconCommand returns nil on distributions without SELinux labeling
func (l Linux) RestoreconCommand(path string) []string {
	return nil
}
