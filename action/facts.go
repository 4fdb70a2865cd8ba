package action

import (
	"fmt"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/cobaugh/osrelease"
	"github.com/k0sproject/rig"
	log "github.com/sirupsen/logrus"

	"github.com/fedsetup/fedsetup/analytics"
	// anonymous import is needed to load the os support modules
	_ "github.com/fedsetup/fedsetup/configurer/linux"
	"github.com/fedsetup/fedsetup/pkg/host"
)

// GatherFacts connects the host and resolves the facts the steps are
// assembled from: os release, architecture, the target user and their
// home directory. Passwordless sudo is probed here so a missing
// privilege shows up before any step runs.
func GatherFacts(h *host.Host, user string) error {
	if err := h.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	log.Debugf("%s: connected", h)

	os, err := resolveOSRelease(h)
	if err != nil {
		return err
	}
	h.OSVersion = &os
	h.Metadata.Os = os
	log.Infof("%s: is running %s", h, os.String())

	if err := h.ResolveConfigurer(); err != nil {
		return err
	}
	log.Debugf("%s: using %s support module", h, h.Configurer.Kind())

	arch, err := h.ExecOutput("uname -m")
	if err != nil {
		return err
	}
	h.Metadata.Arch = strings.TrimSpace(arch)
	log.Infof("%s: cpu architecture is %s", h, h.Metadata.Arch)

	if hostname, err := h.ExecOutput("hostname"); err == nil {
		h.Metadata.Hostname = strings.TrimSpace(hostname)
	}

	if user == "" {
		out, err := h.ExecOutput("id -un")
		if err != nil {
			return fmt.Errorf("failed to resolve the target user: %w", err)
		}
		user = strings.TrimSpace(out)
	}
	h.Metadata.User = user

	home, err := resolveHome(h, user)
	if err != nil {
		return err
	}
	h.Metadata.Home = home
	log.Infof("%s: home directory of %s is %s", h, user, home)

	if id, err := analytics.MachineID(); err == nil {
		h.Metadata.MachineID = id
	}

	if err := h.Exec("sudo -n true"); err != nil {
		log.Warnf("%s: passwordless sudo not available, privileged steps will likely fail", h)
	}

	return nil
}

func resolveOSRelease(h *host.Host) (rig.OSVersion, error) {
	output, err := h.ExecOutput("cat /etc/os-release")
	if err != nil {
		return rig.OSVersion{}, err
	}
	return parseOSRelease(output)
}

func parseOSRelease(s string) (rig.OSVersion, error) {
	info, err := osrelease.ReadString(s)
	if err != nil {
		return rig.OSVersion{}, err
	}
	os := rig.OSVersion{
		ID:      info["ID"],
		IDLike:  info["ID_LIKE"],
		Name:    info["PRETTY_NAME"],
		Version: info["VERSION_ID"],
	}
	if os.IDLike == "" {
		os.IDLike = os.ID
	}
	return os, nil
}

func resolveHome(h *host.Host, user string) (string, error) {
	out, err := h.ExecOutput(fmt.Sprintf("getent passwd %s", shellescape.Quote(user)))
	if err != nil {
		return "", fmt.Errorf("failed to resolve the home directory of %s: %w", user, err)
	}
	fields := strings.Split(strings.TrimSpace(out), ":")
	if len(fields) < 6 || fields[5] == "" {
		return "", fmt.Errorf("unexpected passwd entry for %s", user)
	}
	return fields[5], nil
}
