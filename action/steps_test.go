package action

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/k0sproject/rig"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/fedsetup/fedsetup/pipeline"
	v1beta1 "github.com/fedsetup/fedsetup/pkg/apis/fedsetup.dev/v1beta1"
	"github.com/fedsetup/fedsetup/pkg/host"
)

func testConfig(t *testing.T, yml string) *v1beta1.Setup {
	t.Helper()
	cfg := &v1beta1.Setup{}
	require.NoError(t, yaml.Unmarshal([]byte(yml), cfg))
	require.NoError(t, cfg.Validate())
	return cfg
}

func testHost() *host.Host {
	h := host.NewLocal()
	h.Metadata.Os = rig.OSVersion{ID: "fedora", Name: "Fedora Linux 42 (Workstation Edition)", Version: "42"}
	h.Metadata.Arch = "x86_64"
	h.Metadata.User = "jim"
	h.Metadata.Home = "/home/jim"
	return h
}

func stepNames(steps []pipeline.Step) []string {
	var names []string
	for _, s := range steps {
		names = append(names, s.Name)
	}
	return names
}

func findStep(t *testing.T, steps []pipeline.Step, name string) pipeline.Step {
	t.Helper()
	for _, s := range steps {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("step %q not found", name)
	return pipeline.Step{}
}

func TestBuildFullConfig(t *testing.T) {
	dir := t.TempDir()
	removeList := filepath.Join(dir, "remove.list")
	require.NoError(t, os.WriteFile(removeList, []byte("nano\n"), 0644))
	installList := filepath.Join(dir, "install.list")
	require.NoError(t, os.WriteFile(installList, []byte("vim, tmux\nhtop # monitoring\n"), 0644))

	cfg := testConfig(t, fmt.Sprintf(`
apiVersion: fedsetup.dev/v1beta1
kind: setup
spec:
  user: jim
  backup: /media/backup
  repos:
    dotfiles: https://example.com/dotfiles.git
    shellScripts: https://example.com/shell-scripts.git
  packages:
    removeList: %s
    installList: %s
  system:
    files:
      - src: /media/backup/etc/vconsole.conf
        dest: /etc/vconsole.conf
  features:
    tlp: true
    disableIPv6: true
    i3lock: true
    julia: 1.10.4
  scripts:
    - name: setup-vim.sh
      args: ["--minimal"]
  hooks:
    apply:
      before:
        - echo starting
      after:
        - echo done
`, removeList, installList))

	steps, err := Steps{Config: cfg, Host: testHost(), Packages: true, System: true, Home: true, Scripts: true}.Build()
	require.NoError(t, err)

	require.Equal(t, []string{
		"Run Before Apply Hook 1",
		"Remove packages",
		"Autoremove packages",
		"Install RPM Fusion repositories",
		"Upgrade packages",
		"Install packages",
		"Install /etc/vconsole.conf",
		"Filter SSH moduli",
		"Write IPv6 sysctl config",
		"Reload sysctl",
		"Reload systemd units",
		"Enable tlp.service",
		"Enable i3lock@jim.service",
		"Sync backup home",
		"Fix SSH permissions",
		"Fetch shell-scripts",
		"Run setup-vim.sh",
		"Install Julia",
		"Run After Apply Hook 1",
	}, stepNames(steps))

	for _, s := range steps {
		switch s.Name {
		case "Fetch shell-scripts":
			require.Equal(t, pipeline.Abort, s.OnFailure, s.Name)
		default:
			require.Equal(t, pipeline.RecordAndContinue, s.OnFailure, s.Name)
		}
	}

	fusion := findStep(t, steps, "Install RPM Fusion repositories").Action.(pipeline.InstallPackages)
	require.Equal(t, []string{
		"https://download1.rpmfusion.org/free/fedora/rpmfusion-free-release-42.noarch.rpm",
		"https://download1.rpmfusion.org/nonfree/fedora/rpmfusion-nonfree-release-42.noarch.rpm",
	}, fusion.Packages)

	install := findStep(t, steps, "Install packages").Action.(pipeline.InstallPackages)
	require.Equal(t, []string{"vim", "tmux", "htop", "tlp", "tlp-rdw", "powertop", "i3lock", "xss-lock"}, install.Packages)

	remove := findStep(t, steps, "Remove packages").Action.(pipeline.RemovePackages)
	require.Equal(t, []string{"nano"}, remove.Packages)

	moduli := findStep(t, steps, "Filter SSH moduli").Action.(pipeline.FilterModuli)
	require.Equal(t, pipeline.FilterModuli{Path: "/etc/ssh/moduli", Field: 5, MinBits: 3000}, moduli)

	sync := findStep(t, steps, "Sync backup home").Action.(pipeline.SyncDir)
	require.Equal(t, "/media/backup/home", sync.Source)
	require.Equal(t, "/home/jim", sync.Dest)
	require.False(t, sync.SourceFromStep)

	perms := findStep(t, steps, "Fix SSH permissions").Action.(pipeline.EnsureSSHPerms)
	require.Equal(t, "/home/jim/.ssh", perms.Dir)

	script := findStep(t, steps, "Run setup-vim.sh").Action.(pipeline.RunScript)
	require.Equal(t, "/home/jim/.shell-scripts/scripts/setup-vim.sh", script.Path)
	require.Equal(t, []string{"--minimal"}, script.Args)

	julia := findStep(t, steps, "Install Julia").Action.(pipeline.RunScript)
	require.Equal(t, "/home/jim/.shell-scripts/scripts/install_julia.sh", julia.Path)
	require.Equal(t, []string{"1.10.4"}, julia.Args)

	hook := findStep(t, steps, "Run Before Apply Hook 1").Action.(pipeline.Exec)
	require.Equal(t, []string{"echo", "starting"}, hook.Args)
}

func TestBuildStageSelection(t *testing.T) {
	cfg := testConfig(t, `
apiVersion: fedsetup.dev/v1beta1
kind: setup
spec:
  backup: /media/backup
  repos:
    dotfiles: https://example.com/dotfiles.git
`)

	steps, err := Steps{Config: cfg, Host: testHost(), Home: true}.Build()
	require.NoError(t, err)
	require.Equal(t, []string{
		"Sync backup home",
		"Fix SSH permissions",
	}, stepNames(steps))
}

func TestBuildHomeFallsBackToDotfiles(t *testing.T) {
	cfg := testConfig(t, `
apiVersion: fedsetup.dev/v1beta1
kind: setup
spec:
  repos:
    dotfiles: https://example.com/dotfiles.git
`)

	steps, err := Steps{Config: cfg, Host: testHost(), Home: true}.Build()
	require.NoError(t, err)
	require.Equal(t, []string{
		"Fetch dotfiles",
		"Sync dotfiles home",
		"Fix SSH permissions",
	}, stepNames(steps))

	clone := findStep(t, steps, "Fetch dotfiles")
	require.Equal(t, pipeline.Abort, clone.OnFailure)
	require.Equal(t, "/home/jim/.dotfiles", clone.Action.(pipeline.CloneRepo).Dest)

	sync := findStep(t, steps, "Sync dotfiles home").Action.(pipeline.SyncDir)
	require.Equal(t, "/home/jim/.dotfiles/home", sync.Source)
	require.True(t, sync.SourceFromStep)
}

func TestBuildMissingPackageLists(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	cfg := testConfig(t, `
apiVersion: fedsetup.dev/v1beta1
kind: setup
spec:
  packages:
    removeList: ~/lists/remove.list
    installList: ~/lists/install.list
`)

	steps, err := Steps{Config: cfg, Host: testHost(), Packages: true}.Build()
	require.NoError(t, err)
	require.Equal(t, []string{
		"Install RPM Fusion repositories",
		"Upgrade packages",
	}, stepNames(steps))

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "/home/jim/lists/install.list") {
			warned = true
		}
	}
	require.True(t, warned, "expected a warning about the unreadable list")
}

func TestBuildRPMFusionDisabled(t *testing.T) {
	cfg := testConfig(t, `
apiVersion: fedsetup.dev/v1beta1
kind: setup
spec:
  packages:
    rpmFusion:
      free: false
      nonfree: false
`)

	steps, err := Steps{Config: cfg, Host: testHost(), Packages: true}.Build()
	require.NoError(t, err)
	require.Equal(t, []string{"Upgrade packages"}, stepNames(steps))
}

func TestBuildScriptsWithoutRepo(t *testing.T) {
	cfg := testConfig(t, `
apiVersion: fedsetup.dev/v1beta1
kind: setup
spec:
  scripts:
    - name: setup-vim.sh
`)

	steps, err := Steps{Config: cfg, Host: testHost(), Scripts: true}.Build()
	require.NoError(t, err)
	require.Equal(t, []string{"Run setup-vim.sh"}, stepNames(steps))
}

func TestBuildJuliaOnly(t *testing.T) {
	cfg := testConfig(t, `
apiVersion: fedsetup.dev/v1beta1
kind: setup
spec:
  repos:
    shellScripts: https://example.com/shell-scripts.git
  features:
    julia: 1.10.4
`)

	steps, err := Steps{Config: cfg, Host: testHost(), Scripts: true}.Build()
	require.NoError(t, err)
	require.Equal(t, []string{"Fetch shell-scripts", "Install Julia"}, stepNames(steps))
}

func TestBuildBadHook(t *testing.T) {
	cfg := testConfig(t, `
apiVersion: fedsetup.dev/v1beta1
kind: setup
spec:
  hooks:
    apply:
      before:
        - echo 'unterminated
`)

	_, err := Steps{Config: cfg, Host: testHost()}.Build()
	require.Error(t, err)
	require.Contains(t, err.Error(), "before apply hook 1")
}

func TestParseOSRelease(t *testing.T) {
	os, err := parseOSRelease(`NAME="Fedora Linux"
VERSION="42 (Workstation Edition)"
ID=fedora
VERSION_ID=42
PRETTY_NAME="Fedora Linux 42 (Workstation Edition)"
`)
	require.NoError(t, err)
	require.Equal(t, "fedora", os.ID)
	require.Equal(t, "42", os.Version)
	require.Equal(t, "Fedora Linux 42 (Workstation Edition)", os.Name)
	require.Equal(t, "fedora", os.IDLike)
}
