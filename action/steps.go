package action

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fedsetup/fedsetup/internal/shell"
	"github.com/fedsetup/fedsetup/pipeline"
	v1beta1 "github.com/fedsetup/fedsetup/pkg/apis/fedsetup.dev/v1beta1"
	"github.com/fedsetup/fedsetup/pkg/apis/fedsetup.dev/v1beta1/setup"
	"github.com/fedsetup/fedsetup/pkg/host"
)

var titler = cases.Title(language.AmericanEnglish)

// Steps assembles the ordered step list for an apply run from the
// configuration and the gathered host facts. Apply hooks always run,
// the stages in between can be toggled off.
type Steps struct {
	Config *v1beta1.Setup
	Host   *host.Host

	Packages bool
	System   bool
	Home     bool
	Scripts  bool
}

// Build returns the steps in execution order
func (s Steps) Build() ([]pipeline.Step, error) {
	var steps []pipeline.Step

	hooks, err := s.hookSteps("before")
	if err != nil {
		return nil, err
	}
	steps = append(steps, hooks...)

	if s.Packages {
		steps = append(steps, s.packageSteps()...)
	}
	if s.System {
		steps = append(steps, s.systemSteps()...)
	}
	if s.Home {
		steps = append(steps, s.homeSteps()...)
	}
	if s.Scripts {
		steps = append(steps, s.scriptSteps()...)
	}

	hooks, err = s.hookSteps("after")
	if err != nil {
		return nil, err
	}
	steps = append(steps, hooks...)

	return steps, nil
}

func (s Steps) hookSteps(stage string) ([]pipeline.Step, error) {
	var steps []pipeline.Step
	for i, line := range s.Config.Spec.Hooks.ForApply(stage) {
		args, err := shell.Split(line)
		if err != nil {
			return nil, fmt.Errorf("%s apply hook %d: %w", stage, i+1, err)
		}
		steps = append(steps, pipeline.Step{
			Name:      fmt.Sprintf("Run %s Apply Hook %d", titler.String(stage), i+1),
			OnFailure: pipeline.RecordAndContinue,
			Action:    pipeline.Exec{Args: args},
		})
	}
	return steps, nil
}

func (s Steps) packageSteps() []pipeline.Step {
	spec := s.Config.Spec
	var steps []pipeline.Step

	if spec.Packages.RemoveList != "" {
		if pkgs := s.readPackageList(spec.Packages.RemoveList); len(pkgs) > 0 {
			steps = append(steps,
				pipeline.Step{
					Name:      "Remove packages",
					OnFailure: pipeline.RecordAndContinue,
					Action:    pipeline.RemovePackages{Packages: pkgs},
				},
				pipeline.Step{
					Name:      "Autoremove packages",
					OnFailure: pipeline.RecordAndContinue,
					Action:    pipeline.AutoremovePackages{},
				},
			)
		}
	}

	if urls := rpmFusionURLs(spec.Packages.RPMFusion, s.Host.Metadata.Os.Version); len(urls) > 0 {
		steps = append(steps, pipeline.Step{
			Name:      "Install RPM Fusion repositories",
			OnFailure: pipeline.RecordAndContinue,
			Action:    pipeline.InstallPackages{Packages: urls},
		})
	}

	steps = append(steps, pipeline.Step{
		Name:      "Upgrade packages",
		OnFailure: pipeline.RecordAndContinue,
		Action:    pipeline.UpgradePackages{},
	})

	install := s.featurePackages()
	if spec.Packages.InstallList != "" {
		install = append(s.readPackageList(spec.Packages.InstallList), install...)
	}
	if len(install) > 0 {
		steps = append(steps, pipeline.Step{
			Name:      "Install packages",
			OnFailure: pipeline.RecordAndContinue,
			Action:    pipeline.InstallPackages{Packages: install},
		})
	}

	return steps
}

func (s Steps) systemSteps() []pipeline.Step {
	spec := s.Config.Spec
	var steps []pipeline.Step

	for _, f := range spec.System.Files {
		steps = append(steps, pipeline.Step{
			Name:      fmt.Sprintf("Install %s", f.Dest),
			OnFailure: pipeline.RecordAndContinue,
			Action: pipeline.InstallFile{
				Source: s.expandUser(f.Source),
				Dest:   f.Dest,
				Owner:  f.Owner,
				Mode:   f.Mode,
			},
		})
	}

	if m := spec.System.Moduli; m != nil {
		steps = append(steps, pipeline.Step{
			Name:      "Filter SSH moduli",
			OnFailure: pipeline.RecordAndContinue,
			Action:    pipeline.FilterModuli{Path: m.Path, Field: m.Field, MinBits: m.MinBits},
		})
	}

	if spec.Features.DisableIPv6 {
		steps = append(steps,
			pipeline.Step{
				Name:      "Write IPv6 sysctl config",
				OnFailure: pipeline.RecordAndContinue,
				Action: pipeline.WriteFile{
					Dest:    "/etc/sysctl.d/40-ipv6.conf",
					Content: "net.ipv6.conf.all.disable_ipv6 = 1\nnet.ipv6.conf.default.disable_ipv6 = 1\n",
					Mode:    "0644",
				},
			},
			pipeline.Step{
				Name:      "Reload sysctl",
				OnFailure: pipeline.RecordAndContinue,
				Action:    pipeline.Exec{Args: []string{"sysctl", "--system"}, Sudo: true},
			},
		)
	}

	if svc := s.serviceSteps(); len(svc) > 0 {
		steps = append(steps, pipeline.Step{
			Name:      "Reload systemd units",
			OnFailure: pipeline.RecordAndContinue,
			Action:    pipeline.Service{Op: "daemon-reload"},
		})
		steps = append(steps, svc...)
	}

	return steps
}

func (s Steps) serviceSteps() []pipeline.Step {
	f := s.Config.Spec.Features
	var steps []pipeline.Step

	if f.TLP {
		steps = append(steps, serviceStep("enable", "tlp.service"))
	}
	if f.EnableIptables {
		steps = append(steps,
			serviceStep("disable", "firewalld.service"),
			serviceStep("enable", "iptables.service"),
			serviceStep("enable", "ip6tables.service"),
		)
	}
	if f.IntelUndervolt {
		steps = append(steps, serviceStep("enable", "intel-undervolt.service"))
	}
	if f.I3lock {
		steps = append(steps, serviceStep("enable", fmt.Sprintf("i3lock@%s.service", s.Host.Metadata.User)))
	}

	return steps
}

func serviceStep(op, unit string) pipeline.Step {
	return pipeline.Step{
		Name:      fmt.Sprintf("%s %s", titler.String(op), unit),
		OnFailure: pipeline.RecordAndContinue,
		Action:    pipeline.Service{Op: op, Unit: unit},
	}
}

// homeSteps restores the home directory from the backup tree, or from a
// fresh dotfiles clone when no backup location is configured. Both
// sources keep the payload under a home/ subdirectory.
func (s Steps) homeSteps() []pipeline.Step {
	spec := s.Config.Spec
	home := s.Host.Metadata.Home
	var steps []pipeline.Step

	switch {
	case spec.Backup != "":
		steps = append(steps, pipeline.Step{
			Name:      "Sync backup home",
			OnFailure: pipeline.RecordAndContinue,
			Action: pipeline.SyncDir{
				Source: filepath.Join(spec.Backup, "home"),
				Dest:   home,
			},
		})
	case spec.Repos.Dotfiles != "":
		clone := filepath.Join(home, ".dotfiles")
		steps = append(steps,
			pipeline.Step{
				Name:      "Fetch dotfiles",
				OnFailure: pipeline.Abort,
				Action: pipeline.CloneRepo{
					RemoteURL: spec.Repos.Dotfiles,
					Dest:      clone,
				},
			},
			pipeline.Step{
				Name:      "Sync dotfiles home",
				OnFailure: pipeline.RecordAndContinue,
				Action: pipeline.SyncDir{
					Source:         filepath.Join(clone, "home"),
					Dest:           home,
					SourceFromStep: true,
				},
			},
		)
	}

	steps = append(steps, pipeline.Step{
		Name:      "Fix SSH permissions",
		OnFailure: pipeline.RecordAndContinue,
		Action:    pipeline.EnsureSSHPerms{Dir: filepath.Join(home, ".ssh")},
	})

	return steps
}

func (s Steps) scriptSteps() []pipeline.Step {
	spec := s.Config.Spec
	if len(spec.Scripts) == 0 && spec.Features.Julia == "" {
		return nil
	}

	repo := filepath.Join(s.Host.Metadata.Home, ".shell-scripts")
	scripts := filepath.Join(repo, "scripts")
	var steps []pipeline.Step

	if spec.Repos.ShellScripts != "" {
		steps = append(steps, pipeline.Step{
			Name:      "Fetch shell-scripts",
			OnFailure: pipeline.Abort,
			Action: pipeline.CloneRepo{
				RemoteURL: spec.Repos.ShellScripts,
				Dest:      repo,
			},
		})
	}

	for _, script := range spec.Scripts {
		steps = append(steps, pipeline.Step{
			Name:      fmt.Sprintf("Run %s", script.Name),
			OnFailure: pipeline.RecordAndContinue,
			Action: pipeline.RunScript{
				Path: filepath.Join(scripts, script.Name),
				Args: script.Args,
			},
		})
	}

	if spec.Features.Julia != "" {
		steps = append(steps, pipeline.Step{
			Name:      "Install Julia",
			OnFailure: pipeline.RecordAndContinue,
			Action: pipeline.RunScript{
				Path: filepath.Join(scripts, "install_julia.sh"),
				Args: []string{spec.Features.Julia},
			},
		})
	}

	return steps
}

func (s Steps) featurePackages() []string {
	f := s.Config.Spec.Features
	var pkgs []string

	if f.TLP {
		pkgs = append(pkgs, "tlp", "tlp-rdw", "powertop")
	}
	if f.TLPThinkpad {
		pkgs = append(pkgs, "kernel-devel", "akmod-acpi_call")
	}
	if f.EnableIptables {
		pkgs = append(pkgs, "iptables-services")
	}
	if f.IntelUndervolt {
		pkgs = append(pkgs, "intel-undervolt")
	}
	if f.I3lock {
		pkgs = append(pkgs, "i3lock", "xss-lock")
	}

	return pkgs
}

// readPackageList reads a list file into package names. Names can be
// separated by newlines, spaces or commas and a # starts a comment.
// A missing or unreadable list logs a warning and contributes nothing.
func (s Steps) readPackageList(path string) []string {
	path = s.expandUser(path)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warnf("package list %s could not be read: %v", path, err)
		return nil
	}

	var pkgs []string
	for _, line := range strings.Split(string(data), "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		pkgs = append(pkgs, strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})...)
	}
	return pkgs
}

func (s Steps) expandUser(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(s.Host.Metadata.Home, path[2:])
	}
	return path
}

func rpmFusionURLs(r *setup.RPMFusion, release string) []string {
	var urls []string
	if r.FreeEnabled() {
		urls = append(urls, fmt.Sprintf("https://download1.rpmfusion.org/free/fedora/rpmfusion-free-release-%s.noarch.rpm", release))
	}
	if r.NonfreeEnabled() {
		urls = append(urls, fmt.Sprintf("https://download1.rpmfusion.org/nonfree/fedora/rpmfusion-nonfree-release-%s.noarch.rpm", release))
	}
	return urls
}
