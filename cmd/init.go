package cmd

import (
	"os"

	"github.com/creasty/defaults"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"

	v1beta1 "github.com/fedsetup/fedsetup/pkg/apis/fedsetup.dev/v1beta1"
	"github.com/fedsetup/fedsetup/pkg/apis/fedsetup.dev/v1beta1/setup"
)

// initTemplate builds an example configuration to be used as a starting point
func initTemplate() (*v1beta1.Setup, error) {
	cfg := &v1beta1.Setup{
		APIVersion: v1beta1.APIVersion,
		Kind:       "setup",
		Metadata:   &v1beta1.SetupMetadata{},
		Spec: &setup.Spec{
			User:   "jim",
			Backup: "/run/media/jim/backup",
			Repos: setup.Repos{
				Dotfiles:     "https://github.com/jim/dotfiles.git",
				ShellScripts: "https://github.com/jim/shell-scripts.git",
			},
			Packages: &setup.Packages{
				RemoveList:  "~/packages/remove.list",
				InstallList: "~/packages/install.list",
			},
			System: &setup.System{
				Files: []*setup.File{
					{
						Source: "/run/media/jim/backup/etc/vconsole.conf",
						Dest:   "/etc/vconsole.conf",
					},
				},
			},
			Features: setup.Features{
				TLP:         true,
				DisableIPv6: true,
			},
			Scripts: setup.Scripts{
				{Name: "setup-vim.sh"},
			},
		},
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

var initCommand = &cli.Command{
	Name:  "init",
	Usage: "Create a configuration template",
	Action: func(ctx *cli.Context) error {
		cfg, err := initTemplate()
		if err != nil {
			return err
		}

		encoder := yaml.NewEncoder(os.Stdout)
		return encoder.Encode(cfg)
	},
}
