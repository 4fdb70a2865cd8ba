package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fedsetup/fedsetup/configurer/linux"
	"github.com/fedsetup/fedsetup/pipeline"
	"github.com/fedsetup/fedsetup/pkg/host"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func recordingHost(record *[]host.Command) *host.Host {
	h := host.NewLocal()
	h.Configurer = linux.Fedora{}
	h.Runner = func(_ context.Context, cmd host.Command) (host.Output, error) {
		*record = append(*record, cmd)
		return host.Output{ExitCode: 0}, nil
	}
	return h
}

func TestExec(t *testing.T) {
	t.Run("passes arguments through", func(t *testing.T) {
		var record []host.Command
		h := recordingHost(&record)

		a := pipeline.Exec{Args: []string{"dnf", "copr", "enable", "-y", "some/repo"}, Sudo: true}
		require.NoError(t, a.Validate())
		_, err := a.Run(context.Background(), h)
		require.NoError(t, err)
		require.Len(t, record, 1)
		require.Equal(t, []string{"dnf", "copr", "enable", "-y", "some/repo"}, record[0].Args)
		require.True(t, record[0].Sudo)
	})

	t.Run("rejects empty command", func(t *testing.T) {
		require.Error(t, pipeline.Exec{}.Validate())
	})
}

func TestPackageActions(t *testing.T) {
	t.Run("install", func(t *testing.T) {
		var record []host.Command
		h := recordingHost(&record)
		_, err := pipeline.InstallPackages{Packages: []string{"vim", "tmux"}}.Run(context.Background(), h)
		require.NoError(t, err)
		require.Len(t, record, 1)
		require.Equal(t, []string{"dnf", "install", "-y", "vim", "tmux"}, record[0].Args)
		require.True(t, record[0].Sudo)
	})

	t.Run("remove", func(t *testing.T) {
		var record []host.Command
		h := recordingHost(&record)
		_, err := pipeline.RemovePackages{Packages: []string{"nano"}}.Run(context.Background(), h)
		require.NoError(t, err)
		require.Equal(t, []string{"dnf", "remove", "-y", "nano"}, record[0].Args)
	})

	t.Run("upgrade", func(t *testing.T) {
		var record []host.Command
		h := recordingHost(&record)
		_, err := pipeline.UpgradePackages{}.Run(context.Background(), h)
		require.NoError(t, err)
		require.Equal(t, []string{"dnf", "upgrade", "-y"}, record[0].Args)
	})

	t.Run("autoremove", func(t *testing.T) {
		var record []host.Command
		h := recordingHost(&record)
		_, err := pipeline.AutoremovePackages{}.Run(context.Background(), h)
		require.NoError(t, err)
		require.Equal(t, []string{"dnf", "autoremove", "-y"}, record[0].Args)
	})

	t.Run("install requires a package list", func(t *testing.T) {
		require.Error(t, pipeline.InstallPackages{}.Validate())
	})
}

func TestServiceAction(t *testing.T) {
	t.Run("enable", func(t *testing.T) {
		var record []host.Command
		h := recordingHost(&record)
		a := pipeline.Service{Op: "enable", Unit: "tlp.service"}
		require.NoError(t, a.Validate())
		_, err := a.Run(context.Background(), h)
		require.NoError(t, err)
		require.Equal(t, []string{"systemctl", "enable", "tlp.service"}, record[0].Args)
		require.True(t, record[0].Sudo)
	})

	t.Run("daemon-reload", func(t *testing.T) {
		var record []host.Command
		h := recordingHost(&record)
		a := pipeline.Service{Op: "daemon-reload"}
		require.NoError(t, a.Validate())
		_, err := a.Run(context.Background(), h)
		require.NoError(t, err)
		require.Equal(t, []string{"systemctl", "daemon-reload"}, record[0].Args)
	})

	t.Run("daemon-reload takes no unit", func(t *testing.T) {
		require.Error(t, pipeline.Service{Op: "daemon-reload", Unit: "tlp.service"}.Validate())
	})

	t.Run("enable requires a unit", func(t *testing.T) {
		require.Error(t, pipeline.Service{Op: "enable"}.Validate())
	})

	t.Run("unknown operation", func(t *testing.T) {
		require.Error(t, pipeline.Service{Op: "reload", Unit: "sshd.service"}.Validate())
	})
}

func TestInstallFile(t *testing.T) {
	t.Run("copies then fixes ownership and context", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "vconsole.conf")
		require.NoError(t, os.WriteFile(src, []byte("KEYMAP=us\n"), 0644))

		var record []host.Command
		h := recordingHost(&record)

		a := pipeline.InstallFile{Source: src, Dest: "/etc/vconsole.conf", Owner: "root:root", Mode: "0644"}
		_, err := a.Run(context.Background(), h)
		require.NoError(t, err)
		require.Len(t, record, 4)
		require.Equal(t, []string{"cp", "-a", src, "/etc/vconsole.conf"}, record[0].Args)
		require.Equal(t, []string{"chown", "root:root", "/etc/vconsole.conf"}, record[1].Args)
		require.Equal(t, []string{"chmod", "0644", "/etc/vconsole.conf"}, record[2].Args)
		require.Equal(t, []string{"restorecon", "/etc/vconsole.conf"}, record[3].Args)
		for _, cmd := range record {
			require.True(t, cmd.Sudo)
		}
	})

	t.Run("skips optional attributes", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "plain.conf")
		require.NoError(t, os.WriteFile(src, nil, 0644))

		var record []host.Command
		h := recordingHost(&record)
		h.Configurer = linux.EnterpriseLinux{}

		a := pipeline.InstallFile{Source: src, Dest: "/etc/plain.conf"}
		_, err := a.Run(context.Background(), h)
		require.NoError(t, err)
		require.Len(t, record, 1)
		require.Equal(t, []string{"cp", "-a", src, "/etc/plain.conf"}, record[0].Args)
	})

	t.Run("missing source is skippable", func(t *testing.T) {
		a := pipeline.InstallFile{Source: filepath.Join(t.TempDir(), "gone"), Dest: "/etc/gone"}
		require.NotEmpty(t, a.SkipReason(host.NewLocal()))
	})
}

func TestWriteFile(t *testing.T) {
	var record []host.Command
	h := recordingHost(&record)

	a := pipeline.WriteFile{Dest: "/etc/sysctl.d/40-ipv6.conf", Content: "net.ipv6.conf.all.disable_ipv6 = 1\n", Mode: "0644"}
	require.NoError(t, a.Validate())
	_, err := a.Run(context.Background(), h)
	require.NoError(t, err)
	require.Len(t, record, 2)
	require.Equal(t, []string{"tee", "/etc/sysctl.d/40-ipv6.conf"}, record[0].Args)
	require.Equal(t, "net.ipv6.conf.all.disable_ipv6 = 1\n", record[0].Stdin)
	require.True(t, record[0].Sudo)
	require.Equal(t, []string{"chmod", "0644", "/etc/sysctl.d/40-ipv6.conf"}, record[1].Args)
}

func TestSyncDir(t *testing.T) {
	t.Run("normalizes trailing slashes", func(t *testing.T) {
		src := t.TempDir()
		var record []host.Command
		h := recordingHost(&record)

		a := pipeline.SyncDir{Source: src, Dest: "/home/user/files"}
		require.NoError(t, a.Validate())
		_, err := a.Run(context.Background(), h)
		require.NoError(t, err)
		require.Len(t, record, 1)
		require.Equal(t, []string{"rsync", "-a", "--progress", src + "/", "/home/user/files/"}, record[0].Args)
		require.False(t, record[0].Sudo)
	})

	t.Run("missing source is skippable", func(t *testing.T) {
		a := pipeline.SyncDir{Source: filepath.Join(t.TempDir(), "gone"), Dest: "/tmp/out"}
		require.NotEmpty(t, a.SkipReason(host.NewLocal()))
	})

	t.Run("missing source fails validation", func(t *testing.T) {
		a := pipeline.SyncDir{Source: filepath.Join(t.TempDir(), "gone"), Dest: "/tmp/out"}
		require.ErrorContains(t, a.Validate(), "does not exist")
	})

	t.Run("step-created source defers the check", func(t *testing.T) {
		a := pipeline.SyncDir{Source: filepath.Join(t.TempDir(), "gone"), Dest: "/tmp/out", SourceFromStep: true}
		require.NoError(t, a.Validate())
	})
}

func TestRunScript(t *testing.T) {
	t.Run("runs from the script directory", func(t *testing.T) {
		dir := t.TempDir()
		script := filepath.Join(dir, "setup-vim.sh")
		require.NoError(t, os.WriteFile(script, []byte("#!/bin/bash\n"), 0755))

		var record []host.Command
		h := recordingHost(&record)

		a := pipeline.RunScript{Path: script, Args: []string{"--verbose"}}
		_, err := a.Run(context.Background(), h)
		require.NoError(t, err)
		require.Len(t, record, 1)
		require.Equal(t, []string{"bash", script, "--verbose"}, record[0].Args)
		require.Equal(t, dir, record[0].Dir)
	})

	t.Run("missing script is skippable", func(t *testing.T) {
		a := pipeline.RunScript{Path: filepath.Join(t.TempDir(), "gone.sh")}
		require.NotEmpty(t, a.SkipReason(host.NewLocal()))
	})
}

func TestCloneRepo(t *testing.T) {
	t.Run("existing target is left alone", func(t *testing.T) {
		logger, _ := test.NewNullLogger()
		dest := t.TempDir()
		var record []host.Command
		h := recordingHost(&record)

		m := pipeline.NewManager(logger, h, t.TempDir())
		m.AddStep(pipeline.Step{
			Name:   "fetch dotfiles",
			Action: pipeline.CloneRepo{RemoteURL: "https://example.com/dotfiles.git", Dest: dest},
		})

		run, err := m.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, pipeline.StatusCompleted, run.Status)
		require.Len(t, run.Results, 1)
		require.True(t, run.Results[0].Skipped)
		require.Empty(t, record, "clone must not be invoked when the target exists")
	})

	t.Run("missing target is cloned once", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "dotfiles")
		var record []host.Command
		h := recordingHost(&record)

		a := pipeline.CloneRepo{RemoteURL: "https://example.com/dotfiles.git", Dest: dest}
		require.NoError(t, a.Validate())
		_, err := a.Run(context.Background(), h)
		require.NoError(t, err)
		require.Len(t, record, 1)
		require.Equal(t, []string{"git", "clone", "https://example.com/dotfiles.git", dest}, record[0].Args)
		require.False(t, record[0].Sudo)
	})
}
