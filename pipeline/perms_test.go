package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fedsetup/fedsetup/pipeline"

	"github.com/stretchr/testify/require"
)

func requireMode(t *testing.T, path string, want os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, want, info.Mode().Perm(), path)
}

func TestEnsureSSHPerms(t *testing.T) {
	t.Run("classifies and fixes the tree", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), ".ssh")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "conf.d"), 0755))
		files := map[string]os.FileMode{
			"id_ed25519":       0644,
			"id_ed25519.pub":   0600,
			"known_hosts":      0664,
			"config":           0644,
			"conf.d/work.conf": 0644,
		}
		for name, mode := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), mode))
		}
		require.NoError(t, os.Chmod(dir, 0755))

		a := pipeline.EnsureSSHPerms{Dir: dir}
		require.NoError(t, a.Validate())
		out, err := a.Run(context.Background(), nil)
		require.NoError(t, err)

		requireMode(t, dir, 0700)
		requireMode(t, filepath.Join(dir, "conf.d"), 0700)
		requireMode(t, filepath.Join(dir, "id_ed25519"), 0600)
		requireMode(t, filepath.Join(dir, "id_ed25519.pub"), 0644)
		requireMode(t, filepath.Join(dir, "known_hosts"), 0644)
		requireMode(t, filepath.Join(dir, "config"), 0600)
		requireMode(t, filepath.Join(dir, "conf.d/work.conf"), 0600)
		require.Contains(t, out.Stdout, "id_ed25519.pub mode 0644")
		require.Contains(t, out.Stdout, "id_ed25519 mode 0600")
	})

	t.Run("creates a missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), ".ssh")

		_, err := pipeline.EnsureSSHPerms{Dir: dir}.Run(context.Background(), nil)
		require.NoError(t, err)
		requireMode(t, dir, 0700)
	})

	t.Run("custom public patterns", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "authorized_keys"), []byte("x"), 0600))

		a := pipeline.EnsureSSHPerms{Dir: dir, PublicPatterns: []string{"authorized_keys"}}
		_, err := a.Run(context.Background(), nil)
		require.NoError(t, err)
		requireMode(t, filepath.Join(dir, "authorized_keys"), 0644)
	})

	t.Run("validate", func(t *testing.T) {
		require.Error(t, pipeline.EnsureSSHPerms{}.Validate())
	})
}
