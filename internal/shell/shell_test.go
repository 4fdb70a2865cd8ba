package shell_test

import (
	"testing"

	"github.com/fedsetup/fedsetup/internal/shell"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Run("plain words", func(t *testing.T) {
		tokens, err := shell.Split("dnf clean all")
		require.NoError(t, err)
		require.Equal(t, []string{"dnf", "clean", "all"}, tokens)
	})

	t.Run("quoted segments", func(t *testing.T) {
		tokens, err := shell.Split(`notify-send "setup done" 'see the log'`)
		require.NoError(t, err)
		require.Equal(t, []string{"notify-send", "setup done", "see the log"}, tokens)
	})

	t.Run("mid-word quotes", func(t *testing.T) {
		tokens, err := shell.Split(`e"ch"o o'k'`)
		require.NoError(t, err)
		require.Equal(t, []string{"echo", "ok"}, tokens)
	})

	t.Run("escaped space", func(t *testing.T) {
		tokens, err := shell.Split(`touch /tmp/a\ b`)
		require.NoError(t, err)
		require.Equal(t, []string{"touch", "/tmp/a b"}, tokens)
	})

	t.Run("empty token", func(t *testing.T) {
		tokens, err := shell.Split(`printf ""`)
		require.NoError(t, err)
		require.Equal(t, []string{"printf", ""}, tokens)
	})

	t.Run("tabs as separators", func(t *testing.T) {
		tokens, err := shell.Split("a\tb  c")
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c"}, tokens)
	})

	t.Run("mismatched quotes", func(t *testing.T) {
		_, err := shell.Split(`echo "oops`)
		require.ErrorIs(t, err, shell.ErrMismatchedQuotes)
	})

	t.Run("trailing backslash", func(t *testing.T) {
		_, err := shell.Split(`echo oops\`)
		require.ErrorIs(t, err, shell.ErrTrailingBackslash)
	})
}
