package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/fedsetup/fedsetup/pkg/host"
)

// FilterModuli drops weak diffie-hellman groups from an sshd moduli file.
// Only lines whose numeric value in the 1-based Field column strictly
// exceeds MinBits are retained; lines without such a value are dropped.
// The file is rewritten through a temporary file in the same directory and
// renamed into place, with the original mode and ownership restored, so a
// half-written file is never observable.
type FilterModuli struct {
	Path    string
	Field   int
	MinBits int
}

func (a FilterModuli) Validate() error {
	if a.Path == "" {
		return fmt.Errorf("no moduli path")
	}
	if a.Field < 1 {
		return fmt.Errorf("field must be at least 1")
	}
	if a.MinBits < 1 {
		return fmt.Errorf("minBits must be positive")
	}
	return nil
}

func (a FilterModuli) SkipReason(_ *host.Host) string {
	if _, err := os.Stat(a.Path); err != nil {
		return fmt.Sprintf("%s does not exist", a.Path)
	}
	return ""
}

func (a FilterModuli) Run(_ context.Context, _ *host.Host) (host.Output, error) {
	kept, total, err := a.rewrite()
	if err != nil {
		return host.Output{ExitCode: -1}, err
	}
	return host.Output{
		ExitCode: -1,
		Stdout:   fmt.Sprintf("kept %d of %d lines with more than %d bits\n", kept, total, a.MinBits),
	}, nil
}

func (a FilterModuli) rewrite() (int, int, error) {
	info, err := os.Stat(a.Path)
	if err != nil {
		return 0, 0, err
	}

	src, err := os.Open(a.Path)
	if err != nil {
		return 0, 0, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(a.Path), "."+filepath.Base(a.Path)+"-*")
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	var kept, total int
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := scanner.Text()
		total++
		if !a.keep(line) {
			continue
		}
		if _, err := fmt.Fprintln(tmp, line); err != nil {
			return 0, 0, err
		}
		kept++
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, err
	}

	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return 0, 0, err
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		if err := tmp.Chown(int(st.Uid), int(st.Gid)); err != nil {
			return 0, 0, err
		}
	}
	if err := tmp.Close(); err != nil {
		return 0, 0, err
	}

	if err := os.Rename(tmp.Name(), a.Path); err != nil {
		return 0, 0, err
	}
	return kept, total, nil
}

func (a FilterModuli) keep(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < a.Field {
		return false
	}
	bits, err := strconv.Atoi(fields[a.Field-1])
	if err != nil {
		return false
	}
	return bits > a.MinBits
}
