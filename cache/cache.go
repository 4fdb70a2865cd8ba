package cache

import (
	"fmt"
	"os"
	"path"

	"golang.org/x/sys/unix"
)

// EnsureDir makes a directory if it doesn't exist
func EnsureDir(dir string) error {
	err := os.MkdirAll(dir, 0755)

	if err == nil || os.IsExist(err) {
		if unix.Access(dir, unix.W_OK) != nil {
			return fmt.Errorf("not writable: %s", dir)
		}
	}

	return err
}

// File returns a path to a file in the cache dir
func File(parts ...string) string {
	parts = append([]string{Dir()}, parts...)
	return path.Join(parts...)
}

// StateFile returns a path to a file in the state dir
func StateFile(parts ...string) string {
	parts = append([]string{StateDir()}, parts...)
	return path.Join(parts...)
}
