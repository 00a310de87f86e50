//go:build unix

package system

import (
	"os"

	"golang.org/x/sys/unix"
)

// RedirectStdIO points file descriptors 1 and 2 at path so panics and
// output from every goroutine land in the file even while the console is
// in graphics mode.
func RedirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := unix.Dup2(int(f.Fd()), int(os.Stdout.Fd())); err != nil {
		return err
	}
	return unix.Dup2(int(f.Fd()), int(os.Stderr.Fd()))
}
