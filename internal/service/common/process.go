//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
)

// commLength is the kernel limit on reported process names.
const commLength = 15

// ErrAlreadyRunning is returned when another controller process owns the device.
var ErrAlreadyRunning = errors.New("another instance is already running")

// EnsureSingleInstance fails when another process runs the same executable.
func EnsureSingleInstance() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	if pid, found := findOtherInstance(processList, os.Getpid(), filepath.Base(executable)); found {
		return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, pid)
	}

	return nil
}

// findOtherInstance returns the pid of a process named like ours that is not self.
func findOtherInstance(processList []ps.Process, self int, name string) (int, bool) {
	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if !sameExecutable(process.Executable(), name) {
			continue
		}

		return process.Pid(), true
	}

	return 0, false
}

// sameExecutable compares a reported process name with ours, allowing for
// the kernel truncating long names.
func sameExecutable(reported, name string) bool {
	if reported == name {
		return true
	}

	return len(reported) == commLength && strings.HasPrefix(name, reported)
}
