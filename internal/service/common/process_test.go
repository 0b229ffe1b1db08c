//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

// fakeProcess is a static ps.Process.
type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.executable }

// TestFindOtherInstance skips the current process and unrelated executables.
func TestFindOtherInstance(t *testing.T) {
	t.Parallel()

	processList := []ps.Process{
		fakeProcess{pid: 10, executable: "alarm-ap"},
		fakeProcess{pid: 11, executable: "sshd"},
	}

	_, found := findOtherInstance(processList, 10, "alarm-ap")
	require.False(t, found)

	processList = append(processList, fakeProcess{pid: 12, executable: "alarm-ap"})

	pid, found := findOtherInstance(processList, 10, "alarm-ap")
	require.True(t, found)
	require.Equal(t, 12, pid)
}

// TestEnsureSingleInstance passes for the test binary itself.
func TestEnsureSingleInstance(t *testing.T) {
	t.Parallel()

	require.NoError(t, EnsureSingleInstance())
}

// TestSameExecutable accepts kernel-truncated names.
func TestSameExecutable(t *testing.T) {
	t.Parallel()

	require.True(t, sameExecutable("alarm-ap", "alarm-ap"))
	require.True(t, sameExecutable("alarm-ap-contro", "alarm-ap-controller"))
	require.False(t, sameExecutable("alarm", "alarm-ap"))
	require.False(t, sameExecutable("alarm-ap-ctl", "alarm-ap"))
}
