//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// RunningProcesses returns the PIDs of processes, other than this one, whose
// executable name equals the base name of path. Names are compared
// case-insensitively on Windows.
func RunningProcesses(path string) ([]int, error) {
	name := filepath.Base(filepath.FromSlash(path))

	processList, err := ps.Processes()
	if err != nil {
		return nil, err
	}

	thisProcessID := os.Getpid()

	var pids []int

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if !sameExecutable(process.Executable(), name) {
			continue
		}

		pids = append(pids, process.Pid())
	}

	return pids, nil
}

// linuxCommLen is how much of the command name /proc/<pid>/stat keeps.
const linuxCommLen = 15

func sameExecutable(processName, name string) bool {
	switch runtime.GOOS {
	case "windows":
		return strings.EqualFold(processName, name)
	case "linux":
		if len(name) > linuxCommLen {
			name = name[:linuxCommLen]
		}
	}

	return processName == name
}
