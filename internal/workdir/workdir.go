// Package workdir changes the process working directory for the duration of a
// single call and always puts it back.
//
// The working directory is process-wide state, so calls are serialized.
package workdir

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

//nolint:gochecknoglobals // Guards the process-wide working directory.
var mu sync.Mutex

// Run changes into dir, calls fn and restores the previous working directory
// on every exit path, including a panic in fn. A failed restore is joined to
// fn's error.
func Run(dir string, fn func() error) (err error) {
	mu.Lock()
	defer mu.Unlock()

	prev, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	if err = os.Chdir(dir); err != nil {
		return fmt.Errorf("change directory to %s: %w", dir, err)
	}

	defer func() {
		if restoreErr := os.Chdir(prev); restoreErr != nil {
			err = errors.Join(err, fmt.Errorf("restore working directory %s: %w", prev, restoreErr))
		}
	}()

	return fn()
}
