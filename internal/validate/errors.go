package validate

import "errors"

var (
	// ErrInvalidTarget is returned for a target triple outside the allow-list.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrFolderNotFound is returned when a folder does not exist.
	ErrFolderNotFound = errors.New("folder does not exist")
	// ErrNotADirectory is returned when a path exists but is not a directory.
	ErrNotADirectory = errors.New("not a directory")
	// ErrEntryPointOutsideRoot is returned when the executable is not inside the source folder.
	ErrEntryPointOutsideRoot = errors.New("the executable must be located in the source folder")
)
