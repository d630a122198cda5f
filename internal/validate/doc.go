// Package validate gates every caller-supplied value before it reaches the
// filesystem or a child process.
//
// Targets are checked against a closed allow-list with an exact,
// case-sensitive comparison. Folders are resolved to an absolute,
// symlink-free path and only the resolved form is used afterwards.
package validate
