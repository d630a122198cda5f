// Package common holds helpers shared by several services.
//
// It detects the current system actor (hostname/username) that is recorded in
// the log of every pack and extract run, and inspects the process table so
// services can tell whether an executable is currently running.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
