// Package config defines the packer settings and helpers to load, validate
// and save them in YAML format.
//
// Every field has a default, so the file is optional; command-line flags that
// are set explicitly win over file values.
package config
