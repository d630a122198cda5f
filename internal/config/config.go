package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/portable-packer/internal/archive"
	"github.com/oshokin/portable-packer/internal/logger"
	"github.com/oshokin/portable-packer/internal/validate"
)

// Config holds the packer settings.
type Config struct {
	// Folder is the directory whose files are packed.
	Folder string `yaml:"folder"`
	// OutputFolder receives the archive and metadata, and is where the build runs.
	OutputFolder string `yaml:"output_folder"`
	// Executable is the entry point, relative to Folder or prefixed with it.
	Executable string `yaml:"executable"`
	// Target is an optional cross-compilation triple; empty means the host default.
	Target string `yaml:"target,omitempty"`
	// Level is the brotli quality, 0 (fastest) to 11 (smallest).
	Level int `yaml:"level"`
	// Jobs is the number of files compressed in parallel.
	Jobs int `yaml:"jobs"`
	// Exclude lists doublestar patterns of files left out of the archive.
	Exclude []string `yaml:"exclude,omitempty"`
	// BuildCommand is the argument vector of the downstream build.
	BuildCommand []string `yaml:"build_command,flow"`
	// TargetFlag precedes the target in the build command.
	TargetFlag string `yaml:"target_flag"`
	// SkipBuild stops after the archive and metadata are written.
	SkipBuild bool `yaml:"skip_build"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the settings file looked up when --config is not given.
	DefaultConfigFilename = "portable-packer.yaml"

	// DefaultFolder is the conventional location of the application build output.
	DefaultFolder = "./rustdesk"

	// DefaultOutputFolder is the packer project root.
	DefaultOutputFolder = "."

	// DefaultTargetFlag selects the cross-compilation target of the build tool.
	DefaultTargetFlag = "--target"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// baseExecutable is the application binary name without a platform extension.
	baseExecutable = "rustdesk"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidLevel is returned for a compression level outside 0..11.
	errInvalidLevel = errors.New("compression level out of range")
	// errEmptyBuildCommand is returned when the build is enabled without a command.
	errEmptyBuildCommand = errors.New("build command must not be empty")
	// errInvalidLogLevel is returned for an unknown log level.
	errInvalidLogLevel = errors.New("unknown log level")
)

// DefaultBuildCommand returns the argument vector of the downstream build.
func DefaultBuildCommand() []string {
	return []string{"cargo", "build", "--release"}
}

// DefaultExecutable returns the platform-specific application binary name.
func DefaultExecutable() string {
	if runtime.GOOS == "windows" {
		return baseExecutable + ".exe"
	}

	return baseExecutable
}

// Default returns settings with every field at its default.
func Default() *Config {
	return &Config{
		Folder:       DefaultFolder,
		OutputFolder: DefaultOutputFolder,
		Executable:   DefaultExecutable(),
		Level:        archive.MaxQuality,
		Jobs:         runtime.NumCPU(),
		BuildCommand: DefaultBuildCommand(),
		TargetFlag:   DefaultTargetFlag,
		LogLevel:     "info",
	}
}

// Load reads settings from path on top of the defaults.
// When allowMissing is set, a missing file yields the defaults.
func Load(path string, allowMissing bool) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks value ranges and fills in defaults for empty fields.
// The target is checked against the allow-list here as well, so a bad value
// in a file is reported before any work starts.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Folder == "" {
		cfg.Folder = DefaultFolder
	}

	if cfg.OutputFolder == "" {
		cfg.OutputFolder = DefaultOutputFolder
	}

	if cfg.Executable == "" {
		cfg.Executable = DefaultExecutable()
	}

	if cfg.Jobs <= 0 {
		cfg.Jobs = runtime.NumCPU()
	}

	if cfg.TargetFlag == "" {
		cfg.TargetFlag = DefaultTargetFlag
	}

	if !archive.ValidQuality(cfg.Level) {
		return fmt.Errorf("%w: %d, want %d..%d", errInvalidLevel, cfg.Level, archive.MinQuality, archive.MaxQuality)
	}

	if _, err := validate.Target(cfg.Target); err != nil {
		return err
	}

	if !cfg.SkipBuild && len(cfg.BuildCommand) == 0 {
		return errEmptyBuildCommand
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, cfg.LogLevel)
	}

	return nil
}
