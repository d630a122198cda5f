package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/portable-packer/internal/archive"
	"github.com/oshokin/portable-packer/internal/config"
	"github.com/oshokin/portable-packer/internal/logger"
	"github.com/oshokin/portable-packer/internal/service/packer"
	"github.com/oshokin/portable-packer/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel overrides the level from the configuration file.
	logLevel string

	// flagValues receives the pack flags; only flags that were set override the file.
	flagValues = config.Default()

	// rootCmd packs the source folder and triggers the launcher build.
	rootCmd = &cobra.Command{
		Use:   "portable-packer",
		Short: "Pack an application folder into a portable archive and build the launcher",
		Long: "Walks the source folder, compresses every file with brotli, writes data.bin and " +
			"app_metadata.toml into the output folder and runs the native build there.",
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: applyLogLevelFlag,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			result, err := packer.Run(ctx, &packer.Options{Config: cfg})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Packed %d files into %s (entry point %s)\n",
				result.Entries, result.ArchivePath, result.EntryPoint)

			return nil
		},
	}
)

// Execute runs the portable-packer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the settings file and lays explicitly set flags over it.
// The default file may be missing; a file named with --config may not.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(configPath, !flags.Changed("config"))
	if err != nil {
		return nil, err
	}

	overrides := map[string]func(){
		"folder":      func() { cfg.Folder = flagValues.Folder },
		"output":      func() { cfg.OutputFolder = flagValues.OutputFolder },
		"executable":  func() { cfg.Executable = flagValues.Executable },
		"target":      func() { cfg.Target = flagValues.Target },
		"level":       func() { cfg.Level = flagValues.Level },
		"jobs":        func() { cfg.Jobs = flagValues.Jobs },
		"exclude":     func() { cfg.Exclude = flagValues.Exclude },
		"skip-build":  func() { cfg.SkipBuild = flagValues.SkipBuild },
		"build-tool":  func() { cfg.BuildCommand = flagValues.BuildCommand },
		"target-flag": func() { cfg.TargetFlag = flagValues.TargetFlag },
	}

	for name, apply := range overrides {
		if flags.Changed(name) {
			apply()
		}
	}

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	if !flags.Changed("log-level") {
		if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
			logger.SetLevel(level)
		}
	}

	return cfg, nil
}

// applyLogLevelFlag sets the global level before any command runs.
func applyLogLevelFlag(cmd *cobra.Command, _ []string) error {
	if !cmd.Flags().Changed("log-level") {
		return nil
	}

	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", logLevel)
	}

	logger.SetLevel(level)

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	persistent.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.Flags()
	flags.StringVarP(&flagValues.Folder, "folder", "f", config.DefaultFolder, "folder to pack")
	flags.StringVarP(&flagValues.OutputFolder, "output", "o", config.DefaultOutputFolder,
		"root of the portable launcher project, receives data.bin")
	flags.StringVarP(&flagValues.Executable, "executable", "e", config.DefaultExecutable(),
		"startup file inside --folder")
	flags.StringVarP(&flagValues.Target, "target", "t", "", "target triple passed to the build tool")
	flags.IntVarP(&flagValues.Level, "level", "l", archive.MaxQuality, "compression level, 0 (fastest) to 11 (smallest)")
	flags.IntVarP(&flagValues.Jobs, "jobs", "j", flagValues.Jobs, "files compressed in parallel")
	flags.StringArrayVarP(&flagValues.Exclude, "exclude", "x", nil, "glob of files to leave out, may be repeated")
	flags.BoolVar(&flagValues.SkipBuild, "skip-build", false, "write data.bin and metadata without building")
	flags.StringSliceVar(&flagValues.BuildCommand, "build-tool", config.DefaultBuildCommand(),
		"build command as comma-separated argv")
	flags.StringVar(&flagValues.TargetFlag, "target-flag", config.DefaultTargetFlag,
		"flag that precedes the target in the build command")
}
