package packer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/portable-packer/internal/archive"
	"github.com/oshokin/portable-packer/internal/config"
	"github.com/oshokin/portable-packer/internal/logger"
	"github.com/oshokin/portable-packer/internal/metadata"
	"github.com/oshokin/portable-packer/internal/service/builder"
	"github.com/oshokin/portable-packer/internal/service/common"
	"github.com/oshokin/portable-packer/internal/validate"
	"github.com/oshokin/portable-packer/internal/walker"
)

// Options contains inputs for the packer entry point.
type Options struct {
	// Config holds the validated settings.
	Config *config.Config
	// Now returns the build time written to the metadata file. Defaults to time.Now.
	Now func() time.Time
}

// Result describes a finished pack.
type Result struct {
	// ArchivePath is the absolute path of data.bin.
	ArchivePath string
	// MetadataPath is the absolute path of app_metadata.toml.
	MetadataPath string
	// EntryPoint is the stored entry point, relative to the source folder.
	EntryPoint string
	// Entries is the number of packed files.
	Entries int
	// Built reports whether the downstream build ran.
	Built bool
}

// packer holds the resolved inputs of a single run.
// It is unexported: callers use Run, which validates everything first.
type packer struct {
	cfg        *config.Config
	now        func() time.Time
	source     string
	output     string
	target     string
	entryPoint string
}

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "portable-packer")

	p, err := newPacker(ctx, opts)
	if err != nil {
		return nil, err
	}

	result, err := p.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("packer failed: %w", err)
	}

	logger.InfoKV(ctx, "Packer completed successfully",
		"archive", result.ArchivePath, "entries", result.Entries)

	return result, nil
}

// newPacker validates all inputs before anything is read or written.
func newPacker(ctx context.Context, opts *Options) (*packer, error) {
	if opts == nil || opts.Config == nil {
		return nil, fmt.Errorf("initialize packer: %w", config.Validate(nil))
	}

	cfg := opts.Config
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	target, err := validate.Target(cfg.Target)
	if err != nil {
		return nil, err
	}

	source, err := validate.Folder(cfg.Folder)
	if err != nil {
		return nil, fmt.Errorf("source folder: %w", err)
	}

	output, err := validate.Folder(cfg.OutputFolder)
	if err != nil {
		return nil, fmt.Errorf("output folder: %w", err)
	}

	entryPoint, err := validate.EntryPoint(source, cfg.Folder, cfg.Executable)
	if err != nil {
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if actor, err := common.DetectActor(); err == nil {
		logger.InfoKV(ctx, "Packing", "actor", actor.String(), "source", source, "output", output)
	}

	logger.InfoKV(ctx, "Executable path", "entry_point", entryPoint)
	logger.InfoKV(ctx, "Compression level", "level", cfg.Level)

	return &packer{
		cfg:        cfg,
		now:        now,
		source:     source,
		output:     output,
		target:     target,
		entryPoint: entryPoint,
	}, nil
}

// Run walks, compresses, writes the archive and metadata, then builds.
func (p *packer) Run(ctx context.Context) (*Result, error) {
	p.warnIfRunning(ctx)

	files, err := walker.Walk(ctx, p.source, &walker.Options{Exclude: p.cfg.Exclude})
	if err != nil {
		return nil, err
	}

	if !containsPath(files, p.entryPoint) {
		logger.WarnKV(ctx, "Entry point is not among the packed files", "entry_point", p.entryPoint)
	}

	entries, err := p.compress(ctx, files)
	if err != nil {
		return nil, err
	}

	archivePath := filepath.Join(p.output, archive.DefaultFilename)
	if err = writeArchive(archivePath, entries, p.entryPoint); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Archive has been written", "path", archivePath, "entries", len(entries))

	metadataPath, err := metadata.Write(p.output, p.now())
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "App metadata has been written", "path", metadataPath)

	result := &Result{
		ArchivePath:  archivePath,
		MetadataPath: metadataPath,
		EntryPoint:   p.entryPoint,
		Entries:      len(entries),
	}

	if p.cfg.SkipBuild {
		logger.Info(ctx, "Skipping build")
		return result, nil
	}

	b := &builder.Builder{
		Command:    p.cfg.BuildCommand,
		TargetFlag: p.cfg.TargetFlag,
	}
	if err = b.Build(ctx, p.output, p.target); err != nil {
		return nil, err
	}

	result.Built = true

	return result, nil
}

// compress checksums and compresses every file with up to cfg.Jobs workers.
// Results land at the file's walk index, so archive order equals walk order.
func (p *packer) compress(ctx context.Context, files []walker.File) ([]*archive.Entry, error) {
	entries := make([]*archive.Entry, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Jobs)

	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			logger.Debugf(gctx, "Processing %s...", f.Path)

			contents, err := os.ReadFile(f.FullPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", f.Path, err)
			}

			entry, err := archive.NewEntry(f.Path, contents, p.cfg.Level)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Path, err)
			}

			entries[i] = entry

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return entries, nil
}

// warnIfRunning logs when the entry point is running: its files may change while they are read.
func (p *packer) warnIfRunning(ctx context.Context) {
	pids, err := common.RunningProcesses(p.entryPoint)
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)
		return
	}

	if len(pids) > 0 {
		logger.WarnKV(ctx, "The entry point is running, packed files may be inconsistent",
			"entry_point", p.entryPoint, "pids", pids)
	}
}

func containsPath(files []walker.File, path string) bool {
	for _, f := range files {
		if f.Path == path {
			return true
		}
	}

	return false
}
