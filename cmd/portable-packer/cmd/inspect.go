package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/portable-packer/internal/metadata"
	"github.com/oshokin/portable-packer/internal/service/extractor"
)

var (
	// listCmd prints the records of an archive without decompressing them.
	listCmd = &cobra.Command{
		Use:   "list <archive>",
		Short: "List the files stored in an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := extractor.Inspect(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), args[0], report)

			return nil
		},
	}

	// verifyCmd decompresses every record and checks its checksum.
	verifyCmd = &cobra.Command{
		Use:   "verify <archive>",
		Short: "Decompress every file of an archive and check its checksum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := extractor.Inspect(cmd.Context(), args[0], true)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d files OK, entry point %s\n",
				args[0], len(report.Files), report.EntryPoint)

			return nil
		},
	}
)

// printReport writes a table of records followed by the entry point and build time.
func printReport(w io.Writer, archivePath string, report *extractor.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "PATH\tCOMPRESSED\tCHECKSUM")

	for _, f := range report.Files {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Path, strconv.FormatInt(f.CompressedSize, 10), f.Checksum)
	}

	_ = tw.Flush()

	_, _ = fmt.Fprintf(w, "entry point: %s\n", report.EntryPoint)

	sidecar := filepath.Join(filepath.Dir(archivePath), metadata.Filename)
	if _, err := os.Stat(sidecar); err != nil {
		return
	}

	if md, err := metadata.Read(sidecar); err == nil {
		_, _ = fmt.Fprintf(w, "built at: %s\n", md.Timestamp.UTC().Format(time.RFC3339))
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(listCmd, verifyCmd)
}
