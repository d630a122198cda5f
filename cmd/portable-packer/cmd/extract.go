package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/portable-packer/internal/service/extractor"
)

var (
	// force rewrites files whose checksum already matches.
	force bool

	// extractCmd restores an archive into a folder.
	extractCmd = &cobra.Command{
		Use:   "extract <archive> <destination>",
		Short: "Restore the files of an archive into a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := extractor.Extract(cmd.Context(), &extractor.Options{
				ArchivePath: args[0],
				Destination: args[1],
				Force:       force,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d files, skipped %d unchanged, entry point %s\n",
				result.Written, result.Skipped, result.EntryPoint)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	extractCmd.Flags().BoolVar(&force, "force", false, "rewrite files even when they are up to date")
	rootCmd.AddCommand(extractCmd)
}
