// Package cli implements the cobra commands for the labelgen binary.
//
// Each subcommand (generate, ingest, tracks, serve) is defined in its
// own file within this package.
package cli

import (
	"log"

	"github.com/spf13/cobra"
)

// Version is the binary version, injected at build time via ldflags.
var Version = "dev"

var verbose bool

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "labelgen",
		Short: "Whole-genome classification label generator",
		Long: `labelgen tiles a reference genome into fixed-size bins and labels
every bin against one or more peak sets as positive (1), negative (0)
or ambiguous (-1), producing gzipped, indexed TSV label files for
sequence model data loaders, plus genome browser tracks.`,
		SilenceUsage: true,
		Version:      Version,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable progress logging")

	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewIngestCommand())
	rootCmd.AddCommand(NewTracksCommand())
	rootCmd.AddCommand(NewServeCommand())
	return rootCmd
}

func progress(format string, args ...interface{}) {
	if verbose {
		log.Printf(format, args...)
	}
}
