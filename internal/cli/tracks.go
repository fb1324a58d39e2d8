package cli

import (
	"github.com/spf13/cobra"

	"github.com/googlegenomics/labelgen/internal/output"
	"github.com/googlegenomics/labelgen/internal/tracks"
)

type tracksFlags struct {
	labels string
	index  string
	outDir string
	tasks  []string
}

// NewTracksCommand creates the "tracks" command, which exports genome
// browser tracks from a label file.
func NewTracksCommand() *cobra.Command {
	flags := &tracksFlags{}

	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Export genome browser tracks from a label file",
		Long: `Tracks writes, for each task, a BED file of merged positive regions
and a bedGraph of label values, both gzip compressed, suitable for
loading into a genome browser.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTracks(flags)
		},
	}

	cmd.Flags().StringVar(&flags.labels, "labels", "", "label file produced by generate (required)")
	cmd.Flags().StringVar(&flags.index, "index", "", "label file index (defaults to <labels>.idx)")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "tracks", "directory for track files")
	cmd.Flags().StringSliceVar(&flags.tasks, "tasks", nil, "restrict export to these tasks")
	cmd.MarkFlagRequired("labels")
	return cmd
}

func runTracks(flags *tracksFlags) error {
	index := flags.index
	if index == "" {
		index = output.IndexPath(flags.labels)
	}
	ix, err := output.OpenIndexed(flags.labels, index)
	if err != nil {
		return err
	}
	defer ix.Close()

	if err := tracks.Export(ix, flags.outDir, flags.tasks); err != nil {
		return err
	}
	progress("Exported tracks to %s", flags.outDir)
	return nil
}
