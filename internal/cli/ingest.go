package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/googlegenomics/labelgen/internal/genomics"
	"github.com/googlegenomics/labelgen/internal/output"
	"github.com/googlegenomics/labelgen/internal/tilestore"
)

type ingestFlags struct {
	labels    string
	index     string
	store     string
	tileBins  uint32
	overwrite bool
}

// NewIngestCommand creates the "ingest" command, which converts an
// indexed label file into a dense tile store for random access by
// coordinate.
func NewIngestCommand() *cobra.Command {
	flags := &ingestFlags{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a label file into a coordinate-indexed tile store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(flags)
		},
	}

	cmd.Flags().StringVar(&flags.labels, "labels", "", "label file produced by generate (required)")
	cmd.Flags().StringVar(&flags.index, "index", "", "label file index (defaults to <labels>.idx)")
	cmd.Flags().StringVar(&flags.store, "store", "", "tile store directory to create (required)")
	cmd.Flags().Uint32Var(&flags.tileBins, "tile-bins", tilestore.DefaultTileBins, "bins per compressed tile")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "replace an existing store")
	cmd.MarkFlagRequired("labels")
	cmd.MarkFlagRequired("store")
	return cmd
}

func runIngest(flags *ingestFlags) error {
	index := flags.index
	if index == "" {
		index = output.IndexPath(flags.labels)
	}
	ix, err := output.OpenIndexed(flags.labels, index)
	if err != nil {
		return err
	}
	defer ix.Close()

	cfg := ix.Tiling()
	meta := tilestore.Meta{Tiling: cfg, Tasks: ix.Tasks()}

	// Reconstruct chromosome sizes from the last bin of each
	// chromosome.  The tiling arithmetic yields the same bin layout
	// for the reconstructed size as for the original one.
	type chromRows struct {
		chrom genomics.Chromosome
		rows  []output.Row
	}
	var all []chromRows
	for _, chrom := range ix.Chroms() {
		rows, err := ix.ReadChrom(chrom)
		if err != nil {
			return err
		}
		size := uint32(0)
		if len(rows) > 0 {
			size = rows[len(rows)-1].End + cfg.RightFlank
		}
		meta.Chroms = append(meta.Chroms, genomics.Chromosome{Name: chrom, Size: size})
		all = append(all, chromRows{genomics.Chromosome{Name: chrom, Size: size}, rows})
	}

	store, err := tilestore.Create(flags.store, meta, flags.overwrite)
	if err != nil {
		return err
	}

	for t, task := range ix.Tasks() {
		for _, cr := range all {
			if len(cr.rows) == 0 {
				continue
			}
			column := make([]int8, len(cr.rows))
			for i, row := range cr.rows {
				column[i] = row.Labels[t]
			}
			if err := store.WriteArray(task, cr.chrom.Name, column, flags.tileBins); err != nil {
				return fmt.Errorf("storing %s.%s: %v", task, cr.chrom.Name, err)
			}
		}
		progress("Stored task %s", task)
	}
	progress("Ingested %s into %s", flags.labels, flags.store)
	return nil
}
