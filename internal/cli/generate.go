package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/googlegenomics/labelgen/internal/gcsio"
	"github.com/googlegenomics/labelgen/internal/genomics"
	"github.com/googlegenomics/labelgen/internal/labels"
	"github.com/googlegenomics/labelgen/internal/output"
	"github.com/googlegenomics/labelgen/internal/tiling"
)

type generateFlags struct {
	chromSizes string
	tasks      string
	config     string
	out        string

	tiling    tiling.Config
	approach  string
	threshold float64

	taskThreads  int
	chromThreads int

	gcsAuth  string
	gcsToken string

	profileMode string
}

// NewGenerateCommand creates the "generate" command, which labels the
// whole genome and writes the gzipped, indexed label file.
func NewGenerateCommand() *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate whole-genome tiled classification labels",
		Long: `Generate tiles every chromosome into fixed-size bins, labels each
bin against every task's peak file, and writes a gzipped TSV with one
row per bin and one column per task, together with a binary offset
index for per-chromosome access.

Tasks come either from a tab-separated table (--tasks: task name, peak
file, optional ambiguous peak file) or from a YAML manifest (--config)
that can also override the tiling and labeling parameters.  Input
paths may be local files or gs:// URLs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.chromSizes, "chrom-sizes", "", "two-column chromosome sizes file (required)")
	cmd.Flags().StringVar(&flags.tasks, "tasks", "", "tab-separated task table")
	cmd.Flags().StringVar(&flags.config, "config", "", "YAML run manifest (alternative to --tasks)")
	cmd.Flags().StringVar(&flags.out, "out", "labels.tsv.gz", "output label file")
	cmd.Flags().Uint32Var(&flags.tiling.BinSize, "bin-size", tiling.Default.BinSize, "bin size in base pairs")
	cmd.Flags().Uint32Var(&flags.tiling.Stride, "bin-stride", tiling.Default.Stride, "distance between bin starts")
	cmd.Flags().Uint32Var(&flags.tiling.LeftFlank, "left-flank", tiling.Default.LeftFlank, "sequence context reserved before each bin")
	cmd.Flags().Uint32Var(&flags.tiling.RightFlank, "right-flank", tiling.Default.RightFlank, "sequence context reserved after each bin")
	cmd.Flags().StringVar(&flags.approach, "approach", "summit", "labeling approach: summit, bin-overlap or peak-overlap")
	cmd.Flags().Float64Var(&flags.threshold, "overlap-threshold", labels.DefaultOverlapThreshold, "overlap fraction required for a positive label")
	cmd.Flags().IntVar(&flags.taskThreads, "task-threads", 1, "peak files loaded concurrently")
	cmd.Flags().IntVar(&flags.chromThreads, "chrom-threads", 1, "chromosomes labeled concurrently")
	cmd.Flags().StringVar(&flags.gcsAuth, "gcs-auth", gcsio.AuthDefault, "Cloud Storage auth mode: default, public or token")
	cmd.Flags().StringVar(&flags.gcsToken, "gcs-token", "", "OAuth2 bearer token for --gcs-auth=token")
	cmd.Flags().StringVar(&flags.profileMode, "profile", "", "write a cpu or mem profile for this run")
	cmd.MarkFlagRequired("chrom-sizes")
	return cmd
}

func runGenerate(ctx context.Context, flags *generateFlags) error {
	switch flags.profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", flags.profileMode)
	}

	opener, err := gcsio.NewOpener(flags.gcsAuth, flags.gcsToken)
	if err != nil {
		return err
	}
	open := func(ctx context.Context, name string) (io.ReadCloser, error) {
		return opener.Open(ctx, name)
	}

	run, err := buildRun(ctx, flags, open)
	if err != nil {
		return err
	}
	progress("Labeling %d tasks over %d chromosomes", len(run.Tasks), len(run.Chroms))

	w, err := output.NewWriter(flags.out, run.Tiling, run.TaskNames())
	if err != nil {
		return err
	}
	if err := run.Execute(ctx, w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	progress("Wrote %s and %s", flags.out, output.IndexPath(flags.out))
	return nil
}

func buildRun(ctx context.Context, flags *generateFlags, open func(context.Context, string) (io.ReadCloser, error)) (*labels.Run, error) {
	chroms, err := readChromSizes(ctx, flags.chromSizes, open)
	if err != nil {
		return nil, err
	}

	run := &labels.Run{
		Tiling:       flags.tiling,
		Threshold:    flags.threshold,
		Chroms:       chroms,
		TaskWorkers:  flags.taskThreads,
		ChromWorkers: flags.chromThreads,
		Open:         open,
	}

	approach := flags.approach
	switch {
	case flags.config != "" && flags.tasks != "":
		return nil, fmt.Errorf("--tasks and --config are mutually exclusive")
	case flags.config != "":
		f, err := open(ctx, flags.config)
		if err != nil {
			return nil, fmt.Errorf("opening manifest: %v", err)
		}
		manifest, err := labels.ReadManifest(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		// The manifest is the authority on run parameters when given.
		run.Tiling = manifest.Tiling
		run.Threshold = manifest.OverlapThreshold
		run.Tasks = manifest.Tasks
		approach = manifest.Approach
	case flags.tasks != "":
		f, err := open(ctx, flags.tasks)
		if err != nil {
			return nil, fmt.Errorf("opening task table: %v", err)
		}
		run.Tasks, err = labels.ReadTaskTable(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("one of --tasks or --config is required")
	}

	run.Approach, err = labels.ParseApproach(approach)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func readChromSizes(ctx context.Context, name string, open func(context.Context, string) (io.ReadCloser, error)) ([]genomics.Chromosome, error) {
	f, err := open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("opening chromosome sizes: %v", err)
	}
	defer f.Close()
	chroms, err := genomics.ReadChromSizes(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v", name, err)
	}
	return chroms, nil
}
