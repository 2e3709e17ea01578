package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symlump/pkg/netio"
	"github.com/matzehuels/symlump/pkg/pipeline"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	analysisFlags
	statsDir string
	output   string
	tui      bool
}

// runCommand creates the batch command.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Analyze every network in a directory",
		Long: `Analyze every network in a directory and write one record per network.

A network is a generator file (<name>.gen, .gaut, .gap or .txt) with a
statistics log <name>.log next to it or in --stats-dir. Records are written to
<output>/rowdat/<name>.json with the orbit partition in
<output>/orbit_colours/<name>.txt, and the batch is summarised in
<output>/lumps_out.csv.

Networks that fail to parse, exceed the node limit or time out are skipped
and counted; an unavailable oracle or a failing store aborts the batch.

Examples:
  symlump run data/saucy
  symlump run data/saucy --stats-dir data/logs -o results --workers 8
  symlump run data/saucy --tui --timeout 5m`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.cfg.Input.Dir
			statsDir := c.cfg.StatsDir()
			if len(args) == 1 {
				dir = args[0]
				if !cmd.Flags().Changed("stats-dir") {
					statsDir = ""
				}
			}
			if cmd.Flags().Changed("stats-dir") {
				statsDir = opts.statsDir
			}
			output := c.cfg.Output.Dir
			if cmd.Flags().Changed("output") {
				output = opts.output
			}

			popts, err := c.options(cmd, &opts.analysisFlags)
			if err != nil {
				return err
			}
			return c.runBatch(cmd.Context(), dir, statsDir, output, popts, opts)
		},
	}

	opts.analysisFlags.register(cmd, true)
	cmd.Flags().StringVar(&opts.statsDir, "stats-dir", "", "directory of statistics logs (default: the input directory)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default \"out\")")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show live progress")
	cmd.ValidArgsFunction = completeInputDir
	_ = cmd.RegisterFlagCompletionFunc("stats-dir", completeDirs)
	_ = cmd.RegisterFlagCompletionFunc("output", completeDirs)

	return cmd
}

func (c *CLI) runBatch(ctx context.Context, dir, statsDir, output string, popts pipeline.Options, opts runOpts) error {
	networks, err := netio.Discover(dir, statsDir)
	if err != nil {
		return err
	}
	if len(networks) == 0 {
		printWarning("No generator files in %s", dir)
		return nil
	}

	fileStore, store, err := c.newStore(ctx, output)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, store, opts.noCache)
	if err != nil {
		store.Close()
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	var summary *pipeline.Summary
	if opts.tui {
		summary, err = runWithTUI(ctx, runner, pipeline.Sources(networks), popts)
	} else {
		summary, err = runner.Run(ctx, pipeline.Sources(networks), popts)
	}
	if summary != nil {
		prog.done(fmt.Sprintf("Analyzed %d networks", summary.Total))
	}

	// Records written before an abort are still summarised.
	csvPath, csvErr := fileStore.WriteSummary(ctx)
	if summary != nil {
		printSummary(summary)
	}
	if err != nil {
		return err
	}
	if csvErr != nil {
		return csvErr
	}
	printFile(csvPath)
	return nil
}
