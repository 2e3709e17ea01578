package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symlump/pkg/netio"
	"github.com/matzehuels/symlump/pkg/pipeline"
	"github.com/matzehuels/symlump/pkg/record"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	analysisFlags
	stats  string
	output string
	json   bool
}

// analyzeCommand creates the single-network command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze <generators>",
		Short: "Analyze one network",
		Long: `Analyze one network and print its record.

The statistics log defaults to the generator file's name with a .log
extension. With --output the record is also written to the output directory.

Examples:
  symlump analyze data/saucy/karate.gen
  symlump analyze karate.gaut --stats logs/karate.log --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := c.options(cmd, &opts.analysisFlags)
			if err != nil {
				return err
			}
			return c.analyzeOne(cmd.Context(), args[0], popts, opts)
		},
	}

	opts.analysisFlags.register(cmd, false)
	cmd.Flags().StringVar(&opts.stats, "stats", "", "statistics log (default: <generators>.log)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "also write the record to this directory")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the record as JSON")
	registerNetworkCompletion(cmd)

	return cmd
}

// sourceFor locates a single network's artifacts.
func sourceFor(genPath, statsPath string) pipeline.Source {
	src := pipeline.SourceFromNetwork(netio.NewNetwork(genPath, ""))
	if statsPath != "" {
		src.StatsPath = statsPath
	}
	return src
}

func (c *CLI) analyzeOne(ctx context.Context, genPath string, popts pipeline.Options, opts analyzeOpts) error {
	var store record.Store = record.NewMemoryStore()
	if opts.output != "" {
		_, s, err := c.newStore(ctx, opts.output)
		if err != nil {
			return err
		}
		store = s
	}
	runner, err := c.newRunner(ctx, store, opts.noCache)
	if err != nil {
		store.Close()
		return err
	}
	defer runner.Close()

	src := sourceFor(genPath, opts.stats)
	spinner := newSpinner(ctx, os.Stderr, "Analyzing", src.Name, popts.Timeout)
	spinner.Start()
	rec, cached, err := runner.AnalyzeWithCacheInfo(ctx, src, popts)
	if err != nil {
		spinner.StopWithError(err)
		return err
	}
	spinner.Stop()

	if opts.json {
		data, err := record.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	printRecord(rec, cached)
	return nil
}
