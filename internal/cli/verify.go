package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/netio"
	"github.com/matzehuels/symlump/pkg/polya"
	"github.com/matzehuels/symlump/pkg/record"
)

// verifyCommand creates the brute-force cross-check command.
func (c *CLI) verifyCommand() *cobra.Command {
	var (
		flags    analysisFlags
		stats    string
		maxNodes int
	)

	cmd := &cobra.Command{
		Use:   "verify <generators>",
		Short: "Cross-check the orbit count against brute force",
		Long: `Compute the orbit count with Pólya's theorem and again by enumerating every
labeling, and report whether they agree. Brute force enumerates k^N
labelings, so only small networks can be verified.

Example:
  symlump verify examples/networks/square.gen --max-nodes 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			popts.Verify = true
			popts.Refresh = true
			if cmd.Flags().Changed("max-nodes") {
				popts.VerifyMaxNodes = maxNodes
			}

			src := sourceFor(args[0], stats)
			st, err := src.LoadStats()
			if err != nil {
				return err
			}
			if !polya.BruteForceTractable(st.Vertices, popts.Alphabet, popts.VerifyMaxNodes) {
				return errors.New(errors.ErrCodeInvalidInput,
					"%s: %d^%d labelings cannot be enumerated, brute force is limited to %d nodes (see --max-nodes) and %d labelings",
					src.Name, popts.Alphabet, st.Vertices, popts.VerifyMaxNodes, polya.MaxLabelings)
			}

			runner, err := c.newRunner(cmd.Context(), record.NewMemoryStore(), true)
			if err != nil {
				return err
			}
			defer runner.Close()

			action := fmt.Sprintf("Enumerating %d^%d labelings of", popts.Alphabet, st.Vertices)
			spinner := newSpinner(cmd.Context(), os.Stderr, action, src.Name, popts.Timeout)
			spinner.Start()
			rec, err := runner.Analyze(cmd.Context(), src, popts)
			if err == nil && !rec.Verified {
				err = errors.New(errors.ErrCodeDegenerateInput, "orbit count %s is too large to enumerate", rec.Rho)
			}
			if err != nil {
				spinner.StopWithError(err)
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("%s: Pólya and brute force agree on rho = %s", rec.GraphName, rec.Rho))
			printKeyValue("order", rec.AutGrpOrder)
			printKeyValue("classes", formatInt(rec.Classes))
			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVar(&stats, "stats", "", "statistics log (default: <generators>"+netio.StatsExt+")")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", polya.DefaultBruteForceMaxNodes, "largest network to enumerate")
	registerNetworkCompletion(cmd)

	return cmd
}
