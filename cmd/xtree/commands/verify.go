package commands

import (
	"context"
	"fmt"

	"github.com/benz9527/xtree/lib/verify"
	"github.com/spf13/cobra"
)

func NewVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run randomized invariant checks",
		Example: `  xtree verify --strategy avl --rounds 32 --keys 4096
  XTREE_VERIFY_SEED=7 xtree verify`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := commandConfig(cmd, map[string]string{
				"verify.rounds":  "rounds",
				"verify.keys":    "keys",
				"verify.space":   "space",
				"verify.workers": "workers",
				"verify.seed":    "seed",
			})
			if err != nil {
				return err
			}
			out := &appOut{stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr()}
			return runApp(cmd.Context(), cfg, out, func(ctx context.Context, deps appDeps) error {
				report, err := verify.Run(ctx, cfg.verifyConfig(),
					verify.WithLogger(deps.logger),
					verify.WithTreeOptions(deps.factory.opts...),
				)
				if report != nil {
					fmt.Fprintf(out.stdout, "strategy=%s rounds=%d inserted=%d rejected=%d failed=%d\n",
						report.Strategy, report.Rounds, report.Inserted, report.Rejected, report.Failed)
				}
				return err
			})
		},
	}

	cmd.Flags().Int("rounds", 16, "number of rounds, one tree per round")
	cmd.Flags().Int("keys", 1024, "keys drawn per round")
	cmd.Flags().Int("space", 0, "keys are drawn from [0, space), 0 means 4 * keys")
	cmd.Flags().Int("workers", 4, "worker pool size")
	cmd.Flags().Uint64("seed", 0, "seed of the key generator")
	return cmd
}
