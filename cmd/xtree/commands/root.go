package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// NewRootCommand builds the xtree command tree. Each command owns
// its viper instance, so commands don't leak flags into each other.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xtree",
		Short: "xtree - self-balancing binary search trees",
		Long: `xtree inserts keys into an AVL or a red-black tree and checks
the balancing invariants.

Commands:
  insert    Insert integer keys and print the resulting tree
  verify    Run randomized invariant checks

Every flag may be set by an XTREE_ env var, e.g. XTREE_STRATEGY=avl
or XTREE_LOG_LEVEL=debug.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("strategy", "rbtree", "balancing strategy, avl or rbtree")
	rootCmd.PersistentFlags().String("log-level", "info", "log level, debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-encoder", "text", "log encoder, json or text")
	rootCmd.PersistentFlags().String("log-file", "", "also append the logs to this file")
	rootCmd.PersistentFlags().Bool("metrics", false, "export the tree metrics to stdout")

	rootCmd.AddCommand(NewInsertCommand())
	rootCmd.AddCommand(NewVerifyCommand())
	return rootCmd
}

// commandConfig resolves the config of the running command. Only
// the flags that are explicitly set override the env vars.
func commandConfig(cmd *cobra.Command, extra map[string]string) (*Config, error) {
	keys := map[string]string{
		"strategy":        "strategy",
		"log.level":       "log-level",
		"log.encoder":     "log-encoder",
		"log.file":        "log-file",
		"metrics.enabled": "metrics",
	}
	for key, name := range extra {
		keys[key] = name
	}

	flags := make(map[string]*pflag.Flag, len(keys))
	for key, name := range keys {
		if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
			flags[key] = flag
		}
	}
	return loadConfig(viper.New(), flags)
}
