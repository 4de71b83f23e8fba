package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/lib/verify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewInsertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <keys...>",
		Short: "Insert integer keys and print the resulting tree",
		Example: `  xtree insert 10 20 30
  xtree insert --strategy avl 30 10 20`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := parseKeys(args)
			if err != nil {
				return err
			}
			cfg, err := commandConfig(cmd, nil)
			if err != nil {
				return err
			}
			out := &appOut{stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr()}
			return runApp(cmd.Context(), cfg, out, func(ctx context.Context, deps appDeps) error {
				return runInsert(out.stdout, deps, keys)
			})
		},
	}
}

func parseKeys(args []string) ([]int, error) {
	keys := make([]int, 0, len(args))
	for _, arg := range args {
		key, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid key %q: %w", arg, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func insertKeys(w io.Writer, deps appDeps, t tree.BSTree[int], keys []int) error {
	for _, key := range keys {
		if _, err := t.Insert(key); errors.Is(err, tree.ErrDuplicateKey) {
			deps.logger.Debug("duplicate key rejected", zap.Int("key", key))
			if _, err = fmt.Fprintf(w, "duplicate key %d rejected\n", key); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

func runInsert(w io.Writer, deps appDeps, keys []int) error {
	switch verify.Strategy(deps.factory.strategy) {
	case verify.StrategyAVL:
		t := tree.NewAVLTree[int](deps.factory.options(tree.WithTreeCapacity(len(keys)))...)
		if err := insertKeys(w, deps, t, keys); err != nil {
			return err
		}
		return renderTree(w, t, avlLabel(t))
	case verify.StrategyRBTree:
		t := tree.NewRBTree[int](deps.factory.options(tree.WithTreeCapacity(len(keys)))...)
		if err := insertKeys(w, deps, t, keys); err != nil {
			return err
		}
		return renderTree(w, t, rbLabel(t))
	default:
	}
	return fmt.Errorf("%w: unknown strategy %q", errInvalidConfig, deps.factory.strategy)
}
