package verify

import (
	"context"
	"errors"
	"fmt"
	randv2 "math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/xlog"
	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Strategy string

const (
	StrategyAVL    Strategy = "avl"
	StrategyRBTree Strategy = "rbtree"
)

const (
	defaultRounds       = 16
	defaultKeysPerRound = 1024
	defaultWorkers      = 4
)

var (
	ErrInvalidConfig = errors.New("[verify] invalid config")
	ErrRoundFailed   = errors.New("[verify] round failed")

	errRejectedInsertMutated = errors.New("[verify] tree changed by rejected inserts")
)

// Config of a randomized verification run. Zero values are
// replaced by the defaults.
type Config struct {
	Strategy     Strategy
	Rounds       int
	KeysPerRound int
	// KeySpace bounds the drawn keys to [0, KeySpace). A space smaller
	// than KeysPerRound forces duplicates. Defaults to 4 * KeysPerRound.
	KeySpace int
	Workers  int
	Seed     uint64
}

func (cfg Config) withDefaults() Config {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyRBTree
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = defaultRounds
	}
	if cfg.KeysPerRound <= 0 {
		cfg.KeysPerRound = defaultKeysPerRound
	}
	if cfg.KeySpace <= 0 {
		cfg.KeySpace = cfg.KeysPerRound << 2
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return cfg
}

func (cfg Config) validate() error {
	switch cfg.Strategy {
	case StrategyAVL, StrategyRBTree:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, cfg.Strategy)
	}
	return nil
}

type Report struct {
	Strategy Strategy
	Rounds   int64
	Inserted int64
	Rejected int64
	Failed   int64
}

type runOpts struct {
	logger   xlog.XLogger
	treeOpts []tree.TreeOption
}

type Option func(*runOpts)

func WithLogger(logger xlog.XLogger) Option {
	return func(o *runOpts) {
		o.logger = logger
	}
}

// WithTreeOptions is passed to every tree built by the rounds.
func WithTreeOptions(opts ...tree.TreeOption) Option {
	return func(o *runOpts) {
		o.treeOpts = append(o.treeOpts, opts...)
	}
}

type roundResult struct {
	inserted int64
	rejected int64
}

// Run builds one tree per round on a worker pool. A tree is never
// shared between goroutines. The first return is always a report of
// the rounds that completed, even when an error is returned.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Report, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := &runOpts{}
	for _, opt := range opts {
		opt(o)
	}

	pool, err := ants.NewPool(cfg.Workers, ants.WithLogger(xlog.NewAntsXLogger(o.logger)))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		report = &Report{Strategy: cfg.Strategy}
		lock   sync.Mutex
		merr   error
		wg     sync.WaitGroup
		done   atomic.Int64
	)
	for round := 0; round < cfg.Rounds; round++ {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		if err = pool.Submit(func() {
			defer wg.Done()
			res, err := runRound(cfg, round, o)
			done.Add(1)

			lock.Lock()
			defer lock.Unlock()
			report.Inserted += res.inserted
			report.Rejected += res.rejected
			if err != nil {
				report.Failed++
				merr = multierr.Append(merr, fmt.Errorf("%w: round %d: %w", ErrRoundFailed, round, err))
				if o.logger != nil {
					o.logger.ErrorStack(err, "verify round failed", zap.Int("round", round), zap.String("strategy", string(cfg.Strategy)))
				}
			}
		}); err != nil {
			wg.Done()
			lock.Lock()
			merr = multierr.Append(merr, err)
			lock.Unlock()
			break
		}
	}
	wg.Wait()
	report.Rounds = done.Load()

	if o.logger != nil {
		o.logger.Info("verify finished",
			zap.String("strategy", string(report.Strategy)),
			zap.Int64("rounds", report.Rounds),
			zap.Int64("inserted", report.Inserted),
			zap.Int64("rejected", report.Rejected),
			zap.Int64("failed", report.Failed),
		)
	}
	if err = ctx.Err(); err != nil {
		return report, err
	}
	return report, merr
}

// RoundKeys are the keys of a round, fixed by (seed, round).
func RoundKeys(cfg Config, round int) []int {
	cfg = cfg.withDefaults()
	return drawKeys(cfg, roundRand(cfg, round))
}

// roundRand is the only random source of a round, so a failed round
// is replayed exactly from (seed, round).
func roundRand(cfg Config, round int) *randv2.Rand {
	return randv2.New(randv2.NewPCG(cfg.Seed, uint64(round)))
}

func drawKeys(cfg Config, rng *randv2.Rand) []int {
	keys := make([]int, 0, cfg.KeysPerRound)
	for i := 0; i < cfg.KeysPerRound; i++ {
		keys = append(keys, rng.IntN(cfg.KeySpace))
	}
	return keys
}

func newTree(strategy Strategy, opts ...tree.TreeOption) (tree.BSTree[int], func() error) {
	switch strategy {
	case StrategyAVL:
		t := tree.NewAVLTree[int](opts...)
		return t, func() error {
			return multierr.Combine(
				tree.OrderValidate[int](t),
				tree.ParentLinkValidate[int](t),
				tree.HeightBalanceValidate[int](t),
			)
		}
	case StrategyRBTree:
		t := tree.NewRBTree[int](opts...)
		return t, func() error {
			return multierr.Combine(
				tree.OrderValidate[int](t),
				tree.ParentLinkValidate[int](t),
				tree.RootColorValidate[int](t),
				tree.RedViolationValidate[int](t),
				tree.BlackViolationValidate[int](t),
			)
		}
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[verify] unknown strategy " + string(strategy))
}

// recoveredError turns an engine panic into the round's error. An
// ErrInvalidRotation stack keeps its identity, so Run's error still
// matches it with errors.Is.
func recoveredError(r any) error {
	if perr, ok := r.(error); ok {
		return perr
	}
	return infra.NewErrorStack(fmt.Sprintf("[verify] round panic: %v", r))
}

func runRound(cfg Config, round int, o *runOpts) (res roundResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()

	rng := roundRand(cfg, round)
	keys := drawKeys(cfg, rng)
	t, validate := newTree(cfg.Strategy, append([]tree.TreeOption{
		tree.WithTreeName(fmt.Sprintf("%s-%d", cfg.Strategy, round)),
		tree.WithTreeCapacity(len(keys)),
	}, o.treeOpts...)...)

	seen := make(map[int]struct{}, len(keys))
	for _, key := range keys {
		id, ierr := t.Insert(key)
		_, dup := seen[key]
		switch {
		case dup && errors.Is(ierr, tree.ErrDuplicateKey):
			res.rejected++
		case dup:
			return res, fmt.Errorf("duplicate key %d accepted as node %d", key, id)
		case ierr != nil:
			return res, fmt.Errorf("insert key %d: %w", key, ierr)
		default:
			seen[key] = struct{}{}
			res.inserted++
		}
	}
	if err = validate(); err != nil {
		return res, err
	}

	expected := lo.Uniq(keys)
	slices.Sort(expected)
	if actual := t.InOrder(); !slices.Equal(expected, actual) {
		return res, fmt.Errorf("inorder keys mismatch, expected %d keys, got %d", len(expected), len(actual))
	}

	size, root := t.Len(), t.Root()
	for _, i := range rng.Perm(len(expected))[:max(1, len(expected)>>3)] {
		key := expected[i]
		if _, ierr := t.Insert(key); !errors.Is(ierr, tree.ErrDuplicateKey) {
			return res, fmt.Errorf("re-insert key %d: expected duplicate, got %v", key, ierr)
		}
	}
	if t.Len() != size || t.Root() != root || !slices.Equal(expected, t.InOrder()) {
		return res, errRejectedInsertMutated
	}
	return res, validate()
}
