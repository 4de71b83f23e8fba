package tree

import (
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/xlog"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// bsTree is the shared core of the balanced trees. It owns the
// arena, the ordered descent and the rotations. Everything that
// differs between the strategies lives in the balancer.
type bsTree[K infra.OrderedKey, M any] struct {
	arena    *nodeArena[K, M]
	root     NodeID
	kcmp     infra.OrderedKeyComparator[K]
	balancer balancer[K, M]
	logger   xlog.XLogger
	stats    *treeStats
	name     string
}

func newBSTree[K infra.OrderedKey, M any](b balancer[K, M], opts ...TreeOption) *bsTree[K, M] {
	cfg := &treeCfg{
		name: b.name(),
	}
	for _, o := range opts {
		o(cfg)
	}

	tree := &bsTree[K, M]{
		arena:    newNodeArena[K, M](cfg.capacity),
		root:     NilNode,
		kcmp:     infra.AscendingComparator[K](),
		balancer: b,
		logger:   cfg.logger,
		name:     cfg.name,
	}
	if cfg.isDesc {
		tree.kcmp = infra.DescendingComparator[K]()
	}
	if cfg.isStatsEnabled {
		tree.stats = newTreeStats(cfg.name, cfg.meterProvider)
	}
	return tree
}

func (tree *bsTree[K, M]) keyCompare(k1, k2 K) int64 {
	return tree.kcmp(k1, k2)
}

func (tree *bsTree[K, M]) Len() int64 {
	return int64(tree.arena.len())
}

func (tree *bsTree[K, M]) Root() NodeID {
	return tree.root
}

func (tree *bsTree[K, M]) Left(id NodeID) NodeID {
	return tree.arena.left(id)
}

func (tree *bsTree[K, M]) Right(id NodeID) NodeID {
	return tree.arena.right(id)
}

func (tree *bsTree[K, M]) Parent(id NodeID) NodeID {
	return tree.arena.parent(id)
}

func (tree *bsTree[K, M]) Key(id NodeID) K {
	return tree.arena.key(id)
}

func (tree *bsTree[K, M]) direction(x NodeID) Direction {
	if x == NilNode {
		// impossible run to here
		panic( /* debug assertion */ "[tree] nil node without direction")
	}
	p := tree.arena.parent(x)
	if p == NilNode {
		return Root
	}
	if tree.arena.left(p) == x {
		return Left
	}
	return Right
}

func (tree *bsTree[K, M]) sibling(x NodeID) NodeID {
	p := tree.arena.parent(x)
	switch tree.direction(x) {
	case Left:
		return tree.arena.right(p)
	case Right:
		return tree.arena.left(p)
	default:
	}
	return NilNode
}

func (tree *bsTree[K, M]) debug(msg string, fields ...zap.Field) {
	if tree.logger == nil {
		return
	}
	tree.logger.Debug(msg, append(fields, zap.String("tree", tree.name))...)
}

// Insert descends from the root and rejects an equal key before
// anything is allocated, so a duplicate leaves the tree untouched.
func (tree *bsTree[K, M]) Insert(key K) (NodeID, error) {
	if tree.root == NilNode {
		tree.root = tree.arena.allocate(key, tree.balancer.newMeta(true))
		tree.stats.IncreaseInsertCount()
		tree.debug("insert root", zap.Any("key", key), zap.Int32("id", int32(tree.root)))
		return tree.root, nil
	}

	var (
		x, y = tree.root, NilNode
		res  int64
	)
	for x != NilNode {
		y = x
		res = tree.keyCompare(key, tree.arena.key(x))
		if /* equal */ res == 0 {
			tree.stats.IncreaseDuplicateCount()
			tree.debug("insert duplicate", zap.Any("key", key), zap.Int32("id", int32(x)))
			return NilNode, ErrDuplicateKey
		} else /* less */ if res < 0 {
			x = tree.arena.left(x)
		} else /* greater */ {
			x = tree.arena.right(x)
		}
	}

	z := tree.arena.allocate(key, tree.balancer.newMeta(false))
	tree.arena.setParent(z, y)
	if res < 0 {
		tree.arena.setLeft(y, z)
	} else {
		tree.arena.setRight(y, z)
	}
	tree.stats.IncreaseInsertCount()
	tree.debug("insert", zap.Any("key", key), zap.Int32("id", int32(z)), zap.Int32("parent", int32(y)))

	tree.balancer.insertRebalance(tree, z)
	return z, nil
}

func (tree *bsTree[K, M]) Search(key K) NodeID {
	for aux := tree.root; aux != NilNode; {
		res := tree.keyCompare(key, tree.arena.key(aux))
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = tree.arena.right(aux)
		} else {
			aux = tree.arena.left(aux)
		}
	}
	return NilNode
}

func (tree *bsTree[K, M]) Min() NodeID {
	aux := tree.root
	for ; aux != NilNode && tree.arena.left(aux) != NilNode; aux = tree.arena.left(aux) {
	}
	return aux
}

func (tree *bsTree[K, M]) Max() NodeID {
	aux := tree.root
	for ; aux != NilNode && tree.arena.right(aux) != NilNode; aux = tree.arena.right(aux) {
	}
	return aux
}

// Inorder traversal to implement the DFS.
func (tree *bsTree[K, M]) Foreach(action func(idx int64, id NodeID, key K) bool) {
	size := tree.Len()
	aux := tree.root
	if size <= 0 || aux == NilNode {
		return
	}

	stack := make([]NodeID, 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != NilNode; aux = tree.arena.left(aux) {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux, tree.arena.key(aux)) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = tree.arena.right(aux); aux != NilNode; aux = tree.arena.left(aux) {
			stack = append(stack, aux)
		}
	}
}

func (tree *bsTree[K, M]) InOrder() []K {
	keys := make([]K, 0, tree.Len())
	tree.Foreach(func(idx int64, id NodeID, key K) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

type treeCfg struct {
	name           string
	capacity       int
	isDesc         bool
	isStatsEnabled bool
	meterProvider  metric.MeterProvider
	logger         xlog.XLogger
}

type TreeOption func(*treeCfg)

// WithTreeName names the tree in logs and in the stats meter.
func WithTreeName(name string) TreeOption {
	return func(cfg *treeCfg) {
		if name != "" {
			cfg.name = name
		}
	}
}

func WithTreeDesc() TreeOption {
	return func(cfg *treeCfg) {
		cfg.isDesc = true
	}
}

func WithTreeCapacity(capacity int) TreeOption {
	return func(cfg *treeCfg) {
		cfg.capacity = capacity
	}
}

// WithTreeLogger enables the fix-up decision logs at debug level.
func WithTreeLogger(logger xlog.XLogger) TreeOption {
	return func(cfg *treeCfg) {
		cfg.logger = logger
	}
}

// WithTreeStats records the insert and fix-up counters. A nil
// provider falls back to the global one.
func WithTreeStats(provider metric.MeterProvider) TreeOption {
	return func(cfg *treeCfg) {
		cfg.isStatsEnabled = true
		cfg.meterProvider = provider
	}
}
