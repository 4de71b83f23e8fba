package tree

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/xlog"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNodeArena(t *testing.T) {
	arena := newNodeArena[string, RBColor](-1)
	require.Equal(t, 0, arena.len())

	a := arena.allocate("a", Black)
	b := arena.allocate("b", Red)
	require.Equal(t, NodeID(0), a)
	require.Equal(t, NodeID(1), b)
	require.Equal(t, 2, arena.len())

	require.Equal(t, NilNode, arena.left(a))
	require.Equal(t, NilNode, arena.right(a))
	require.Equal(t, NilNode, arena.parent(a))
	require.Equal(t, NilNode, arena.left(NilNode))

	arena.setRight(a, b)
	arena.setParent(b, a)
	arena.setMeta(b, Black)
	require.Equal(t, b, arena.right(a))
	require.Equal(t, a, arena.parent(b))
	require.Equal(t, Black, arena.meta(b))
	require.Equal(t, "b", arena.key(b))

	for _, id := range []NodeID{NilNode, 2, 1 << 20} {
		func() {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				err, ok := r.(error)
				require.True(t, ok)
				require.ErrorIs(t, err, ErrInvalidNodeID)
			}()
			arena.get(id)
		}()
	}
}

type treeFactory struct {
	name string
	new  func(opts ...TreeOption) BSTree[int]
}

var treeFactories = []treeFactory{
	{"avl", func(opts ...TreeOption) BSTree[int] { return NewAVLTree[int](opts...) }},
	{"rbtree", func(opts ...TreeOption) BSTree[int] { return NewRBTree[int](opts...) }},
}

func TestBSTree_DuplicateKeyIsIdempotent(t *testing.T) {
	for _, f := range treeFactories {
		t.Run(f.name, func(tt *testing.T) {
			keys := []int{41, 20, 65, 11, 29, 50, 91, 32, 72, 99}
			once, twice := f.new(), f.new()
			for _, key := range keys {
				_, err := once.Insert(key)
				require.NoError(tt, err)
				_, err = twice.Insert(key)
				require.NoError(tt, err)
			}

			for _, key := range keys {
				id, err := twice.Insert(key)
				require.ErrorIs(tt, err, ErrDuplicateKey)
				require.True(tt, errors.Is(err, ErrDuplicateKey))
				require.Equal(tt, NilNode, id)
			}

			require.Equal(tt, once.Len(), twice.Len())
			require.Equal(tt, once.Root(), twice.Root())
			switch x := once.(type) {
			case *avlTree[int]:
				y := twice.(*avlTree[int])
				require.Equal(tt, x.arena.nodes, y.arena.nodes)
			case *rbTree[int]:
				y := twice.(*rbTree[int])
				require.Equal(tt, x.arena.nodes, y.arena.nodes)
			default:
				tt.Fatalf("unknown tree %T", once)
			}
		})
	}
}

func TestBSTree_RejectedInsertLeavesArenaUnchanged(t *testing.T) {
	tree := NewRBTree[int]().(*rbTree[int])
	for _, key := range []int{10, 20, 30, 40} {
		_, err := tree.Insert(key)
		require.NoError(t, err)
	}
	snapshot := slices.Clone(tree.arena.nodes)
	capBefore := cap(tree.arena.nodes)

	_, err := tree.Insert(30)
	require.ErrorIs(t, err, ErrDuplicateKey)
	require.Equal(t, snapshot, tree.arena.nodes)
	require.Equal(t, capBefore, cap(tree.arena.nodes))
}

func TestBSTree_ReadOperations(t *testing.T) {
	for _, f := range treeFactories {
		t.Run(f.name, func(tt *testing.T) {
			tree := f.new()
			require.Equal(tt, NilNode, tree.Min())
			require.Equal(tt, NilNode, tree.Max())
			require.Equal(tt, NilNode, tree.Search(1))
			require.Empty(tt, tree.InOrder())
			tree.Foreach(func(idx int64, id NodeID, key int) bool {
				tt.Fatal("empty tree visited")
				return false
			})

			ids := make(map[int]NodeID)
			for _, key := range []int{8, 3, 10, 1, 6, 14, 4, 7, 13} {
				id, err := tree.Insert(key)
				require.NoError(tt, err)
				ids[key] = id
			}
			for key, id := range ids {
				require.Equal(tt, id, tree.Search(key))
				require.Equal(tt, key, tree.Key(id))
			}
			require.Equal(tt, NilNode, tree.Search(5))
			require.Equal(tt, ids[1], tree.Min())
			require.Equal(tt, ids[14], tree.Max())
			require.Equal(tt, []int{1, 3, 4, 6, 7, 8, 10, 13, 14}, tree.InOrder())

			visited := make([]int, 0, 3)
			tree.Foreach(func(idx int64, id NodeID, key int) bool {
				require.Equal(tt, int64(len(visited)), idx)
				require.Equal(tt, id, tree.Search(key))
				visited = append(visited, key)
				return idx < 2
			})
			require.Equal(tt, []int{1, 3, 4}, visited)
		})
	}
}

func TestBSTree_Desc(t *testing.T) {
	for _, f := range treeFactories {
		t.Run(f.name, func(tt *testing.T) {
			tree := f.new(WithTreeDesc())
			for i := 0; i < 100; i++ {
				_, err := tree.Insert(i)
				require.NoError(tt, err)
			}
			keys := tree.InOrder()
			require.Len(tt, keys, 100)
			for idx, key := range keys {
				require.Equal(tt, 99-idx, key)
			}
			require.Equal(tt, 99, tree.Key(tree.Min()))
			require.Equal(tt, 0, tree.Key(tree.Max()))
			require.Equal(tt, 42, tree.Key(tree.Search(42)))
			require.NoError(tt, OrderValidate[int](tree))
		})
	}
}

func TestBSTree_StringKeys(t *testing.T) {
	avl, rb := NewAVLTree[string](), NewRBTree[string]()
	for _, key := range []string{"m", "c", "x", "a", "e", "z", "b"} {
		_, err := avl.Insert(key)
		require.NoError(t, err)
		_, err = rb.Insert(key)
		require.NoError(t, err)
	}
	expected := []string{"a", "b", "c", "e", "m", "x", "z"}
	require.Equal(t, expected, avl.InOrder())
	require.Equal(t, expected, rb.InOrder())
	require.True(t, IsHeightBalanced[string](avl))
	require.True(t, IsRedBlackValid[string](rb))
}

func TestBSTree_AccessorInvalidID(t *testing.T) {
	tree := NewAVLTree[int]()
	_, err := tree.Insert(1)
	require.NoError(t, err)

	require.Equal(t, NilNode, tree.Left(NilNode))
	require.Equal(t, NilNode, tree.Parent(NilNode))
	require.Panics(t, func() { tree.Key(NilNode) })
	require.Panics(t, func() { tree.Left(5) })
	require.Panics(t, func() { tree.Height(5) })
}

func TestBSTree_Logger(t *testing.T) {
	buf := &zaptest.Buffer{}
	logger := xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.LogLevelDebug),
		xlog.WithXLoggerWriteSyncer(buf),
	)
	tree := NewRBTree[int](WithTreeLogger(logger), WithTreeName("logged"))
	for _, key := range []int{10, 20, 30, 20} {
		_, _ = tree.Insert(key)
	}
	require.NoError(t, logger.Sync())

	msgs := make([]string, 0, len(buf.Lines()))
	for _, line := range buf.Lines() {
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		require.Equal(t, "logged", entry["tree"])
		msgs = append(msgs, entry["msg"].(string))
	}
	require.Equal(t, []string{
		"insert root",
		"insert",
		"insert",
		"rbtree im4 outer",
		"insert duplicate",
	}, msgs)

	// Without a logger nothing is written and nothing panics.
	require.NotPanics(t, func() {
		_, _ = NewAVLTree[int]().Insert(1)
	})
}

func TestBSTree_CustomBalancerStrategyName(t *testing.T) {
	tree := newBSTree[int, int32](unbalanced[int]{}, WithTreeName(""))
	require.Equal(t, "bst", tree.name)
	tree = newBSTree[int, int32](unbalanced[int]{}, WithTreeName("custom"), WithTreeCapacity(16))
	require.Equal(t, "custom", tree.name)
	require.Equal(t, 16, cap(tree.arena.nodes))
	require.Equal(t, int64(-1), tree.keyCompare(1, 2))
	require.Equal(t, infra.AscendingComparator[int]()(3, 2), tree.keyCompare(3, 2))
}
