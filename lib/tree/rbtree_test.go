package tree

import (
	randv2 "math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func rbtreeInvariantsCheck[K int | uint64](t *testing.T, tree RBTree[K]) {
	require.NoError(t, RootColorValidate[K](tree))
	require.NoError(t, RedViolationValidate[K](tree))
	require.NoError(t, BlackViolationValidate[K](tree))
	require.NoError(t, OrderValidate[K](tree))
	require.NoError(t, ParentLinkValidate[K](tree))
}

func TestRbtreeRecolorOnly(t *testing.T) {
	tree := NewRBTree[int]()
	for _, key := range []int{50, 30, 70} {
		_, err := tree.Insert(key)
		require.NoError(t, err)
	}

	root := tree.Root()
	require.Equal(t, 50, tree.Key(root))
	require.Equal(t, Black, tree.Color(root))
	require.Equal(t, 30, tree.Key(tree.Left(root)))
	require.Equal(t, Red, tree.Color(tree.Left(root)))
	require.Equal(t, 70, tree.Key(tree.Right(root)))
	require.Equal(t, Red, tree.Color(tree.Right(root)))
	// Arena order is insertion order, nothing moved.
	require.Equal(t, NodeID(0), root)
	require.Equal(t, NodeID(1), tree.Left(root))
	require.Equal(t, NodeID(2), tree.Right(root))
	rbtreeInvariantsCheck[int](t, tree)
}

func TestRbtreeRotateAndRecolor(t *testing.T) {
	tree := NewRBTree[int]()
	ids := make([]NodeID, 0, 3)
	for _, key := range []int{10, 20, 30} {
		id, err := tree.Insert(key)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	root := tree.Root()
	require.Equal(t, ids[1], root)
	require.Equal(t, 20, tree.Key(root))
	require.Equal(t, Black, tree.Color(root))
	require.Equal(t, NilNode, tree.Parent(root))
	require.Equal(t, ids[0], tree.Left(root))
	require.Equal(t, Red, tree.Color(ids[0]))
	require.Equal(t, ids[2], tree.Right(root))
	require.Equal(t, Red, tree.Color(ids[2]))
	require.Equal(t, root, tree.Parent(ids[0]))
	require.Equal(t, root, tree.Parent(ids[2]))
	rbtreeInvariantsCheck[int](t, tree)
}

func TestRbtreeInsertRebalanceCases(t *testing.T) {
	type checkData struct {
		color RBColor
		key   uint64
	}

	testcases := []struct {
		name     string
		key      uint64
		expected []checkData
	}{
		{"root", 52, []checkData{{Black, 52}}},
		{"black parent", 47, []checkData{{Red, 47}, {Black, 52}}},
		{"outer", 3, []checkData{{Red, 3}, {Black, 47}, {Red, 52}}},
		{"red uncle", 35, []checkData{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}}},
		{"inner", 24, []checkData{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}}},
	}

	tree := NewRBTree[uint64]()
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			_, err := tree.Insert(tc.key)
			require.NoError(tt, err)
			count := 0
			tree.ForeachColor(func(idx int64, color RBColor, key uint64) bool {
				require.Equal(tt, tc.expected[idx].color, color)
				require.Equal(tt, tc.expected[idx].key, key)
				count++
				return true
			})
			require.Len(tt, tc.expected, count)
			rbtreeInvariantsCheck[uint64](tt, tree)
		})
	}
}

func TestRbtreeColorOfNilNode(t *testing.T) {
	tree := NewRBTree[int]()
	require.Equal(t, Black, tree.Color(NilNode))
	require.Equal(t, "Black", Black.String())
	require.Equal(t, "Red", Red.String())
	require.Equal(t, "RBColor(7)", RBColor(7).String())
}

func TestRbtreeInsert_SequentialNumber(t *testing.T) {
	total := uint64(1000)
	tree := NewRBTree[uint64]()
	for i := uint64(0); i < total; i++ {
		_, err := tree.Insert(i)
		require.NoError(t, err)
		rbtreeInvariantsCheck[uint64](t, tree)
	}
	require.Equal(t, int64(total), tree.Len())
	tree.Foreach(func(idx int64, id NodeID, key uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})
}

func TestRbtreeInsert_ReverseSequentialNumber(t *testing.T) {
	total := 1000
	tree := NewRBTree[int]()
	for i := total - 1; i >= 0; i-- {
		_, err := tree.Insert(i)
		require.NoError(t, err)
	}
	rbtreeInvariantsCheck[int](t, tree)
	tree.Foreach(func(idx int64, id NodeID, key int) bool {
		require.Equal(t, int(idx), key)
		return true
	})
}

func TestRbtreeInsert_RandomNumber(t *testing.T) {
	total := 2000
	rng := randv2.New(randv2.NewPCG(7, 11))
	tree := NewRBTree[int]()
	inserted := make(map[int]struct{}, total)
	for i := 0; i < total; i++ {
		key := rng.IntN(total * 4)
		_, err := tree.Insert(key)
		if _, ok := inserted[key]; ok {
			require.ErrorIs(t, err, ErrDuplicateKey)
			continue
		}
		require.NoError(t, err)
		inserted[key] = struct{}{}
		if i%50 == 0 {
			rbtreeInvariantsCheck[int](t, tree)
		}
	}
	rbtreeInvariantsCheck[int](t, tree)
	require.True(t, IsRedBlackValid[int](tree))

	expected := make([]int, 0, len(inserted))
	for key := range inserted {
		expected = append(expected, key)
	}
	sort.Ints(expected)
	require.Equal(t, expected, tree.InOrder())
}

func BenchmarkRBTree_Random(b *testing.B) {
	b.StopTimer()
	tree := NewRBTree[int](WithTreeCapacity(b.N))

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tree.Insert(rngArr[i])
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	b.StopTimer()
	tree := NewRBTree[int](WithTreeCapacity(b.N))

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tree.Insert(i)
	}
}
