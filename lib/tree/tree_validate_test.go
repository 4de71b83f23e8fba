package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestValidate_EmptyTree(t *testing.T) {
	avl, rb := NewAVLTree[int](), NewRBTree[int]()
	require.NoError(t, OrderValidate[int](avl))
	require.NoError(t, ParentLinkValidate[int](avl))
	require.NoError(t, HeightBalanceValidate[int](avl))
	require.NoError(t, RootColorValidate[int](rb))
	require.NoError(t, RedViolationValidate[int](rb))
	require.NoError(t, BlackViolationValidate[int](rb))
}

func TestValidate_RedBlackViolations(t *testing.T) {
	tree := NewRBTree[int]().(*rbTree[int])
	for _, key := range []int{20, 10, 30, 5} {
		_, err := tree.Insert(key)
		require.NoError(t, err)
	}
	require.True(t, IsRedBlackValid[int](tree))

	tree.arena.setMeta(tree.Root(), Red)
	require.ErrorIs(t, RootColorValidate[int](tree), ErrRootColorViolation)
	require.False(t, IsRedBlackValid[int](tree))
	tree.arena.setMeta(tree.Root(), Black)

	// 5 is red under a black 10, paint 10 red.
	ten := tree.Search(10)
	tree.arena.setMeta(ten, Red)
	err := RedViolationValidate[int](tree)
	require.ErrorIs(t, err, ErrRedViolation)
	require.ErrorIs(t, BlackViolationValidate[int](tree), ErrBlackViolation)
	tree.arena.setMeta(ten, Black)

	tree.arena.setMeta(tree.Search(30), Red)
	require.ErrorIs(t, BlackViolationValidate[int](tree), ErrBlackViolation)
	require.NoError(t, RedViolationValidate[int](tree))
}

func TestValidate_HeightViolations(t *testing.T) {
	tree := newBSTree[int, int32](unbalanced[int]{})
	for _, key := range []int{1, 2, 3} {
		_, err := tree.Insert(key)
		require.NoError(t, err)
	}
	avl := &avlTree[int]{bsTree: tree}

	err := HeightBalanceValidate[int](avl)
	require.ErrorIs(t, err, ErrHeightViolation)
	require.ErrorIs(t, err, ErrBalanceViolation)
	require.False(t, IsHeightBalanced[int](avl))
	// Every stored height is zero and the root leans right by two.
	errs := multierr.Errors(err)
	require.Len(t, errs, 4)

	for _, key := range []int{3, 2, 1} {
		id := tree.Search(key)
		avlUpdateHeight(tree, id)
	}
	err = HeightBalanceValidate[int](avl)
	require.ErrorIs(t, err, ErrBalanceViolation)
	require.NotErrorIs(t, err, ErrHeightViolation)
}

func TestValidate_OrderAndParentLinkViolations(t *testing.T) {
	tree := newUnbalancedTree(t, 50, 30, 70, 20, 40)
	require.NoError(t, OrderValidate[int](tree))
	require.NoError(t, ParentLinkValidate[int](tree))

	// Swap 40 under 70: the direct parent is fine, the root bound is not.
	forty, seventy, thirty := tree.Search(40), tree.Search(70), tree.Search(30)
	tree.arena.setRight(thirty, NilNode)
	tree.arena.setLeft(seventy, forty)
	tree.arena.setParent(forty, seventy)
	require.ErrorIs(t, OrderValidate[int](tree), ErrOrderViolation)
	require.NoError(t, ParentLinkValidate[int](tree))

	tree.arena.setParent(forty, thirty)
	require.ErrorIs(t, ParentLinkValidate[int](tree), ErrParentLinkViolation)

	// A cycle through the left link ends the walk.
	tree.arena.setLeft(forty, tree.Root())
	require.ErrorIs(t, OrderValidate[int](tree), ErrOrderViolation)
	require.ErrorIs(t, ParentLinkValidate[int](tree), ErrParentLinkViolation)
}
