package tree

import (
	"errors"
	"fmt"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// Tree rule validation utilities. They only read the tree through
// its accessors and are meant for tests and the verify tool.

var (
	ErrOrderViolation      = errors.New("[tree] order violation")
	ErrParentLinkViolation = errors.New("[tree] parent link violation")
	ErrHeightViolation     = errors.New("[tree] height violation")
	ErrBalanceViolation    = errors.New("[tree] balance violation")
	ErrRedViolation        = errors.New("[tree] rbtree red violation")
	ErrBlackViolation      = errors.New("[tree] rbtree black violation")
	ErrRootColorViolation  = errors.New("[tree] rbtree root color violation")
)

type keyComparer[K infra.OrderedKey] interface {
	keyCompare(k1, k2 K) int64
}

func treeKeyComparator[K infra.OrderedKey](tree BSTree[K]) infra.OrderedKeyComparator[K] {
	if c, ok := tree.(keyComparer[K]); ok {
		return c.keyCompare
	}
	return infra.AscendingComparator[K]()
}

// preorder visits every reachable node once, at most Len() nodes,
// so a broken link can't trap the caller in a cycle.
func preorder[K infra.OrderedKey](tree BSTree[K], action func(id NodeID)) (visited int64, err error) {
	size := tree.Len()
	if tree.Root() == NilNode {
		if size != 0 {
			return 0, fmt.Errorf("%w: empty root with %d nodes", ErrParentLinkViolation, size)
		}
		return 0, nil
	}

	stack := make([]NodeID, 0, size>>1+1)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, tree.Root())
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited++; visited > size {
			return visited, fmt.Errorf("%w: more than %d nodes reachable", ErrParentLinkViolation, size)
		}
		action(aux)
		if r := tree.Right(aux); r != NilNode {
			stack = append(stack, r)
		}
		if l := tree.Left(aux); l != NilNode {
			stack = append(stack, l)
		}
	}
	if visited != size {
		return visited, fmt.Errorf("%w: %d of %d nodes reachable", ErrParentLinkViolation, visited, size)
	}
	return visited, nil
}

// OrderValidate checks every node against the bounds inherited from
// its ancestors, so an out-of-place grandchild is caught as well.
func OrderValidate[K infra.OrderedKey](tree BSTree[K]) error {
	type bound struct {
		id        NodeID
		low, high NodeID
	}

	kcmp := treeKeyComparator(tree)
	size := tree.Len()
	if tree.Root() == NilNode {
		return nil
	}

	var merr error
	stack := make([]bound, 0, size>>1+1)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, bound{id: tree.Root(), low: NilNode, high: NilNode})
	for visited := int64(0); len(stack) > 0; visited++ {
		if visited >= size {
			return multierr.Append(merr, fmt.Errorf("%w: more than %d nodes reachable", ErrOrderViolation, size))
		}
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		key := tree.Key(b.id)
		if b.low != NilNode && kcmp(key, tree.Key(b.low)) <= 0 {
			merr = multierr.Append(merr, fmt.Errorf("%w: node %d key %v not after ancestor %d key %v",
				ErrOrderViolation, b.id, key, b.low, tree.Key(b.low)))
		}
		if b.high != NilNode && kcmp(key, tree.Key(b.high)) >= 0 {
			merr = multierr.Append(merr, fmt.Errorf("%w: node %d key %v not before ancestor %d key %v",
				ErrOrderViolation, b.id, key, b.high, tree.Key(b.high)))
		}
		if r := tree.Right(b.id); r != NilNode {
			stack = append(stack, bound{id: r, low: b.id, high: b.high})
		}
		if l := tree.Left(b.id); l != NilNode {
			stack = append(stack, bound{id: l, low: b.low, high: b.id})
		}
	}
	return merr
}

func ParentLinkValidate[K infra.OrderedKey](tree BSTree[K]) error {
	var merr error
	if root := tree.Root(); root != NilNode && tree.Parent(root) != NilNode {
		merr = multierr.Append(merr, fmt.Errorf("%w: root %d has parent %d",
			ErrParentLinkViolation, root, tree.Parent(root)))
	}
	_, err := preorder(tree, func(id NodeID) {
		for _, child := range []NodeID{tree.Left(id), tree.Right(id)} {
			if child != NilNode && tree.Parent(child) != id {
				merr = multierr.Append(merr, fmt.Errorf("%w: node %d has parent %d, expected %d",
					ErrParentLinkViolation, child, tree.Parent(child), id))
			}
		}
	})
	return multierr.Append(merr, err)
}

// HeightBalanceValidate checks the stored heights bottom-up and the
// balance factor of every node.
func HeightBalanceValidate[K infra.OrderedKey](tree AVLTree[K]) error {
	order := make([]NodeID, 0, tree.Len())
	if _, err := preorder[K](tree, func(id NodeID) {
		order = append(order, id)
	}); err != nil {
		return err
	}

	var merr error
	heights := make(map[NodeID]int32, len(order))
	heights[NilNode] = 0
	// Children always come after their parent in preorder.
	for _, id := range lo.Reverse(order) {
		lh, rh := heights[tree.Left(id)], heights[tree.Right(id)]
		h := 1 + max(lh, rh)
		heights[id] = h
		if stored := tree.Height(id); stored != h {
			merr = multierr.Append(merr, fmt.Errorf("%w: node %d key %v stored height %d, actual %d",
				ErrHeightViolation, id, tree.Key(id), stored, h))
		}
		if bf := lh - rh; bf > 1 || bf < -1 {
			merr = multierr.Append(merr, fmt.Errorf("%w: node %d key %v balance factor %d",
				ErrBalanceViolation, id, tree.Key(id), bf))
		}
	}
	return merr
}

func IsHeightBalanced[K infra.OrderedKey](tree AVLTree[K]) bool {
	return HeightBalanceValidate[K](tree) == nil
}

func RootColorValidate[K infra.OrderedKey](tree RBTree[K]) error {
	if root := tree.Root(); root != NilNode && tree.Color(root) != Black {
		return fmt.Errorf("%w: root %d key %v is %s", ErrRootColorViolation, root, tree.Key(root), tree.Color(root))
	}
	return nil
}

// Inorder traversal to validate no red node has a red child.
func RedViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	var merr error
	tree.Foreach(func(idx int64, id NodeID, key K) bool {
		if tree.Color(id) != Red {
			return true
		}
		for _, child := range []NodeID{tree.Left(id), tree.Right(id)} {
			if tree.Color(child) == Red {
				merr = multierr.Append(merr, fmt.Errorf("%w: red node %d key %v has red child %d",
					ErrRedViolation, id, key, child))
			}
		}
		return true
	})
	return merr
}

func blackDepthTo[K infra.OrderedKey](tree RBTree[K], target, to NodeID) int {
	depth := 0
	for aux := target; aux != to; aux = tree.Parent(aux) {
		if tree.Color(aux) == Black {
			depth++
		}
	}
	return depth
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
	        /  \
	     <8>    [15]
	     / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

Every node missing a child ends a path to a NIL leaf, and
each of those paths must count the same black nodes.
*/
func BlackViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	leaves := make([]NodeID, 0, tree.Len()>>1+1)
	if _, err := preorder[K](tree, func(id NodeID) {
		if /* nil leaves, keep one */ tree.Left(id) == NilNode || tree.Right(id) == NilNode {
			leaves = append(leaves, id)
		}
	}); err != nil {
		return err
	}
	if len(leaves) == 0 {
		return nil
	}

	var merr error
	blackDepth := blackDepthTo(tree, leaves[0], NilNode)
	for _, leaf := range leaves[1:] {
		if depth := blackDepthTo(tree, leaf, NilNode); depth != blackDepth {
			merr = multierr.Append(merr, fmt.Errorf("%w: node %d key %v black depth %d, expected %d",
				ErrBlackViolation, leaf, tree.Key(leaf), depth, blackDepth))
		}
	}
	return merr
}

func IsRedBlackValid[K infra.OrderedKey](tree RBTree[K]) bool {
	return multierr.Combine(
		RootColorValidate[K](tree),
		RedViolationValidate[K](tree),
		BlackViolationValidate[K](tree),
	) == nil
}
