package tree

import (
	"fmt"

	"github.com/benz9527/xtree/lib/infra"
)

// replaceChild points the slot that held old at y. A nil parent
// means old was the root.
func (tree *bsTree[K, M]) replaceChild(p, old, y NodeID) {
	switch {
	case p == NilNode:
		tree.root = y
	case tree.arena.left(p) == old:
		tree.arena.setLeft(p, y)
	case tree.arena.right(p) == old:
		tree.arena.setRight(p, y)
	default:
		// impossible run to here
		panic( /* debug assertion */ infra.NewErrorStack(fmt.Sprintf("[tree] node %d is not a child of %d", old, p)))
	}
	tree.arena.setParent(y, p)
}

/*
	     |                         |
	     X                         Y
	    / \     leftRotate(X)     / \
	   L   Y    ============>    X   Yr
	      / \                   / \
	    Yl   Yr                L   Yl
*/
func (tree *bsTree[K, M]) leftRotate(x NodeID) NodeID {
	y := tree.arena.right(x)
	if x == NilNode || y == NilNode {
		panic(infra.WrapErrorStack(ErrInvalidRotation, fmt.Sprintf("left rotate node %d without right child", x)))
	}

	p, yl := tree.arena.parent(x), tree.arena.left(y)
	tree.arena.setRight(x, yl)
	if yl != NilNode {
		tree.arena.setParent(yl, x)
	}
	tree.replaceChild(p, x, y)
	tree.arena.setLeft(y, x)
	tree.arena.setParent(x, y)

	tree.stats.IncreaseRotateCount(Left)
	return y
}

/*
	       |                         |
	       X                         Y
	      / \     rightRotate(X)    / \
	     Y   R    ============>   Yl   X
	    / \                           / \
	  Yl   Yr                       Yr   R
*/
func (tree *bsTree[K, M]) rightRotate(x NodeID) NodeID {
	y := tree.arena.left(x)
	if x == NilNode || y == NilNode {
		panic(infra.WrapErrorStack(ErrInvalidRotation, fmt.Sprintf("right rotate node %d without left child", x)))
	}

	p, yr := tree.arena.parent(x), tree.arena.right(y)
	tree.arena.setLeft(x, yr)
	if yr != NilNode {
		tree.arena.setParent(yr, x)
	}
	tree.replaceChild(p, x, y)
	tree.arena.setRight(y, x)
	tree.arena.setParent(x, y)

	tree.stats.IncreaseRotateCount(Right)
	return y
}
