package tree

import (
	"github.com/benz9527/xtree/lib/infra"
	"go.uber.org/zap"
)

type avlTree[K infra.OrderedKey] struct {
	*bsTree[K, int32]
}

func (tree *avlTree[K]) Height(id NodeID) int32 {
	return avlHeight(tree.bsTree, id)
}

func (tree *avlTree[K]) BalanceFactor(id NodeID) int32 {
	return avlBalanceFactor(tree.bsTree, id)
}

// avlBalancer keeps the height of every node on the insertion path
// and the balance factor inside [-1, 1].
type avlBalancer[K infra.OrderedKey] struct{}

func (avlBalancer[K]) name() string {
	return "avl"
}

func (avlBalancer[K]) newMeta(bool) int32 {
	return 1
}

func avlHeight[K infra.OrderedKey](tree *bsTree[K, int32], id NodeID) int32 {
	if id == NilNode {
		return 0
	}
	return tree.arena.meta(id)
}

func avlUpdateHeight[K infra.OrderedKey](tree *bsTree[K, int32], id NodeID) {
	tree.arena.setMeta(id, 1+max(
		avlHeight(tree, tree.arena.left(id)),
		avlHeight(tree, tree.arena.right(id)),
	))
}

func avlBalanceFactor[K infra.OrderedKey](tree *bsTree[K, int32], id NodeID) int32 {
	if id == NilNode {
		return 0
	}
	return avlHeight(tree, tree.arena.left(id)) - avlHeight(tree, tree.arena.right(id))
}

// The rotation itself never touches the heights. The demoted node is
// updated before the promoted one because the latter depends on it.
func avlRotateLeft[K infra.OrderedKey](tree *bsTree[K, int32], x NodeID) NodeID {
	y := tree.leftRotate(x)
	avlUpdateHeight(tree, x)
	avlUpdateHeight(tree, y)
	return y
}

func avlRotateRight[K infra.OrderedKey](tree *bsTree[K, int32], x NodeID) NodeID {
	y := tree.rightRotate(x)
	avlUpdateHeight(tree, x)
	avlUpdateHeight(tree, y)
	return y
}

/*
The walk starts at the parent of the new node and goes up to the root.
Every node on the path gets its height recomputed. The cases are
checked in this order:

ll: bf > 1 and bf(left) >= 0. Single right rotation at X.

	    X              L
	   /              / \
	  L      ===>    Ll  X
	 /
	Ll

lr: bf > 1 and bf(left) < 0. Left rotation at L, then right rotation at X.

	  X            X             Lr
	 /            /             /  \
	L     ===>   Lr    ===>    L    X
	 \          /
	  Lr       L

rr: bf < -1 and bf(right) <= 0. Single left rotation at X.

rl: bf < -1 and bf(right) > 0. Right rotation at R, then left rotation at X.

After a rotation the walk continues from the parent of the new
subtree root. There is no early exit.
*/
func (avlBalancer[K]) insertRebalance(tree *bsTree[K, int32], x NodeID) {
	for aux := tree.arena.parent(x); aux != NilNode; {
		avlUpdateHeight(tree, aux)
		bf := avlBalanceFactor(tree, aux)
		switch {
		case bf >= -1 && bf <= 1:
		case /* ll */ bf > 1 && avlBalanceFactor(tree, tree.arena.left(aux)) >= 0:
			tree.debug("avl ll", zap.Int32("id", int32(aux)), zap.Int32("bf", bf))
			aux = avlRotateRight(tree, aux)
		case /* lr */ bf > 1:
			tree.debug("avl lr", zap.Int32("id", int32(aux)), zap.Int32("bf", bf))
			avlRotateLeft(tree, tree.arena.left(aux))
			aux = avlRotateRight(tree, aux)
		case /* rr */ bf < -1 && avlBalanceFactor(tree, tree.arena.right(aux)) <= 0:
			tree.debug("avl rr", zap.Int32("id", int32(aux)), zap.Int32("bf", bf))
			aux = avlRotateLeft(tree, aux)
		case /* rl */ bf < -1:
			tree.debug("avl rl", zap.Int32("id", int32(aux)), zap.Int32("bf", bf))
			avlRotateRight(tree, tree.arena.right(aux))
			aux = avlRotateLeft(tree, aux)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[tree] avl unknown balance factor case")
		}
		aux = tree.arena.parent(aux)
	}
}

func NewAVLTree[K infra.OrderedKey](opts ...TreeOption) AVLTree[K] {
	return &avlTree[K]{
		bsTree: newBSTree[K, int32](avlBalancer[K]{}, opts...),
	}
}
