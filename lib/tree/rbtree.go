package tree

import (
	"github.com/benz9527/xtree/lib/infra"
	"go.uber.org/zap"
)

type rbTree[K infra.OrderedKey] struct {
	*bsTree[K, RBColor]
}

func (tree *rbTree[K]) Color(id NodeID) RBColor {
	return rbColor(tree.bsTree, id)
}

// ForeachColor is the inorder traversal with the color of each node.
func (tree *rbTree[K]) ForeachColor(action func(idx int64, color RBColor, key K) bool) {
	tree.Foreach(func(idx int64, id NodeID, key K) bool {
		return action(idx, tree.arena.meta(id), key)
	})
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
type rbBalancer[K infra.OrderedKey] struct{}

func (rbBalancer[K]) name() string {
	return "rbtree"
}

func (rbBalancer[K]) newMeta(isRoot bool) RBColor {
	if isRoot {
		return Black
	}
	return Red
}

func rbColor[K infra.OrderedKey](tree *bsTree[K, RBColor], id NodeID) RBColor {
	if id == NilNode {
		return Black
	}
	return tree.arena.meta(id)
}

func rbIsRed[K infra.OrderedKey](tree *bsTree[K, RBColor], id NodeID) bool {
	return rbColor(tree, id) == Red
}

// rbPaint returns 1 when the color actually changed.
func rbPaint[K infra.OrderedKey](tree *bsTree[K, RBColor], id NodeID, color RBColor) int64 {
	if tree.arena.meta(id) == color {
		return 0
	}
	tree.arena.setMeta(id, color)
	return 1
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

im1: The parent P is black or X is the root. Nothing to fix.

im2: Both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Continue to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im3: The parent P is red but the uncle U is black. (red-violation)
X is the inner grandchild. Rotate P to the side of P.
After rotation the old parent is the outer red grandchild,
so it must enter im4 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im4: X is the outer grandchild. Repaint and rotate G to the
opposite side of X.

	    [G]                 [P]               [P]
	    / \    repaint      / \    rotate(G)  / \
	  <P> [U]  ========>  <X> [U]  ======>  <X> <G>
	  /                                           \
	<X>                                           [U]

The root is repainted into black at the end.
*/
func (rbBalancer[K]) insertRebalance(tree *bsTree[K, RBColor], x NodeID) {
	recolored := int64(0)
	for /* im1 */ x != tree.root && rbIsRed(tree, tree.arena.parent(x)) {
		p := tree.arena.parent(x)
		gp := tree.arena.parent(p)
		if gp == NilNode {
			// impossible run to here
			panic( /* debug assertion */ "[tree] rbtree red parent without grandpa")
		}

		if u := tree.sibling(p); /* im2 */ rbIsRed(tree, u) {
			tree.debug("rbtree im2 recolor", zap.Int32("id", int32(x)), zap.Int32("grandpa", int32(gp)))
			recolored += rbPaint(tree, p, Black)
			recolored += rbPaint(tree, u, Black)
			recolored += rbPaint(tree, gp, Red)
			x = gp
			continue
		}

		pdir := tree.direction(p)
		if /* im3 */ tree.direction(x) != pdir {
			tree.debug("rbtree im3 inner", zap.Int32("id", int32(x)), zap.Int32("parent", int32(p)))
			switch pdir {
			case Left:
				tree.leftRotate(p)
			case Right:
				tree.rightRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[tree] rbtree insert violate (im3)")
			}
			x, p = p, x
		}

		/* im4 */
		tree.debug("rbtree im4 outer", zap.Int32("id", int32(x)), zap.Int32("grandpa", int32(gp)))
		recolored += rbPaint(tree, p, Black)
		recolored += rbPaint(tree, gp, Red)
		switch pdir {
		case Left:
			tree.rightRotate(gp)
		case Right:
			tree.leftRotate(gp)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[tree] rbtree insert violate (im4)")
		}
		break
	}
	recolored += rbPaint(tree, tree.root, Black)
	tree.stats.IncreaseRecolorCount(recolored)
}

func NewRBTree[K infra.OrderedKey](opts ...TreeOption) RBTree[K] {
	return &rbTree[K]{
		bsTree: newBSTree[K, RBColor](rbBalancer[K]{}, opts...),
	}
}
