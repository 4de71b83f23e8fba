package tree

import (
	"errors"
	"strconv"

	"github.com/benz9527/xtree/lib/infra"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(" + strconv.Itoa(int(c)) + ")"
}

type Direction int8

const (
	Left Direction = -1 + iota
	Root
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

// NodeID is the stable arena index of a node.
type NodeID int32

// NilNode is the absent link. It is conceptually a black leaf
// with height 0.
const NilNode NodeID = -1

var (
	ErrDuplicateKey    = errors.New("[tree] duplicate key")
	ErrInvalidRotation = errors.New("[tree] invalid rotation")
	ErrInvalidNodeID   = errors.New("[tree] invalid node id")
)

// BSTree is the read side shared by the balanced trees and the
// insertion entry. The accessors never mutate the tree, so a
// layout or printing step is able to walk it freely.
type BSTree[K infra.OrderedKey] interface {
	Len() int64
	Root() NodeID
	Left(id NodeID) NodeID
	Right(id NodeID) NodeID
	Parent(id NodeID) NodeID
	Key(id NodeID) K
	// Insert returns the new node id, or NilNode with ErrDuplicateKey
	// and the tree is left unchanged.
	Insert(key K) (NodeID, error)
	Search(key K) NodeID
	Min() NodeID
	Max() NodeID
	Foreach(action func(idx int64, id NodeID, key K) bool)
	InOrder() []K
}

type AVLTree[K infra.OrderedKey] interface {
	BSTree[K]
	Height(id NodeID) int32
	BalanceFactor(id NodeID) int32
}

type RBTree[K infra.OrderedKey] interface {
	BSTree[K]
	Color(id NodeID) RBColor
	ForeachColor(action func(idx int64, color RBColor, key K) bool)
}

// balancer is the fix-up strategy over the shared arena and
// rotation primitives. M is the strategy field of each node.
type balancer[K infra.OrderedKey, M any] interface {
	name() string
	// newMeta is the strategy field of a freshly allocated node.
	newMeta(isRoot bool) M
	// insertRebalance restores the invariant after x was linked.
	insertRebalance(tree *bsTree[K, M], x NodeID)
}
