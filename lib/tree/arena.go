package tree

import (
	"fmt"
	"math"

	"github.com/benz9527/xtree/lib/infra"
)

// arenaNode links its neighbours by arena index instead of pointers.
// The parent is a weak back-reference only used to walk upward,
// the left and right links own the subtrees.
type arenaNode[K infra.OrderedKey, M any] struct {
	key    K
	left   NodeID
	right  NodeID
	parent NodeID
	meta   M // height for AVL, color for red-black
}

// nodeArena is an append-only node store. An id is the node's
// index and is never reused or compacted.
type nodeArena[K infra.OrderedKey, M any] struct {
	nodes []arenaNode[K, M]
}

func newNodeArena[K infra.OrderedKey, M any](capacity int) *nodeArena[K, M] {
	if capacity < 0 {
		capacity = 0
	}
	return &nodeArena[K, M]{
		nodes: make([]arenaNode[K, M], 0, capacity),
	}
}

func (arena *nodeArena[K, M]) len() int {
	return len(arena.nodes)
}

func (arena *nodeArena[K, M]) allocate(key K, meta M) NodeID {
	if len(arena.nodes) >= math.MaxInt32 {
		// impossible run to here
		panic( /* debug assertion */ "[tree] arena node id space exhausted")
	}
	arena.nodes = append(arena.nodes, arenaNode[K, M]{
		key:    key,
		left:   NilNode,
		right:  NilNode,
		parent: NilNode,
		meta:   meta,
	})
	return NodeID(len(arena.nodes) - 1)
}

// get returns the node in place. The pointer is invalidated by the
// next allocate, so it must not be kept across insertions.
func (arena *nodeArena[K, M]) get(id NodeID) *arenaNode[K, M] {
	if id < 0 || int(id) >= len(arena.nodes) {
		panic(infra.WrapErrorStack(ErrInvalidNodeID, fmt.Sprintf("id %d, arena len %d", id, len(arena.nodes))))
	}
	return &arena.nodes[id]
}

func (arena *nodeArena[K, M]) key(id NodeID) K {
	return arena.get(id).key
}

func (arena *nodeArena[K, M]) left(id NodeID) NodeID {
	if id == NilNode {
		return NilNode
	}
	return arena.get(id).left
}

func (arena *nodeArena[K, M]) right(id NodeID) NodeID {
	if id == NilNode {
		return NilNode
	}
	return arena.get(id).right
}

func (arena *nodeArena[K, M]) parent(id NodeID) NodeID {
	if id == NilNode {
		return NilNode
	}
	return arena.get(id).parent
}

func (arena *nodeArena[K, M]) setLeft(id, child NodeID) {
	arena.get(id).left = child
}

func (arena *nodeArena[K, M]) setRight(id, child NodeID) {
	arena.get(id).right = child
}

func (arena *nodeArena[K, M]) setParent(id, parent NodeID) {
	arena.get(id).parent = parent
}

func (arena *nodeArena[K, M]) meta(id NodeID) M {
	return arena.get(id).meta
}

func (arena *nodeArena[K, M]) setMeta(id NodeID, meta M) {
	arena.get(id).meta = meta
}
