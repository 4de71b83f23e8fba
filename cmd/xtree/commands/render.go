package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/benz9527/xtree/lib/tree"
)

// renderTree prints the tree as indented text. It only reads the
// tree through the accessors.
//
//	20 [black]
//	├── L 10 [red]
//	└── R 30 [red]
func renderTree(w io.Writer, t tree.BSTree[int], label func(id tree.NodeID) string) error {
	root := t.Root()
	if root == tree.NilNode {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}

	type frame struct {
		id     tree.NodeID
		prefix string
		side   string
		last   bool
		isRoot bool
	}

	builder := &strings.Builder{}
	stack := []frame{{id: root, isRoot: true}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		childPrefix := ""
		if f.isRoot {
			fmt.Fprintf(builder, "%d [%s]\n", t.Key(f.id), label(f.id))
		} else {
			branch, next := "├── ", "│   "
			if f.last {
				branch, next = "└── ", "    "
			}
			fmt.Fprintf(builder, "%s%s%s %d [%s]\n", f.prefix, branch, f.side, t.Key(f.id), label(f.id))
			childPrefix = f.prefix + next
		}

		l, r := t.Left(f.id), t.Right(f.id)
		// Right is pushed first so the left child is printed first.
		if r != tree.NilNode {
			stack = append(stack, frame{id: r, prefix: childPrefix, side: "R", last: true})
		}
		if l != tree.NilNode {
			stack = append(stack, frame{id: l, prefix: childPrefix, side: "L", last: r == tree.NilNode})
		}
	}
	_, err := io.WriteString(w, builder.String())
	return err
}

func avlLabel(t tree.AVLTree[int]) func(id tree.NodeID) string {
	return func(id tree.NodeID) string {
		return fmt.Sprintf("h=%d bf=%d", t.Height(id), t.BalanceFactor(id))
	}
}

func rbLabel(t tree.RBTree[int]) func(id tree.NodeID) string {
	return func(id tree.NodeID) string {
		return strings.ToLower(t.Color(id).String())
	}
}
