package tree

import (
	"iter"
	"strconv"
	"strings"
)

type TraversalOrder uint8

const (
	InOrderTraversal TraversalOrder = iota
	PreOrderTraversal
	PostOrderTraversal
	_traversalMax
)

func (order TraversalOrder) String() string {
	switch order {
	case InOrderTraversal:
		return "in-order"
	case PreOrderTraversal:
		return "pre-order"
	case PostOrderTraversal:
		return "post-order"
	default:
	}
	return "TraversalOrder(" + strconv.Itoa(int(order)) + ")"
}

// ParseTraversalOrder accepts "in", "pre", "post" with an optional
// "-order"/"order" suffix.
func ParseTraversalOrder(order string) (TraversalOrder, bool) {
	order = strings.ToLower(strings.TrimSpace(order))
	order = strings.TrimSuffix(strings.TrimSuffix(order, "order"), "-")
	switch order {
	case "in":
		return InOrderTraversal, true
	case "pre":
		return PreOrderTraversal, true
	case "post":
		return PostOrderTraversal, true
	default:
	}
	return _traversalMax, false
}

type OrderedNode[T any] interface {
	Val() T
	Left() OrderedNode[T]
	Right() OrderedNode[T]
}

// OrderedTree is a binary search tree which accepts duplicates.
// Values not less than a node go to its right.
// It is NOT safe for concurrent use, see NewSyncOrderedTree.
type OrderedTree[T any] interface {
	// Len counts the nodes by a full traversal.
	Len() int64
	// Height of an empty tree is 0, of a single node 1.
	Height() int64
	Root() OrderedNode[T]
	Insert(val T) error
	// Balance rebuilds the whole tree into a minimal height tree.
	Balance()
	// IsBalanced only checks the two subtrees of the root.
	IsBalanced() bool
	InOrder() iter.Seq[T]
	PreOrder() iter.Seq[T]
	PostOrder() iter.Seq[T]
	Traverse(order TraversalOrder) iter.Seq[T]
	Foreach(order TraversalOrder, action func(idx int64, val T) bool)
	Values(order TraversalOrder) []T
	Release()
}
