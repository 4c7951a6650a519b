package tree

import (
	"errors"
	"fmt"

	"github.com/benz9527/xbst/lib/infra"
)

var (
	ErrOrderedTreeOrderViolation       = errors.New("[ordered-tree] order violation")
	ErrOrderedTreeRootBalanceViolation = errors.New("[ordered-tree] root balance violation")
)

// ordered tree rule validation utilities.

// A binary tree keeps "left <= node <= right" for every node iff
// its in-order sequence is non-decreasing. Equal values may end up
// on both sides of a node after a rebuild, so only the weak form
// is validated here.
func OrderViolationValidate[T any](tree OrderedTree[T], cmp infra.Comparator[T]) error {
	if tree == nil || cmp == nil {
		return nil
	}
	var (
		prev    T
		hasPrev bool
		err     error
	)
	tree.Foreach(InOrderTraversal, func(idx int64, val T) bool {
		if hasPrev && cmp(prev, val) > 0 {
			err = fmt.Errorf("index %d: %v after %v, %w", idx, val, prev, ErrOrderedTreeOrderViolation)
			return false
		}
		prev, hasPrev = val, true
		return true
	})
	return err
}

func RootBalanceViolationValidate[T any](tree OrderedTree[T]) error {
	if tree == nil {
		return nil
	}
	root := tree.Root()
	if root == nil {
		return nil
	}
	l, r := nodeHeight(root.Left()), nodeHeight(root.Right())
	if diff := l - r; diff < -1 || diff > 1 {
		return fmt.Errorf("left height %d, right height %d, %w", l, r, ErrOrderedTreeRootBalanceViolation)
	}
	return nil
}

func nodeHeight[T any](node OrderedNode[T]) int64 {
	if node == nil {
		return 0
	}
	return max(nodeHeight(node.Left()), nodeHeight(node.Right())) + 1
}

// SameShape reports whether both subtrees have the same structure
// and the same values at the same positions.
func SameShape[T comparable](a, b OrderedNode[T]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Val() == b.Val() &&
		SameShape(a.Left(), b.Left()) &&
		SameShape(a.Right(), b.Right())
}
