package tree

import (
	"iter"
	"slices"
	"sync"
)

var _ OrderedTree[int] = (*syncOrderedTree[int])(nil)

// syncOrderedTree guards every operation of the wrapped tree with a
// single lock. The tree algorithms assume exclusive access, finer
// grained locking is not possible with the whole-tree rebuild.
type syncOrderedTree[T any] struct {
	lock sync.RWMutex
	tree OrderedTree[T]
}

func (t *syncOrderedTree[T]) Len() int64 {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.Len()
}

func (t *syncOrderedTree[T]) Height() int64 {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.Height()
}

// Root is a view of the live nodes, the next Insert may rebuild them.
func (t *syncOrderedTree[T]) Root() OrderedNode[T] {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.Root()
}

func (t *syncOrderedTree[T]) Insert(val T) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.tree.Insert(val)
}

func (t *syncOrderedTree[T]) Balance() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.tree.Balance()
}

func (t *syncOrderedTree[T]) IsBalanced() bool {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.IsBalanced()
}

// Traverse snapshots the values when the iteration starts, the
// yield callbacks run without holding the lock.
func (t *syncOrderedTree[T]) Traverse(order TraversalOrder) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, val := range t.Values(order) {
			if !yield(val) {
				return
			}
		}
	}
}

func (t *syncOrderedTree[T]) InOrder() iter.Seq[T] {
	return t.Traverse(InOrderTraversal)
}

func (t *syncOrderedTree[T]) PreOrder() iter.Seq[T] {
	return t.Traverse(PreOrderTraversal)
}

func (t *syncOrderedTree[T]) PostOrder() iter.Seq[T] {
	return t.Traverse(PostOrderTraversal)
}

// Foreach runs action over a snapshot like Traverse, so action may
// call back into the tree.
func (t *syncOrderedTree[T]) Foreach(order TraversalOrder, action func(idx int64, val T) bool) {
	for idx, val := range t.Values(order) {
		if !action(int64(idx), val) {
			return
		}
	}
}

func (t *syncOrderedTree[T]) Values(order TraversalOrder) []T {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return slices.Clip(t.tree.Values(order))
}

func (t *syncOrderedTree[T]) Release() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.tree.Release()
}

// NewSyncOrderedTree wraps tree for concurrent use. The wrapped tree
// must not be used directly afterward.
func NewSyncOrderedTree[T any](tree OrderedTree[T]) OrderedTree[T] {
	if tree == nil {
		return nil
	}
	if _, ok := tree.(*syncOrderedTree[T]); ok {
		return tree
	}
	return &syncOrderedTree[T]{tree: tree}
}
