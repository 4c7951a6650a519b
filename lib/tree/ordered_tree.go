package tree

import (
	"errors"
	"fmt"
	"iter"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/benz9527/xbst/lib/infra"
	"github.com/benz9527/xbst/xlog"
)

var (
	ErrOrderedTreeNilComparator     = errors.New("[ordered-tree] nil comparator")
	ErrOrderedTreeInvalidComparator = errors.New("[ordered-tree] comparator is not a strict weak order")
)

type orderedNode[T any] struct {
	left  *orderedNode[T]
	right *orderedNode[T]
	val   T
}

func (node *orderedNode[T]) Val() T {
	return node.val
}

func (node *orderedNode[T]) Left() OrderedNode[T] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *orderedNode[T]) Right() OrderedNode[T] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

// Level by level, so a degenerated subtree does not blow the stack.
func (node *orderedNode[T]) height() int64 {
	if node == nil {
		return 0
	}
	depth := int64(0)
	level := []*orderedNode[T]{node}
	next := make([]*orderedNode[T], 0, 2)
	for len(level) > 0 {
		depth++
		next = next[:0]
		for _, aux := range level {
			if aux.left != nil {
				next = append(next, aux.left)
			}
			if aux.right != nil {
				next = append(next, aux.right)
			}
		}
		level, next = next, level
	}
	return depth
}

// reconstruct builds a minimal height subtree from vals[low, high].
func reconstruct[T any](vals []T, low, high int64) *orderedNode[T] {
	if low > high {
		return nil
	}
	mid := low + (high-low)/2
	return &orderedNode[T]{
		val:   vals[mid],
		left:  reconstruct(vals, low, mid-1),
		right: reconstruct(vals, mid+1, high),
	}
}

type orderedTree[T any] struct {
	root          *orderedNode[T]
	cmp           infra.Comparator[T]
	logger        xlog.XLogger
	meter         metric.Meter
	metrics       *orderedTreeMetrics
	isDesc        bool
	isAutoBalance bool
}

func (tree *orderedTree[T]) compare(i, j T) int64 {
	res := infra.Sign(tree.cmp(i, j))
	if tree.isDesc {
		return -res
	}
	return res
}

func (tree *orderedTree[T]) Root() OrderedNode[T] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *orderedTree[T]) Len() int64 {
	count := int64(0)
	tree.preOrder(func(*orderedNode[T]) bool {
		count++
		return true
	})
	return count
}

func (tree *orderedTree[T]) Height() int64 {
	return tree.root.height()
}

func (tree *orderedTree[T]) IsBalanced() bool {
	if tree.root == nil {
		return true
	}
	diff := tree.root.left.height() - tree.root.right.height()
	return diff >= -1 && diff <= 1
}

// Insert walks down from the root, values less than a node go left
// and all others (duplicates included) go right.
// If the root is unbalanced afterward, the whole tree is rebuilt by
// Balance. A single insert may therefore cost O(n).
func (tree *orderedTree[T]) Insert(val T) error {
	if /* irreflexive */ tree.compare(val, val) != 0 {
		err := infra.WrapErrorStackWithMessage(
			ErrOrderedTreeInvalidComparator,
			fmt.Sprintf("value %v is not equal to itself", val),
		)
		tree.logger.ErrorStack(err, "[ordered-tree] insert rejected")
		tree.metrics.reject()
		return err
	}

	z := &orderedNode[T]{val: val}
	if /* empty */ tree.root == nil {
		tree.root = z
		tree.metrics.inserted()
		return nil
	}

	var (
		y   *orderedNode[T]
		res int64
	)
	for x := tree.root; x != nil; {
		y = x
		if res = tree.compare(val, x.val); /* less */ res < 0 {
			x = x.left
		} else /* greater or equal */ {
			x = x.right
		}
	}

	if /* asymmetric */ res != -tree.compare(y.val, val) {
		err := infra.WrapErrorStackWithMessage(
			ErrOrderedTreeInvalidComparator,
			fmt.Sprintf("values %v and %v compare inconsistently", val, y.val),
		)
		tree.logger.ErrorStack(err, "[ordered-tree] insert rejected")
		tree.metrics.reject()
		return err
	}

	if res < 0 {
		y.left = z
	} else {
		y.right = z
	}
	tree.metrics.inserted()

	if tree.isAutoBalance && !tree.IsBalanced() {
		before := tree.Height()
		tree.Balance()
		size := tree.Len()
		tree.metrics.rebuilt(size)
		tree.logger.Debug("[ordered-tree] rebuilt after insert",
			zap.Int64("size", size),
			zap.Int64("heightBefore", before),
			zap.Int64("heightAfter", tree.Height()),
		)
	}
	return nil
}

func (tree *orderedTree[T]) Balance() {
	vals := tree.Values(InOrderTraversal)
	if len(vals) == 0 {
		return
	}
	tree.Release()
	tree.root = reconstruct(vals, 0, int64(len(vals))-1)
}

func (tree *orderedTree[T]) inOrder(action func(*orderedNode[T]) bool) {
	stack := make([]*orderedNode[T], 0, 16)
	defer func() {
		clear(stack)
	}()
	for aux := tree.root; aux != nil || len(stack) > 0; {
		for ; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !action(aux) {
			return
		}
		aux = aux.right
	}
}

func (tree *orderedTree[T]) preOrder(action func(*orderedNode[T]) bool) {
	if tree.root == nil {
		return
	}
	stack := make([]*orderedNode[T], 0, 16)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, tree.root)
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !action(aux) {
			return
		}
		// Right first, so the left is popped first.
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
	}
}

func (tree *orderedTree[T]) postOrder(action func(*orderedNode[T]) bool) {
	stack := make([]*orderedNode[T], 0, 16)
	defer func() {
		clear(stack)
	}()
	var last *orderedNode[T]
	for aux := tree.root; aux != nil || len(stack) > 0; {
		if aux != nil {
			stack = append(stack, aux)
			aux = aux.left
			continue
		}
		peek := stack[len(stack)-1]
		if peek.right != nil && peek.right != last {
			aux = peek.right
			continue
		}
		if !action(peek) {
			return
		}
		last = peek
		stack = stack[:len(stack)-1]
	}
}

func (tree *orderedTree[T]) walk(order TraversalOrder) func(action func(*orderedNode[T]) bool) {
	switch order {
	case PreOrderTraversal:
		return tree.preOrder
	case PostOrderTraversal:
		return tree.postOrder
	case InOrderTraversal:
		fallthrough
	default:
	}
	return tree.inOrder
}

// Traverse returns a lazy sequence. Every range over it starts a new
// walk from the current root.
func (tree *orderedTree[T]) Traverse(order TraversalOrder) iter.Seq[T] {
	walk := tree.walk(order)
	return func(yield func(T) bool) {
		walk(func(node *orderedNode[T]) bool {
			return yield(node.val)
		})
	}
}

func (tree *orderedTree[T]) InOrder() iter.Seq[T] {
	return tree.Traverse(InOrderTraversal)
}

func (tree *orderedTree[T]) PreOrder() iter.Seq[T] {
	return tree.Traverse(PreOrderTraversal)
}

func (tree *orderedTree[T]) PostOrder() iter.Seq[T] {
	return tree.Traverse(PostOrderTraversal)
}

func (tree *orderedTree[T]) Foreach(order TraversalOrder, action func(idx int64, val T) bool) {
	idx := int64(0)
	tree.walk(order)(func(node *orderedNode[T]) bool {
		if !action(idx, node.val) {
			return false
		}
		idx++
		return true
	})
}

func (tree *orderedTree[T]) Values(order TraversalOrder) []T {
	vals := make([]T, 0, 16)
	tree.walk(order)(func(node *orderedNode[T]) bool {
		vals = append(vals, node.val)
		return true
	})
	return vals
}

// Release unlinks every node bottom-up, so nothing outside keeps the
// whole structure reachable through a single node.
func (tree *orderedTree[T]) Release() {
	tree.postOrder(func(node *orderedNode[T]) bool {
		node.left, node.right = nil, nil
		return true
	})
	tree.root = nil
}

type OrderedTreeOption[T any] func(*orderedTree[T])

func WithOrderedTreeDesc[T any]() OrderedTreeOption[T] {
	return func(tree *orderedTree[T]) {
		tree.isDesc = true
	}
}

func WithOrderedTreeLogger[T any](logger xlog.XLogger) OrderedTreeOption[T] {
	return func(tree *orderedTree[T]) {
		if logger != nil {
			tree.logger = logger
		}
	}
}

// WithOrderedTreeMeter records inserts and rebuilds. The instruments
// are created once all the options are applied, a failure is reported
// to the tree logger and disables the metrics.
func WithOrderedTreeMeter[T any](meter metric.Meter) OrderedTreeOption[T] {
	return func(tree *orderedTree[T]) {
		tree.meter = meter
	}
}

// WithOrderedTreeAutoBalance false disables the rebuild after insert,
// Balance has to be called explicitly then.
func WithOrderedTreeAutoBalance[T any](enabled bool) OrderedTreeOption[T] {
	return func(tree *orderedTree[T]) {
		tree.isAutoBalance = enabled
	}
}

func newOrderedTree[T any](cmp infra.Comparator[T], opts ...OrderedTreeOption[T]) *orderedTree[T] {
	tree := &orderedTree[T]{
		cmp:           cmp,
		logger:        xlog.NewNopXLogger(),
		isDesc:        false,
		isAutoBalance: true,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o(tree)
	}
	if tree.meter != nil {
		m, err := newOrderedTreeMetrics(tree.meter)
		if err != nil {
			tree.logger.Error(err, "[ordered-tree] metrics disabled")
		}
		tree.metrics = m
	}
	return tree
}

func NewOrderedTree[T infra.OrderedKey](opts ...OrderedTreeOption[T]) OrderedTree[T] {
	return newOrderedTree[T](infra.OrderedKeyCompare[T], opts...)
}

func NewOrderedTreeFunc[T any](cmp infra.Comparator[T], opts ...OrderedTreeOption[T]) (OrderedTree[T], error) {
	if cmp == nil {
		return nil, infra.WrapErrorStack(ErrOrderedTreeNilComparator)
	}
	return newOrderedTree[T](cmp, opts...), nil
}
