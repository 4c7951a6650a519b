package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// Comparator
// Assume i is the new value.
//  1. i == j, return 0
//  2. i > j, return positive, turn to right part.
//  3. i < j, return negative, turn to left part.
type Comparator[T any] func(i, j T) int64

// OrderedKeyCompare is the natural order comparator.
// NaN is never equal to itself, so it reports 1 for any
// comparison involving it. Callers use that to detect an
// invalid order.
func OrderedKeyCompare[K OrderedKey](i, j K) int64 {
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	return 1
}

// Reverse flips the direction of a comparator.
func Reverse[T any](cmp Comparator[T]) Comparator[T] {
	return func(i, j T) int64 {
		return cmp(j, i)
	}
}

func Sign(res int64) int64 {
	switch {
	case res < 0:
		return -1
	case res > 0:
		return 1
	default:
	}
	return 0
}
