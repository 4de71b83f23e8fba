package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

type Float interface {
	~float32 | ~float64
}

// OrderedKey is the key constraint of the search trees.
// byte => ~uint8
// Complex numbers have no total order, so they are excluded.
type OrderedKey interface {
	Integer | Float | ~string
}

// OrderedKeyComparator
// Assume i is the new key.
//  1. i == j, return 0.
//  2. i > j, return 1, descend into the right part.
//  3. i < j, return -1, descend into the left part.
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

func AscendingComparator[K OrderedKey]() OrderedKeyComparator[K] {
	return func(i, j K) int64 {
		if i == j {
			return 0
		} else if i < j {
			return -1
		}
		return 1
	}
}

// DescendingComparator reverses the natural order, so the tree
// keeps the greatest key at the leftmost position.
func DescendingComparator[K OrderedKey]() OrderedKeyComparator[K] {
	asc := AscendingComparator[K]()
	return func(i, j K) int64 {
		return -asc(i, j)
	}
}
