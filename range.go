package recycle

import "sort"

// offsetIndex is the slice of positionIndex behavior range finding needs.
type offsetIndex interface {
	count() int
	offsetAt(i int) float64
	extentAt(i int) float64
	fullyBuilt() bool
}

// findRange returns the inclusive index range of items intersecting the
// viewport [scroll, scroll+viewport], expanded by buffer indices on each
// side and clamped to [0, n-1]. Boundary touches count as visible, so a
// scroll position aligned exactly on an item edge never shows a gap.
//
// The first index is found by binary search over cumulative offsets. The
// last is a second binary search when the index is fully built, or a
// forward scan over extents while a chunked build is still running.
// ok is false when the list is empty.
func findRange(idx offsetIndex, scroll, viewport float64, buffer int) (first, last int, ok bool) {
	n := idx.count()
	if n == 0 {
		return 0, 0, false
	}

	// Greatest i with offsetAt(i) <= scroll.
	first = sort.Search(n, func(i int) bool { return idx.offsetAt(i) > scroll }) - 1
	if first < 0 {
		first = 0
	}

	edge := scroll + viewport
	if idx.fullyBuilt() {
		// Greatest i with offsetAt(i) <= edge (inclusive boundary).
		last = sort.Search(n, func(i int) bool { return idx.offsetAt(i) > edge }) - 1
	} else {
		last = first
		off := idx.offsetAt(first) + idx.extentAt(first)
		for last+1 < n && off <= edge {
			last++
			off += idx.extentAt(last)
		}
	}
	if last < first {
		last = first
	}

	first -= buffer
	last += buffer
	if first < 0 {
		first = 0
	}
	if last > n-1 {
		last = n - 1
	}
	return first, last, true
}
