package recycle

import (
	"math"
	"testing"
)

// countingIndex wraps an offsetIndex and counts offset lookups, to pin the
// logarithmic behavior of findRange on fully built indexes.
type countingIndex struct {
	offsetIndex
	lookups int
}

func (c *countingIndex) offsetAt(i int) float64 {
	c.lookups++
	return c.offsetIndex.offsetAt(i)
}

// partialIndex serves a fixed prefix as "built", forcing the forward-scan
// path of findRange.
type partialIndex struct {
	offsets []float64
	extents []float64
}

func (p *partialIndex) count() int             { return len(p.offsets) }
func (p *partialIndex) offsetAt(i int) float64 { return p.offsets[i] }
func (p *partialIndex) extentAt(i int) float64 { return p.extents[i] }
func (p *partialIndex) fullyBuilt() bool       { return false }

func builtIndex(t testing.TB, items []Item) *positionIndex {
	t.Helper()
	pi, _ := testIndex(1<<30, 200)
	if done := pi.begin(items); !done {
		t.Fatalf("expected synchronous build")
	}
	return pi
}

func TestFindRange(t *testing.T) {
	t.Run("PartialLastItemVisible", func(t *testing.T) {
		// 3 items of extent 100 in a 250 viewport: item 2 is partially
		// visible, so the window is [0, 2].
		pi := builtIndex(t, uniformItems(3, 100))
		first, last, ok := findRange(pi, 0, 250, 0)
		if !ok {
			t.Fatalf("expected ok")
		}
		if first != 0 || last != 2 {
			t.Errorf("expected [0,2], got [%d,%d]", first, last)
		}
	})

	t.Run("InclusiveBoundary", func(t *testing.T) {
		pi := builtIndex(t, uniformItems(3, 100))
		// Item 2 starts exactly at the viewport edge: counts as visible.
		_, last, _ := findRange(pi, 0, 200, 0)
		if last != 2 {
			t.Errorf("expected boundary-touching item included, got last %d", last)
		}
		// Item 0 ends exactly at the scroll offset: scrolled out.
		first, _, _ := findRange(pi, 100, 100, 0)
		if first != 1 {
			t.Errorf("expected first 1 at aligned scroll, got %d", first)
		}
	})

	t.Run("BufferClamped", func(t *testing.T) {
		pi := builtIndex(t, uniformItems(10, 10))
		first, last, _ := findRange(pi, 0, 25, 3)
		if first != 0 {
			t.Errorf("expected first clamped to 0, got %d", first)
		}
		if last != 5 { // [0,2] visible + 3 buffer
			t.Errorf("expected last 5, got %d", last)
		}
		first, last, _ = findRange(pi, 80, 25, 3)
		if last != 9 {
			t.Errorf("expected last clamped to 9, got %d", last)
		}
		if first != 5 { // first visible 8, minus buffer
			t.Errorf("expected first 5, got %d", first)
		}
	})

	t.Run("EmptyList", func(t *testing.T) {
		pi := builtIndex(t, nil)
		if _, _, ok := findRange(pi, 0, 100, 2); ok {
			t.Errorf("expected ok=false for empty list")
		}
	})

	t.Run("ScrollPastEnd", func(t *testing.T) {
		pi := builtIndex(t, uniformItems(5, 10))
		first, last, ok := findRange(pi, 1000, 30, 0)
		if !ok {
			t.Fatalf("expected ok")
		}
		if first != 4 || last != 4 {
			t.Errorf("expected [4,4] past the end, got [%d,%d]", first, last)
		}
	})

	t.Run("ForwardScanOnPartialBuild", func(t *testing.T) {
		offsets := []float64{0, 10, 30, 60, 100}
		extents := []float64{10, 20, 30, 40, 50}
		first, last, _ := findRange(&partialIndex{offsets, extents}, 15, 50, 0)
		// Viewport [15,65): items 1..3 intersect.
		if first != 1 || last != 3 {
			t.Errorf("expected [1,3], got [%d,%d]", first, last)
		}
	})
}

func TestFindRangeDirectJump(t *testing.T) {
	// 1000 items alternating extent 80 and 150, scroll jumping straight to
	// 50000: the range must be exact and found in O(log n) offset lookups,
	// without touching the thousands of skipped items.
	items := make([]Item, 1000)
	for i := range items {
		if i%2 == 0 {
			items[i] = Item{Type: 0, Extent: 80}
		} else {
			items[i] = Item{Type: 0, Extent: 150}
		}
	}
	pi := builtIndex(t, items)

	const scroll, viewport = 50000.0, 400.0

	// Brute-force reference.
	wantFirst, wantLast := -1, -1
	for i := 0; i < len(items); i++ {
		start := pi.offsetAt(i)
		end := start + pi.extentAt(i)
		if start <= scroll+viewport && end > scroll { // inclusive boundaries
			if wantFirst == -1 {
				wantFirst = i
			}
			wantLast = i
		}
	}

	counting := &countingIndex{offsetIndex: pi}
	first, last, ok := findRange(counting, scroll, viewport, 0)
	if !ok {
		t.Fatalf("expected ok")
	}
	if first != wantFirst || last != wantLast {
		t.Errorf("expected [%d,%d], got [%d,%d]", wantFirst, wantLast, first, last)
	}

	bound := 2 * (int(math.Log2(float64(len(items)))) + 2)
	if counting.lookups > bound {
		t.Errorf("expected at most %d offset lookups for two binary searches, got %d", bound, counting.lookups)
	}
}
