package recycle

import (
	"fmt"
	"math"
	"testing"
)

// Benchmark continuous scrolling - the steady-state hot path.
func BenchmarkEngineScroll(b *testing.B) {
	sizes := []int{1000, 10000, 100000, 1000000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Items_%d", size), func(b *testing.B) {
			e := newTestEngine(Options{ViewBuffer: 2, DefaultExtent: 1, ChunkThreshold: size + 1})
			e.OnViewportResized(50)
			e.SetData(uniformItems(size, 1))

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				// Scroll down then wrap, keeping the window moving.
				e.ScrollBy(1)
				if e.Scroll() >= float64(size-60) {
					e.ScrollTo(0)
				}
			}
		})
	}
}

// Benchmark page-style jumps, where the whole window turns over each call.
func BenchmarkEnginePageScroll(b *testing.B) {
	e := newTestEngine(Options{ViewBuffer: 2, DefaultExtent: 1, ChunkThreshold: 1 << 30})
	e.OnViewportResized(50)
	e.SetData(uniformItems(100000, 1))

	pageSize := 48.0

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if i%2 == 0 {
			e.ScrollBy(pageSize)
		} else {
			e.ScrollBy(-pageSize)
		}
	}
}

// Benchmark direct jumps across mixed extents - two binary searches plus a
// full window turnover per call.
func BenchmarkEngineRandomJump(b *testing.B) {
	items := make([]Item, 100000)
	for i := range items {
		if i%2 == 0 {
			items[i] = Item{Type: 0, Extent: 80}
		} else {
			items[i] = Item{Type: 1, Extent: 150}
		}
	}
	e := newTestEngine(Options{ViewBuffer: 2, DefaultExtent: 80, ChunkThreshold: 1 << 30})
	e.OnViewportResized(800)
	e.SetData(items)
	total := e.TotalExtent()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		e.ScrollTo(math.Mod(float64(i)*7919.5, total))
	}
}

func BenchmarkPositionBuild(b *testing.B) {
	for _, size := range []int{1000, 100000} {
		b.Run(fmt.Sprintf("Items_%d", size), func(b *testing.B) {
			items := uniformItems(size, 2)
			pi, _ := testIndex(1<<30, 200)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				pi.begin(items)
			}
		})
	}
}
