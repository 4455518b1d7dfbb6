// Command recyclebench drives an engine through a sustained scroll workload
// and reports frame-time percentiles, the way you would profile a list
// before shipping it in a real host.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"golang.org/x/term"

	"recycle"
)

var (
	duration = flag.Duration("d", 5*time.Second, "benchmark duration")
	items    = flag.Int("items", 1_000_000, "number of items in the list")
	buffer   = flag.Int("buffer", 2, "view buffer on each side")
	jump     = flag.Bool("jump", false, "random jumps instead of line scrolling")
)

// benchRow is a minimal instance: it records what it was bound to and
// nothing else, so the numbers measure the engine rather than rendering.
type benchRow struct {
	index  int
	offset float64
}

func (r *benchRow) Bind(item recycle.Item, index int) error {
	r.index = index
	return nil
}
func (r *benchRow) Place(offset, extent float64) { r.offset = offset }
func (r *benchRow) Unbind()                      { r.index = -1 }

func main() {
	flag.Parse()

	height := 50
	if _, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		height = h
	}

	data := make([]recycle.Item, *items)
	for i := range data {
		// Alternating extents keep the binary search honest.
		ext := 1.0
		if i%2 == 1 {
			ext = 2.0
		}
		data[i] = recycle.Item{Type: 0, Extent: ext}
	}

	opts := recycle.DefaultOptions()
	opts.ViewBuffer = *buffer
	opts.ChunkThreshold = *items + 1 // build synchronously; we measure scrolling

	engine := recycle.New(opts).Register(0, recycle.Registration{
		New: func() recycle.Instance { return &benchRow{index: -1} },
	})
	engine.OnViewportResized(float64(height))

	start := time.Now()
	engine.SetData(data)
	buildTime := time.Since(start)

	total := engine.TotalExtent()
	fmt.Fprintf(os.Stderr, "built positions for %d items (total extent %.0f) in %v\n", *items, total, buildTime)
	fmt.Fprintf(os.Stderr, "running %s scroll workload for %v...\n", mode(), *duration)

	frameTimes := make([]time.Duration, 0, 1<<20)
	rng := rand.New(rand.NewSource(1))

	start = time.Now()
	for time.Since(start) < *duration {
		frameStart := time.Now()
		if *jump {
			engine.ScrollTo(rng.Float64() * total)
		} else {
			engine.ScrollBy(1)
			if engine.Scroll()+float64(height) >= total {
				engine.ScrollTo(0)
			}
		}
		frameTimes = append(frameTimes, time.Since(frameStart))
	}

	report(frameTimes)
}

func mode() string {
	if *jump {
		return "random-jump"
	}
	return "line"
}

func report(frames []time.Duration) {
	if len(frames) == 0 {
		return
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i] < frames[j] })

	var sum time.Duration
	for _, f := range frames {
		sum += f
	}
	pct := func(p float64) time.Duration {
		i := int(p * float64(len(frames)-1))
		return frames[i]
	}

	fmt.Printf("frames:  %d\n", len(frames))
	fmt.Printf("mean:    %v\n", sum/time.Duration(len(frames)))
	fmt.Printf("p50:     %v\n", pct(0.50))
	fmt.Printf("p99:     %v\n", pct(0.99))
	fmt.Printf("p99.9:   %v\n", pct(0.999))
	fmt.Printf("max:     %v\n", frames[len(frames)-1])
}
