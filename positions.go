package recycle

import "go.uber.org/zap"

// positionIndex caches the cumulative main-axis offset of every item from
// the start of the list. Offsets obey offsets[0] == 0 and
// offsets[i+1] == offsets[i] + extents[i].
//
// Lists longer than threshold are built in chunks of `chunk` items, one
// chunk per engine tick, so a huge SetData never stalls a single frame.
// While a chunked build is running, reads beyond the built prefix return a
// provisional estimate and log a StaleIndexError warning.
type positionIndex struct {
	resolver *extentResolver
	log      *zap.Logger

	items   []Item
	offsets []float64
	extents []float64

	built   int     // entries [0, built) are valid
	sum     float64 // sum of extents[0:built]
	chunked bool    // a multi-tick build is in progress

	threshold int
	chunk     int
}

func newPositionIndex(resolver *extentResolver, log *zap.Logger, threshold, chunk int) *positionIndex {
	return &positionIndex{
		resolver:  resolver,
		log:       log,
		threshold: threshold,
		chunk:     chunk,
	}
}

// begin starts a full (re)build for a new data list, discarding any build in
// progress. Lists at or below the chunking threshold build synchronously;
// begin reports whether the build completed.
func (p *positionIndex) begin(items []Item) bool {
	n := len(items)
	p.items = items
	p.offsets = make([]float64, n)
	p.extents = make([]float64, n)
	p.built = 0
	p.sum = 0
	p.chunked = n > p.threshold

	if !p.chunked {
		p.buildRange(n)
	}
	return !p.chunked
}

// step advances a chunked build by one chunk and reports whether the build
// is now complete. A no-op (reporting true) when nothing is building.
func (p *positionIndex) step() bool {
	if !p.chunked {
		return true
	}
	hi := min(p.built+p.chunk, len(p.items))
	p.buildRange(hi)
	if p.built == len(p.items) {
		p.chunked = false
		return true
	}
	return false
}

// buildRange extends the valid prefix through hi, resolving one extent per
// item. Unregistered types are logged here, once, and laid out at the
// global default so surrounding offsets stay consistent; the bind loop
// skips them later.
func (p *positionIndex) buildRange(hi int) {
	for i := p.built; i < hi; i++ {
		ext, err := p.resolver.resolve(p.items, i)
		if err != nil {
			p.log.Warn("skipping misconfigured item", zap.Error(err))
		}
		p.offsets[i] = p.sum
		p.extents[i] = ext
		p.sum += ext
	}
	p.built = hi
}

// invalidateFrom marks entries from `from` onward stale and adopts the
// (possibly longer) item slice. The next read past `from` rebuilds the
// suffix; this is the cheap path for append-style mutations.
func (p *positionIndex) invalidateFrom(items []Item, from int) {
	n := len(items)
	p.items = items
	if from < 0 {
		from = 0
	}
	if from < p.built {
		p.built = from
	}
	if cap(p.offsets) < n {
		offsets := make([]float64, n)
		extents := make([]float64, n)
		copy(offsets, p.offsets[:p.built])
		copy(extents, p.extents[:p.built])
		p.offsets = offsets
		p.extents = extents
	} else {
		p.offsets = p.offsets[:n]
		p.extents = p.extents[:n]
	}
	p.sum = 0
	if p.built > 0 {
		p.sum = p.offsets[p.built-1] + p.extents[p.built-1]
	}
}

func (p *positionIndex) count() int { return len(p.items) }

// building reports whether a chunked build is still in progress.
func (p *positionIndex) building() bool { return p.chunked }

// progress is the fraction of entries built, in [0, 1].
func (p *positionIndex) progress() float64 {
	if len(p.items) == 0 {
		return 1
	}
	return float64(p.built) / float64(len(p.items))
}

// fullyBuilt reports whether random access across the whole list is exact.
// True whenever no chunked build is running: stale suffixes rebuild lazily
// on access.
func (p *positionIndex) fullyBuilt() bool { return !p.chunked }

// ensure makes entry i valid if that is possible without stalling. During a
// chunked build it refuses (the caller falls back to an estimate); otherwise
// it synchronously rebuilds the invalidated suffix up through i.
func (p *positionIndex) ensure(i int) bool {
	if i < p.built {
		return true
	}
	if p.chunked {
		p.log.Warn("position read ahead of build", zap.Error(&StaleIndexError{Index: i, Built: p.built}))
		return false
	}
	p.buildRange(i + 1)
	return true
}

// avgExtent is the mean built extent, used to estimate positions beyond the
// built prefix of an in-progress chunked build.
func (p *positionIndex) avgExtent() float64 {
	if p.built == 0 {
		return p.resolver.fallback
	}
	return p.sum / float64(p.built)
}

// offsetAt returns the cumulative offset of item i. O(1) once built.
func (p *positionIndex) offsetAt(i int) float64 {
	if p.ensure(i) {
		return p.offsets[i]
	}
	return p.sum + p.avgExtent()*float64(i-p.built)
}

// extentAt returns the resolved extent of item i. O(1) once built.
func (p *positionIndex) extentAt(i int) float64 {
	if p.ensure(i) {
		return p.extents[i]
	}
	return p.avgExtent()
}

// totalExtent is the sum of all extents: the scrollable content size.
// Provisional (estimated from the mean built extent) while a chunked build
// is running.
func (p *positionIndex) totalExtent() float64 {
	n := len(p.items)
	if p.chunked {
		return p.sum + p.avgExtent()*float64(n-p.built)
	}
	if p.built < n {
		p.buildRange(n)
	}
	return p.sum
}
