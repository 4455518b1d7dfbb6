package recycle

import "go.uber.org/zap"

// Axis selects the scroll direction. Extents mean heights when vertical and
// widths when horizontal; the engine itself is axis-agnostic and the axis is
// carried for the host's benefit.
type Axis uint8

const (
	Vertical Axis = iota
	Horizontal
)

// ClickFunc receives the bound index of an instance that reported a click.
type ClickFunc func(index int)

// Options configures an Engine. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	ViewBuffer     int     // extra items materialized on each side of the viewport
	DefaultExtent  float64 // view-global fallback extent
	ChunkThreshold int     // item count above which builds spread across ticks
	ItemsPerChunk  int     // items processed per tick during a chunked build
	Axis           Axis
	Logger         *zap.Logger // diagnostics channel; nil means discard
}

// DefaultOptions returns the stock configuration: a small two-item buffer,
// unit extents, and chunked builds above 1000 items at 200 items per tick.
func DefaultOptions() Options {
	return Options{
		ViewBuffer:     2,
		DefaultExtent:  1,
		ChunkThreshold: 1000,
		ItemsPerChunk:  200,
		Axis:           Vertical,
	}
}

// engineState tracks where the engine is in the list lifecycle:
// empty -> built -> scrolling -> rebuilding -> built.
type engineState uint8

const (
	stateEmpty engineState = iota
	stateBuilt
	stateScrolling
	stateRebuilding
)

// Engine is the recycle view orchestrator. It owns the data list, reacts to
// scroll and viewport changes from the host, and keeps a bounded window of
// live instances bound over an arbitrarily large item list, recycling them
// through per-type pools as the window moves.
//
// The engine is single-threaded and cooperatively scheduled: the host calls
// Tick once per frame, and "suspended" work (chunked position builds) is
// simply resumed on later ticks. All bind/release work for one scroll event
// is applied within the call that triggered it, never split across ticks.
type Engine struct {
	opts      Options
	log       *zap.Logger
	types     *registry
	resolver  *extentResolver
	positions *positionIndex
	pools     *typePools

	items    []Item
	state    engineState
	scroll   float64
	viewport float64

	// Current materialized window; last < first means empty.
	first, last int
	bound       map[int]Instance
	boundType   map[int]TypeID
	indexOf     map[Instance]int

	onClick ClickFunc
}

// New constructs an engine from opts. Out-of-range option values fall back
// to their DefaultOptions equivalents.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.DefaultExtent <= 0 {
		opts.DefaultExtent = def.DefaultExtent
	}
	if opts.ChunkThreshold <= 0 {
		opts.ChunkThreshold = def.ChunkThreshold
	}
	if opts.ItemsPerChunk <= 0 {
		opts.ItemsPerChunk = def.ItemsPerChunk
	}
	if opts.ViewBuffer < 0 {
		opts.ViewBuffer = 0
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	types := newRegistry()
	resolver := &extentResolver{types: types, fallback: opts.DefaultExtent}
	e := &Engine{
		opts:      opts,
		log:       log,
		types:     types,
		resolver:  resolver,
		positions: newPositionIndex(resolver, log, opts.ChunkThreshold, opts.ItemsPerChunk),
		pools:     newTypePools(types),
		last:      -1,
		bound:     make(map[int]Instance),
		boundType: make(map[int]TypeID),
		indexOf:   make(map[Instance]int),
	}
	return e
}

// Register maps a TypeID to its template. Must be called for every type that
// appears in the data before the data does; re-registering replaces the
// previous entry (pair with ClearPools to drop instances built from the old
// template).
func (e *Engine) Register(id TypeID, reg Registration) *Engine {
	e.types.register(id, reg)
	return e
}

// OnClick sets the single click subscriber.
func (e *Engine) OnClick(fn ClickFunc) *Engine {
	e.onClick = fn
	return e
}

// Buffer sets the number of extra items materialized on each side of the
// viewport. Call before SetData.
func (e *Engine) Buffer(n int) *Engine {
	if n >= 0 {
		e.opts.ViewBuffer = n
	}
	return e
}

// Chunking tunes when and how position builds spread across ticks. Call
// before SetData.
func (e *Engine) Chunking(threshold, perChunk int) *Engine {
	if threshold > 0 {
		e.opts.ChunkThreshold = threshold
		e.positions.threshold = threshold
	}
	if perChunk > 0 {
		e.opts.ItemsPerChunk = perChunk
		e.positions.chunk = perChunk
	}
	return e
}

// --- Data lifecycle ---

// SetData replaces the data list. Every bound instance returns to its pool,
// the position index rebuilds (spread across ticks above the chunk
// threshold), and the window for the current scroll position repopulates as
// soon as the build completes.
func (e *Engine) SetData(items []Item) {
	e.releaseAll()
	e.items = items
	e.state = stateRebuilding
	if e.positions.begin(items) {
		e.finishBuild()
	}
}

// Append adds items to the end of the list, reusing the already-built
// position prefix instead of rebuilding from scratch.
func (e *Engine) Append(more ...Item) {
	if len(more) == 0 {
		return
	}
	if e.state == stateEmpty {
		e.SetData(more)
		return
	}
	old := len(e.items)
	e.items = append(e.items, more...)
	e.positions.invalidateFrom(e.items, old)
	if e.state == stateRebuilding {
		return // the running build picks up the new tail
	}
	e.applyWindow()
}

// Tick advances deferred work by one frame. Hosts call it from their update
// loop; it is a no-op unless a chunked build is in progress.
func (e *Engine) Tick() {
	if e.state != stateRebuilding {
		return
	}
	if e.positions.step() {
		e.finishBuild()
	}
}

func (e *Engine) finishBuild() {
	e.state = stateBuilt
	e.scroll = e.clampScroll(e.scroll)
	e.applyWindow()
}

// Building reports whether a chunked position build is still in progress.
// While true, TotalExtent is provisional and the window stays unpopulated.
func (e *Engine) Building() bool { return e.state == stateRebuilding && e.positions.building() }

// Progress is the fraction of the position build completed, in [0, 1].
func (e *Engine) Progress() float64 { return e.positions.progress() }

// Dispose releases every bound instance, tears down all pools, and returns
// the engine to its empty state.
func (e *Engine) Dispose() {
	e.releaseAll()
	e.pools.clearAll()
	e.items = nil
	e.positions.begin(nil)
	e.state = stateEmpty
	e.scroll = 0
}

// ClearPools destroys all pooled instances after unbinding the active ones,
// then repopulates the window with freshly constructed instances. Use after
// re-registering a type's template.
func (e *Engine) ClearPools() {
	e.releaseAll()
	e.pools.clearAll()
	if e.state == stateBuilt || e.state == stateScrolling {
		e.applyWindow()
	}
}

// ClearPool destroys every instance of a single type, unbinding the active
// ones first, then rebinds the affected window slots from scratch.
func (e *Engine) ClearPool(id TypeID) {
	for i, t := range e.boundType {
		if t == id {
			e.releaseIndex(i)
		}
	}
	e.pools.clear(id)
	for i := e.first; i <= e.last; i++ {
		if _, bound := e.bound[i]; !bound {
			e.bindIndex(i)
		}
	}
}

// Prewarm constructs count idle instances of a type ahead of need.
func (e *Engine) Prewarm(id TypeID, count int) {
	if err := e.pools.prewarm(id, count); err != nil {
		e.log.Warn("prewarm failed", zap.Error(err))
	}
}

// --- Host callbacks ---

// OnScrollChanged recomputes the visible window for a new scroll offset.
// During a rebuild the offset is recorded and applied when the build
// finishes.
func (e *Engine) OnScrollChanged(offset float64) {
	e.scroll = e.clampScroll(offset)
	if e.state != stateBuilt && e.state != stateScrolling {
		return
	}
	e.state = stateScrolling
	e.applyWindow()
}

// OnViewportResized recomputes the visible window for a new viewport extent.
func (e *Engine) OnViewportResized(extent float64) {
	if extent < 0 {
		extent = 0
	}
	e.viewport = extent
	if e.state != stateBuilt && e.state != stateScrolling {
		return
	}
	e.scroll = e.clampScroll(e.scroll)
	e.applyWindow()
}

// ScrollTo scrolls to an absolute offset (clamped to the content).
func (e *Engine) ScrollTo(offset float64) { e.OnScrollChanged(offset) }

// ScrollBy scrolls by a delta (positive = toward the end).
func (e *Engine) ScrollBy(delta float64) { e.OnScrollChanged(e.scroll + delta) }

// ScrollToIndex scrolls so the item at index i sits at the viewport start.
func (e *Engine) ScrollToIndex(i int) { e.OnScrollChanged(e.OffsetForIndex(i)) }

func (e *Engine) clampScroll(offset float64) float64 {
	limit := e.positions.totalExtent() - e.viewport
	if limit < 0 {
		limit = 0
	}
	if offset > limit {
		offset = limit
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// --- Window maintenance ---

// applyWindow diffs the window for the current scroll/viewport against the
// materialized one: departed indices release their instances, entered
// indices acquire, place and bind one. The whole diff applies within this
// call, so the host never observes a half-updated window.
func (e *Engine) applyWindow() {
	first, last, ok := findRange(e.positions, e.scroll, e.viewport, e.opts.ViewBuffer)
	if !ok {
		e.releaseAll()
		return
	}
	if first == e.first && last == e.last {
		return // window unchanged, skip all bind/release work
	}

	for i := e.first; i <= e.last; i++ {
		if i < first || i > last {
			e.releaseIndex(i)
		}
	}
	for i := first; i <= last; i++ {
		if _, bound := e.bound[i]; !bound {
			e.bindIndex(i)
		}
	}
	e.first, e.last = first, last
}

// bindIndex materializes the item at index i. Items whose type has no
// registration were logged at build time and stay unbound; a Bind failure is
// logged and the instance goes straight back to its pool, leaving only this
// slot blank.
func (e *Engine) bindIndex(i int) {
	it := e.items[i]
	inst, err := e.pools.acquire(it.Type)
	if err != nil {
		return
	}
	inst.Place(e.positions.offsetAt(i), e.positions.extentAt(i))
	if err := inst.Bind(it, i); err != nil {
		e.log.Error("item bind failed", zap.Error(&BindingError{Index: i, Type: it.Type, Err: err}))
		e.pools.release(inst, it.Type)
		return
	}
	e.bound[i] = inst
	e.boundType[i] = it.Type
	e.indexOf[inst] = i
}

func (e *Engine) releaseIndex(i int) {
	inst, ok := e.bound[i]
	if !ok {
		return
	}
	delete(e.bound, i)
	delete(e.indexOf, inst)
	t := e.boundType[i]
	delete(e.boundType, i)
	e.pools.release(inst, t)
}

func (e *Engine) releaseAll() {
	for i := range e.bound {
		e.releaseIndex(i)
	}
	e.first, e.last = 0, -1
}

// Refresh re-invokes Bind on every currently bound instance without moving
// the window: the path for in-place data mutation that doesn't change
// extents.
func (e *Engine) Refresh() {
	for i := e.first; i <= e.last; i++ {
		e.RefreshIndex(i)
	}
}

// RefreshIndex rebinds a single materialized index. A no-op when the index
// is outside the window.
func (e *Engine) RefreshIndex(i int) {
	inst, ok := e.bound[i]
	if !ok {
		return
	}
	it := e.items[i]
	if err := inst.Bind(it, i); err != nil {
		e.log.Error("item rebind failed", zap.Error(&BindingError{Index: i, Type: it.Type, Err: err}))
	}
}

// NotifyClicked resolves the instance's currently bound index and forwards
// it to the click subscriber. Unbound instances are ignored.
func (e *Engine) NotifyClicked(inst Instance) {
	i, ok := e.indexOf[inst]
	if !ok || e.onClick == nil {
		return
	}
	e.onClick(i)
}

// --- Introspection ---

// Len returns the item count.
func (e *Engine) Len() int { return len(e.items) }

// ItemAt returns the item at index i.
func (e *Engine) ItemAt(i int) (Item, bool) {
	if i < 0 || i >= len(e.items) {
		return Item{}, false
	}
	return e.items[i], true
}

// Window returns the inclusive index range currently materialized.
// last < first means no items are bound.
func (e *Engine) Window() (first, last int) { return e.first, e.last }

// Bound returns the instance bound at index i, or nil when the index is not
// materialized.
func (e *Engine) Bound(i int) Instance { return e.bound[i] }

// Scroll returns the current (clamped) scroll offset.
func (e *Engine) Scroll() float64 { return e.scroll }

// Viewport returns the current viewport extent.
func (e *Engine) Viewport() float64 { return e.viewport }

// TotalExtent is the scrollable content size: the sum of all item extents.
// Provisional while a chunked build is running.
func (e *Engine) TotalExtent() float64 { return e.positions.totalExtent() }

// OffsetForIndex returns the cumulative offset of item i, for ensure-visible
// logic in the host.
func (e *Engine) OffsetForIndex(i int) float64 {
	if i < 0 || len(e.items) == 0 {
		return 0
	}
	if i >= len(e.items) {
		i = len(e.items) - 1
	}
	return e.positions.offsetAt(i)
}

/// ScrollMetrics returns scrollbar geometry as fractions: the thumb size
// relative to the track and the thumb position along it.
func (e *Engine) ScrollMetrics() (size, pos float64) {
	total := e.positions.totalExtent()
	if total <= 0 || total <= e.viewport {
		return 1, 0
	}
	size = e.viewport / total
	span := total - e.viewport
	pos = e.scroll / span
	if pos > 1 {
		pos = 1
	}
	return size, pos
}

// Stats snapshots the pool counters for one type.
func (e *Engine) Stats(id TypeID) PoolStats { return e.pools.stats(id) }

// Axis returns the configured layout axis.
func (e *Engine) Axis() Axis { return e.opts.Axis }
