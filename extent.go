package recycle

// TypeID identifies a registered item type. Items carry one, registrations
// map one to a template.
type TypeID int

// Item is a single record in the data list. The engine holds the slice it
// was handed and never copies or mutates records; Data is opaque and only
// ever passed back through Instance.Bind.
//
// Extent overrides the computed extent for this item when positive. Zero or
// negative means "unset" and the type default (then the view default)
// applies.
type Item struct {
	Type   TypeID
	Extent float64
	Data   any
}

// Instance is a live visual object managed by the engine. Implementations
// come from the host via Registration.New.
//
// Bind is called whenever the instance is (re)bound to an item; it must be
// idempotent and side-effect-free beyond updating the instance's own visual
// state. Place positions the instance at its main-axis offset (top edge when
// vertical, left edge when horizontal) with its resolved extent. Unbind is
// called before the instance returns to its pool.
type Instance interface {
	Bind(item Item, index int) error
	Place(offset, extent float64)
	Unbind()
}

// Registration maps a TypeID to the template that constructs new instances
// of that type, plus an optional type-level default extent (<= 0 means
// unset).
type Registration struct {
	New           func() Instance
	DefaultExtent float64
}

// registry is the TypeID -> Registration table. Registered once up front;
// re-registering an id replaces the previous entry.
type registry struct {
	types map[TypeID]Registration
}

func newRegistry() *registry {
	return &registry{types: make(map[TypeID]Registration)}
}

func (r *registry) register(id TypeID, reg Registration) {
	r.types[id] = reg
}

func (r *registry) lookup(id TypeID) (Registration, bool) {
	reg, ok := r.types[id]
	return reg, ok
}

// extentResolver computes the effective extent of an item through the
// three-tier fallback: the item's own override, the registered type's
// default, the view-global default. It is a pure function of the data list
// and the registration table, so positionIndex can cache its output.
type extentResolver struct {
	types    *registry
	fallback float64 // view-global default extent
}

// resolve returns the effective extent for items[index]. An unregistered
// type is a caller bug: resolve reports a ConfigurationError rather than
// silently defaulting, but still returns the global fallback so cumulative
// offsets stay monotonic for the indices around it.
func (r *extentResolver) resolve(items []Item, index int) (float64, error) {
	it := items[index]
	reg, ok := r.types.lookup(it.Type)
	if !ok {
		return r.fallback, &ConfigurationError{Index: index, Type: it.Type}
	}
	if it.Extent > 0 {
		return it.Extent, nil
	}
	if reg.DefaultExtent > 0 {
		return reg.DefaultExtent, nil
	}
	return r.fallback, nil
}
