package recycle

// PoolStats is a snapshot of one type's pool.
type PoolStats struct {
	Live    int // instances currently handed out
	Idle    int // instances parked in the pool
	Created int // instances constructed since the last clear
}

// typePools owns one recycling pool per registered item type. Instances are
// constructed through the type's Registration.New on first need, reused
// indefinitely across binds, and dropped only by clear/clearAll.
//
// Pools never mix types: every instance remembers the type it was
// constructed for, and releasing it under any other type panics with a
// PoolIntegrityError.
type typePools struct {
	types   *registry
	idle    map[TypeID][]Instance
	owner   map[Instance]TypeID
	created map[TypeID]int
}

func newTypePools(types *registry) *typePools {
	return &typePools{
		types:   types,
		idle:    make(map[TypeID][]Instance),
		owner:   make(map[Instance]TypeID),
		created: make(map[TypeID]int),
	}
}

// acquire pops an idle instance of the given type, constructing a new one
// when the pool is empty. The instance is returned unbound.
func (tp *typePools) acquire(id TypeID) (Instance, error) {
	if pool := tp.idle[id]; len(pool) > 0 {
		inst := pool[len(pool)-1]
		tp.idle[id] = pool[:len(pool)-1]
		return inst, nil
	}
	reg, ok := tp.types.lookup(id)
	if !ok {
		return nil, &ConfigurationError{Index: -1, Type: id}
	}
	inst := reg.New()
	tp.owner[inst] = id
	tp.created[id]++
	return inst, nil
}

// release unbinds the instance and parks it in its type's pool. Releasing
// under a type the instance was not constructed for is an orchestrator bug
// and panics.
func (tp *typePools) release(inst Instance, id TypeID) {
	want, ok := tp.owner[inst]
	if !ok || want != id {
		panic(&PoolIntegrityError{Got: id, Want: want})
	}
	inst.Unbind()
	tp.idle[id] = append(tp.idle[id], inst)
}

// prewarm constructs count idle instances of the given type up front,
// amortizing construction cost before scroll-critical moments.
func (tp *typePools) prewarm(id TypeID, count int) error {
	reg, ok := tp.types.lookup(id)
	if !ok {
		return &ConfigurationError{Index: -1, Type: id}
	}
	for i := 0; i < count; i++ {
		inst := reg.New()
		tp.owner[inst] = id
		tp.created[id]++
		tp.idle[id] = append(tp.idle[id], inst)
	}
	return nil
}

// clear destroys every instance of one type. The caller must have released
// all bound instances of that type first.
func (tp *typePools) clear(id TypeID) {
	delete(tp.idle, id)
	delete(tp.created, id)
	for inst, owner := range tp.owner {
		if owner == id {
			delete(tp.owner, inst)
		}
	}
}

// clearAll destroys every instance of every type.
func (tp *typePools) clearAll() {
	tp.idle = make(map[TypeID][]Instance)
	tp.owner = make(map[Instance]TypeID)
	tp.created = make(map[TypeID]int)
}

// stats snapshots one type's pool counters.
func (tp *typePools) stats(id TypeID) PoolStats {
	idle := len(tp.idle[id])
	created := tp.created[id]
	return PoolStats{
		Live:    created - idle,
		Idle:    idle,
		Created: created,
	}
}
