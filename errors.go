package recycle

import "fmt"

// ConfigurationError reports an item whose TypeID has no matching
// registration. It is fatal to the affected index only: the engine leaves
// that slot unbound and logs, the rest of the view keeps working.
type ConfigurationError struct {
	Index int
	Type  TypeID
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("recycle: item %d has unregistered type %d", e.Index, e.Type)
}

// StaleIndexError reports a position read that landed outside the rebuilt
// prefix of the index. It is only ever logged; the read still returns the
// best available value because a rebuild is imminent in normal flow.
type StaleIndexError struct {
	Index int
	Built int
}

func (e *StaleIndexError) Error() string {
	return fmt.Sprintf("recycle: stale position read at %d (built through %d)", e.Index, e.Built)
}

// BindingError wraps a failure from an item template's Bind. It is caught
// per instance so one bad item cannot blank the whole visible window.
type BindingError struct {
	Index int
	Type  TypeID
	Err   error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("recycle: bind failed for item %d (type %d): %v", e.Index, e.Type, e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }

// PoolIntegrityError is the panic value raised when an instance is released
// to a pool of a different type than it was constructed for. This is an
// orchestrator bug, not recoverable input, so it fails loudly.
type PoolIntegrityError struct {
	Got  TypeID // pool the release targeted
	Want TypeID // type the instance was constructed for
}

func (e *PoolIntegrityError) Error() string {
	return fmt.Sprintf("recycle: instance constructed for type %d released to pool %d", e.Want, e.Got)
}
