package domain

// Target is a live host object an override can be installed on.
type Target interface {
	TargetID() ResourceID
}

// Targets is the host registry for one category. Lookups are scoped to the
// category the instance was built for.
type Targets[V any] interface {
	Lookup(id ResourceID) (Target, bool)
	Value(t Target) (V, error)
	SetValue(t Target, v V) error
}

// DynamicTargets is a host registry that accepts new entries at runtime.
type DynamicTargets[V any] interface {
	Targets[V]
	Register(id ResourceID, v V) (Target, error)
	Unregister(id ResourceID) error
}
