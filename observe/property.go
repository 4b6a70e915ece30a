package observe

// Accessor is a get/set property, typically a *settings.Binding.
type Accessor[V any] interface {
	Get() V
	Set(v V)
}

// Property decorates an Accessor with observation.
type Property[V any] struct {
	inner    Accessor[V]
	id       PropertyID
	observer Observer
}

// Wrap returns a Property reporting reads and writes of inner to observer
// under id.
func Wrap[V any](inner Accessor[V], id PropertyID, observer Observer) *Property[V] {
	if inner == nil || observer == nil {
		panic("observe: accessor and observer are required")
	}

	return &Property[V]{inner: inner, id: id, observer: observer}
}

// ID returns the property identity.
func (p *Property[V]) ID() PropertyID { return p.id }

// Get registers an access and returns the current value.
func (p *Property[V]) Get() V {
	p.observer.Access(p.id)

	return p.inner.Get()
}

// Set stores v inside a mutation scope.
func (p *Property[V]) Set(v V) {
	p.observer.WithMutation(p.id, func() {
		p.inner.Set(v)
	})
}
