package observe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settingskit/settingskit/observe"
	"github.com/settingskit/settingskit/settings"
	"github.com/settingskit/settingskit/store"
)

// recorder is an Observer logging every call.
type recorder struct {
	events []string
}

func (r *recorder) Access(id observe.PropertyID) {
	r.events = append(r.events, "access "+string(id))
}

func (r *recorder) WithMutation(id observe.PropertyID, body func()) {
	r.events = append(r.events, "begin "+string(id))
	body()
	r.events = append(r.events, "end "+string(id))
}

func newBinding(t *testing.T, key, def string) *settings.Binding[string] {
	t.Helper()

	return settings.Bind(settings.String(key, def), settings.WithStore(store.New(store.NewMemory())))
}

func TestPropertyReportsToObserver(t *testing.T) {
	rec := &recorder{}
	p := observe.Wrap[string](newBinding(t, "userName", "Anonymous"), "userName", rec)

	assert.Equal(t, "Anonymous", p.Get())
	p.Set("Alice")
	assert.Equal(t, "Alice", p.Get())

	assert.Equal(t, []string{
		"access userName",
		"begin userName",
		"end userName",
		"access userName",
	}, rec.events)
	assert.Equal(t, observe.PropertyID("userName"), p.ID())
}

func TestWriteHappensInsideMutationScope(t *testing.T) {
	b := newBinding(t, "k", "def")
	var seen string

	obs := observerFunc(func(_ observe.PropertyID, body func()) {
		body()
		seen = b.Get()
	})

	observe.Wrap[string](b, "k", obs).Set("v")
	assert.Equal(t, "v", seen)
}

type observerFunc func(id observe.PropertyID, body func())

func (f observerFunc) Access(observe.PropertyID) {}

func (f observerFunc) WithMutation(id observe.PropertyID, body func()) { f(id, body) }

func TestWrapRequiresArguments(t *testing.T) {
	assert.Panics(t, func() {
		observe.Wrap[string](nil, "k", observe.NewRegistrar())
	})
	assert.Panics(t, func() {
		observe.Wrap[string](newBinding(t, "k", ""), "k", nil)
	})
}

func TestTrackFiresOnceOnAccessedChange(t *testing.T) {
	reg := observe.NewRegistrar()
	name := observe.Wrap[string](newBinding(t, "name", "a"), "name", reg)
	other := observe.Wrap[string](newBinding(t, "other", "b"), "other", reg)

	fired := 0
	reg.Track(func() {
		_ = name.Get()
	}, func() {
		fired++
	})

	other.Set("x")
	assert.Zero(t, fired)

	name.Set("y")
	assert.Equal(t, 1, fired)

	name.Set("z")
	assert.Equal(t, 1, fired, "tracking ends after the first change")
}

func TestTrackWithoutAccessNeverFires(t *testing.T) {
	reg := observe.NewRegistrar()
	name := observe.Wrap[string](newBinding(t, "name", "a"), "name", reg)

	fired := false
	reg.Track(func() {}, func() { fired = true })
	name.Set("x")

	assert.False(t, fired)
}

func TestNestedTrackScopes(t *testing.T) {
	reg := observe.NewRegistrar()
	a := observe.Wrap[string](newBinding(t, "a", ""), "a", reg)
	b := observe.Wrap[string](newBinding(t, "b", ""), "b", reg)

	var outer, inner int
	reg.Track(func() {
		_ = a.Get()
		reg.Track(func() {
			_ = b.Get()
		}, func() { inner++ })
	}, func() { outer++ })

	b.Set("x")
	assert.Equal(t, 1, inner)
	assert.Zero(t, outer)

	a.Set("y")
	assert.Equal(t, 1, outer)
}

func TestSubscribe(t *testing.T) {
	reg := observe.NewRegistrar()
	p := observe.Wrap[string](newBinding(t, "p", ""), "p", reg)

	var got []observe.PropertyID
	sub := reg.Subscribe("p", func(id observe.PropertyID) {
		got = append(got, id)
	})

	p.Set("1")
	p.Set("2")
	require.Len(t, got, 2)

	sub.Cancel()
	sub.Cancel()
	p.Set("3")
	assert.Len(t, got, 2)
}

func TestNestedMutationsNotifyOncePerProperty(t *testing.T) {
	reg := observe.NewRegistrar()
	a := observe.Wrap[string](newBinding(t, "a", ""), "a", reg)
	b := observe.Wrap[string](newBinding(t, "b", ""), "b", reg)

	var got []observe.PropertyID
	for _, id := range []observe.PropertyID{"a", "b"} {
		reg.Subscribe(id, func(id observe.PropertyID) {
			got = append(got, id)
		})
	}

	reg.WithMutation("a", func() {
		a.Set("1")
		b.Set("2")
		assert.Empty(t, got, "nothing is delivered before the outer scope ends")
	})

	assert.Equal(t, []observe.PropertyID{"a", "b"}, got)
}

func TestConcurrentMutationsBatch(t *testing.T) {
	reg := observe.NewRegistrar()
	b := observe.Wrap[string](newBinding(t, "b", ""), "b", reg)

	var got []observe.PropertyID
	for _, id := range []observe.PropertyID{"a", "b"} {
		reg.Subscribe(id, func(id observe.PropertyID) {
			got = append(got, id)
		})
	}

	reg.WithMutation("a", func() {
		done := make(chan struct{})

		go func() {
			defer close(done)
			b.Set("2")
		}()

		<-done
		assert.Empty(t, got, "a mutation on another goroutine waits for the open scope")
		assert.Equal(t, "2", b.Get())
	})

	assert.Equal(t, []observe.PropertyID{"b", "a"}, got)
}

func TestListenerMayReadProperty(t *testing.T) {
	reg := observe.NewRegistrar()
	p := observe.Wrap[string](newBinding(t, "p", "def"), "p", reg)

	var seen string
	reg.Subscribe("p", func(observe.PropertyID) {
		seen = p.Get()
	})

	p.Set("new")
	assert.Equal(t, "new", seen)
}
