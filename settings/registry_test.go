package settings_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settingskit/settingskit/settings"
	"github.com/settingskit/settingskit/store"
)

func TestRegistryRegister(t *testing.T) {
	testCases := []struct {
		name          string
		defs          []settings.Definition
		expectedError error
		expectedCount int
	}{
		{
			name: "distinct keys",
			defs: []settings.Definition{
				settings.String("userName", "Anonymous"),
				settings.Integer("count", 5),
				settings.EnumString("opt", optionA, optionA, optionB),
			},
			expectedCount: 3,
		},
		{
			name: "duplicate within call",
			defs: []settings.Definition{
				settings.String("dup", "a"),
				settings.Bool("dup", true),
			},
			expectedError: settings.ErrDuplicateKey,
		},
		{
			name: "key too long",
			defs: []settings.Definition{
				settings.String(strings.Repeat("k", 256), ""),
			},
			expectedError: settings.ErrInvalidKey,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := settings.NewRegistry()
			err := r.Register(tc.defs...)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Empty(t, r.Definitions())

				return
			}

			require.NoError(t, err)
			assert.Len(t, r.Definitions(), tc.expectedCount)
		})
	}
}

func TestRegistryRejectsAlreadyRegistered(t *testing.T) {
	r := settings.NewRegistry()
	r.MustRegister(settings.String("a", ""))

	require.ErrorIs(t, r.Register(settings.Integer("a", 1)), settings.ErrDuplicateKey)
	assert.Panics(t, func() {
		r.MustRegister(settings.Integer("a", 1))
	})
}

func TestRegistryLookupAndOrder(t *testing.T) {
	r := settings.NewRegistry()
	r.MustRegister(
		settings.String("b", ""),
		settings.String("c", ""),
		settings.Double("a", 0),
	)

	d, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, settings.KindDouble, d.Kind())

	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	keys := make([]string, 0, 3)
	for _, d := range r.Definitions() {
		keys = append(keys, d.Key())
	}

	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestRegistrySnapshotAndReset(t *testing.T) {
	s := newStore(t)
	userName := settings.String("userName", "Anonymous")
	count := settings.Integer("count", 5)
	opt := settings.EnumString("opt", optionA, optionA, optionB)

	r := settings.NewRegistry()
	r.MustRegister(userName, count, opt)

	userName.Set(s, "Alice")
	opt.Set(s, optionB)
	s.SetString("unrelated", "kept")

	snap := r.Snapshot(s)
	assert.True(t, store.String("Alice").Equal(snap["userName"]))
	assert.True(t, store.Integer(0).Equal(snap["count"]))
	assert.True(t, store.String("optionB").Equal(snap["opt"]))

	r.ResetAll(s)
	assert.Equal(t, "Anonymous", userName.Value(s))
	assert.Equal(t, optionA, opt.Value(s))
	assert.True(t, s.Contains("unrelated"))
}
