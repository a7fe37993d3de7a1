//go:build !integration

package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("charlie", 1)
	m.Set("alpha", 2)
	m.Set("bravo", 3)

	assert.Equal(t, []string{"charlie", "alpha", "bravo"}, m.Keys())
}

func TestMapSetKeepsPositionOnOverwrite(t *testing.T) {
	m := NewMap()
	m.Set("first", 1)
	m.Set("second", 2)
	m.Set("first", 10)

	assert.Equal(t, []string{"first", "second"}, m.Keys())
	v, ok := m.Get("first")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestMapDelete(t *testing.T) {
	m := MapOf("a", 1, "b", 2, "c", 3)

	assert.True(t, m.Delete("b"))
	assert.False(t, m.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, m.Keys())

	// Index stays consistent after deletion.
	v, ok := m.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestMapTypedGetters(t *testing.T) {
	m := MapOf(
		"name", "deploy",
		"count", int64(3),
		"enabled", true,
		"config", MapOf("shell", "/bin/bash"),
		"items", []any{"a", "b"},
	)

	s, ok := m.GetString("name")
	assert.True(t, ok)
	assert.Equal(t, "deploy", s)

	_, ok = m.GetString("count")
	assert.False(t, ok, "GetString on an int should miss")

	b, ok := m.GetBool("enabled")
	assert.True(t, ok)
	assert.True(t, b)

	child, ok := m.GetMap("config")
	assert.True(t, ok)
	shell, _ := child.GetString("shell")
	assert.Equal(t, "/bin/bash", shell)

	items, ok := m.GetSlice("items")
	assert.True(t, ok)
	assert.Len(t, items, 2)
}

func TestNilMapIsSafeToRead(t *testing.T) {
	var m *Map
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Has("x"))
	_, ok := m.Get("x")
	assert.False(t, ok)
	assert.Nil(t, m.Keys())
}

func TestCloneIsDeep(t *testing.T) {
	original := MapOf(
		"steps", []any{
			MapOf("shell", "echo one"),
			MapOf("shell", "echo two"),
		},
	)

	cloned := Clone(original).(*Map)

	steps, _ := cloned.GetSlice("steps")
	steps[0].(*Map).Set("shell", "echo changed")

	originalSteps, _ := original.GetSlice("steps")
	shell, _ := originalSteps[0].(*Map).GetString("shell")
	assert.Equal(t, "echo one", shell, "mutating the clone must not touch the original")
}

func TestCloneEquality(t *testing.T) {
	original := MapOf(
		"name", "build",
		"nested", MapOf("a", int64(1), "b", []any{true, nil, "s"}),
	)

	cloned := Clone(original)

	if diff := cmp.Diff(original.Entries(), cloned.(*Map).Entries(), cmp.AllowUnexported(Map{})); diff != "" {
		t.Errorf("clone differs from original (-want +got):\n%s", diff)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"empty string", "", false},
		{"string", "x", true},
		{"zero int64", int64(0), false},
		{"int64", int64(7), true},
		{"zero float", 0.0, false},
		{"float", 0.5, true},
		{"empty slice", []any{}, false},
		{"slice", []any{1}, true},
		{"empty map", NewMap(), false},
		{"map", MapOf("k", "v"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truthy(tt.value))
		})
	}
}
