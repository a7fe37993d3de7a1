//go:build !integration

package envutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIntFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"unset returns default", "", 5},
		{"valid value", "30", 30},
		{"not a number returns default", "abc", 5},
		{"below minimum returns default", "0", 5},
		{"above maximum returns default", "9000", 5},
		{"boundary minimum accepted", "1", 1},
		{"boundary maximum accepted", "300", 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RY_TEST_TIMEOUT", tt.value)
			assert.Equal(t, tt.expected, GetIntFromEnv("RY_TEST_TIMEOUT", 5, 1, 300, nil))
		})
	}
}

func TestGetStringFromEnv(t *testing.T) {
	t.Setenv("RY_TEST_SHELL", "")
	assert.Equal(t, "/bin/sh", GetStringFromEnv("RY_TEST_SHELL", "/bin/sh", nil))

	t.Setenv("RY_TEST_SHELL", "/bin/bash")
	assert.Equal(t, "/bin/bash", GetStringFromEnv("RY_TEST_SHELL", "/bin/sh", nil))
}
