package reserved

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_StaticWords(t *testing.T) {
	reg := NewRegistry(nil)

	tests := []struct {
		name      string
		candidate string
		reserved  bool
	}{
		{"fixed word", "admin", true},
		{"fixed word api", "api", true},
		{"fixed word login", "login", true},
		{"uppercase matches", "ADMIN", true},
		{"mixed case matches", "LoGiN", true},
		{"free word", "my-link", false},
		{"prefix is not a match", "adminx", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.reserved, reg.IsReserved(tt.candidate))
		})
	}
}

func TestRegistry_RouteDerivedWords(t *testing.T) {
	reg := NewRegistry(func() []string {
		return []string{"/health", "metrics", "Verify", ""}
	})

	assert.True(t, reg.IsReserved("health"), "leading slash stripped")
	assert.True(t, reg.IsReserved("metrics"))
	assert.True(t, reg.IsReserved("verify"), "derived words lowercased")
	assert.False(t, reg.IsReserved("healthz"))
}

func TestRegistry_ProviderInvokedOnce(t *testing.T) {
	calls := 0
	reg := NewRegistry(func() []string {
		calls++
		return []string{"once"}
	})

	for i := 0; i < 5; i++ {
		assert.True(t, reg.IsReserved("once"))
	}
	assert.Equal(t, 1, calls, "route segments must be memoized")
}

func TestRegistry_RebuildPerInstance(t *testing.T) {
	a := NewRegistry(func() []string { return []string{"alpha"} })
	b := NewRegistry(func() []string { return []string{"beta"} })

	assert.True(t, a.IsReserved("alpha"))
	assert.False(t, a.IsReserved("beta"))
	assert.True(t, b.IsReserved("beta"))
	assert.False(t, b.IsReserved("alpha"))
}
