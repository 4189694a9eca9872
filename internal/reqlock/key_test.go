package reqlock_test

import (
	"testing"

	"github.com/mvaldes/almacen/internal/reqlock"
	"github.com/stretchr/testify/assert"
)

func TestKey_Deterministic(t *testing.T) {
	body := []byte(`{"quantity":3}`)

	k1 := reqlock.Key("user-1", "POST", "/products/42/stock", body)
	k2 := reqlock.Key("user-1", "POST", "/products/42/stock", body)

	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 64) // hex sha256
}

func TestKey_VariesPerComponent(t *testing.T) {
	base := reqlock.Key("user-1", "POST", "/products", []byte(`{"a":1}`))

	tests := []struct {
		name string
		key  string
	}{
		{"different actor", reqlock.Key("user-2", "POST", "/products", []byte(`{"a":1}`))},
		{"different method", reqlock.Key("user-1", "PUT", "/products", []byte(`{"a":1}`))},
		{"different path", reqlock.Key("user-1", "POST", "/users", []byte(`{"a":1}`))},
		{"different body", reqlock.Key("user-1", "POST", "/products", []byte(`{"a":2}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.key)
		})
	}
}

func TestKey_EmptyActorIsAnonymous(t *testing.T) {
	anon := reqlock.Key("", "POST", "/auth/login", []byte(`{}`))
	explicit := reqlock.Key(reqlock.AnonymousActor, "POST", "/auth/login", []byte(`{}`))

	assert.Equal(t, explicit, anon)
}
