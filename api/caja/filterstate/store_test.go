package filterstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetCreatesDefault(t *testing.T) {
	store := NewStore(time.Hour)
	s := store.Get("sesion-1", false)
	require.NotNil(t, s)
	assert.Equal(t, Todos, s.Mes)

	// same session, same state
	s.SetMes("Marzo")
	again := store.Get("sesion-1", false)
	assert.Equal(t, "Marzo", again.Mes)

	// different session, isolated state
	other := store.Get("sesion-2", false)
	assert.Equal(t, Todos, other.Mes)
}

func TestStoreReappliesRoleOnAccess(t *testing.T) {
	store := NewStore(time.Hour)
	s := store.Get("sesion-1", true)
	s.SetMes("Marzo")
	assert.Equal(t, Todos, s.Mes)

	// role upgrade unlocks the same state
	s = store.Get("sesion-1", false)
	s.SetMes("Marzo")
	assert.Equal(t, "Marzo", s.Mes)
}

func TestStoreAdoptCarriesStateAcrossLogin(t *testing.T) {
	store := NewStore(time.Hour)
	anon := store.Get("anon", false)
	anon.SetColumns([]string{"costo__gasto"})
	anon.SetMes("Marzo")

	store.Adopt("anon", "logged-in")

	s := store.Get("logged-in", false)
	assert.Equal(t, "Marzo", s.Mes)
	assert.Equal(t, []string{"costo__gasto"}, s.Columns)

	// the old key is gone; a new default appears under it
	fresh := store.Get("anon", false)
	assert.Equal(t, Todos, fresh.Mes)
}

func TestStoreAdoptMissingOldSession(t *testing.T) {
	store := NewStore(time.Hour)
	store.Adopt("nunca-existio", "nueva")
	s := store.Get("nueva", false)
	assert.Equal(t, Todos, s.Mes)
}

func TestStoreResetAll(t *testing.T) {
	store := NewStore(time.Hour)
	store.Get("a", false).SetMes("Marzo")
	store.Get("b", false).SetMes("Abril")

	store.ResetAll()

	assert.Equal(t, Todos, store.Get("a", false).Mes)
	assert.Equal(t, Todos, store.Get("b", false).Mes)
}

func TestStoreCleanupExpired(t *testing.T) {
	store := NewStore(time.Nanosecond)
	store.Get("vieja", false)
	time.Sleep(2 * time.Millisecond)

	dropped := store.CleanupExpired()
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 0, store.CleanupExpired())
}
