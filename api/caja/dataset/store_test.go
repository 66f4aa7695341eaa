package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storeCSV = []byte(`Fecha,INGRESO/EGRESO,Total General S/
2024-01-10,INGRESO,1000.00
2024-01-11,EGRESO,400.00
`)

func TestStoreSaveSinglePersistsAndCaches(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	_, err := s.Single()
	require.ErrorIs(t, err, ErrNoSavedFile)

	ds, err := s.SaveSingle(storeCSV, "subida.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	// saved under the canonical base with the upload's extension
	_, err = os.Stat(filepath.Join(dir, "control_caja.csv"))
	require.NoError(t, err)

	got, err := s.Single()
	require.NoError(t, err)
	assert.Same(t, ds, got)
}

func TestStoreReloadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	first := NewStore(dir)
	_, err := first.SaveSingle(storeCSV, "subida.csv")
	require.NoError(t, err)

	// a fresh store over the same dir sees the saved workbook
	second := NewStore(dir)
	ds, err := second.Single()
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestStoreComparisonRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	_, err := s.Comparison()
	require.ErrorIs(t, err, ErrNoSavedFile)

	ds, err := s.SaveComparison(storeCSV, "ej.csv", storeCSV, "pr.csv")
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())

	second := NewStore(dir)
	got, err := second.Comparison()
	require.NoError(t, err)
	assert.Equal(t, 4, got.Len())
	assert.Equal(t, TipoEjecutado, got.Rows[0].Fields[ColTipo])
	assert.Equal(t, TipoProyectado, got.Rows[2].Fields[ColTipo])
}

func TestStoreClear(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	_, err := s.SaveSingle(storeCSV, "subida.csv")
	require.NoError(t, err)
	_, err = s.SaveComparison(storeCSV, "ej.csv", storeCSV, "pr.csv")
	require.NoError(t, err)

	require.NoError(t, s.Clear())

	_, err = s.Single()
	assert.ErrorIs(t, err, ErrNoSavedFile)
	_, err = s.Comparison()
	assert.ErrorIs(t, err, ErrNoSavedFile)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreRejectsBadUploadWithoutSaving(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	_, err := s.SaveSingle([]byte("Fecha,Detalle\n2024-01-01,x\n"), "malo.csv")
	require.Error(t, err)

	entries, readErr := os.ReadDir(dir)
	if readErr == nil {
		assert.Empty(t, entries)
	}
}
