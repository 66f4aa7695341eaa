package filterengine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/filterstate"
)

const fixtureCSV = `Fecha,INGRESO/EGRESO,Costo / Gasto,Clasificacion 1,Total General S/
2024-03-05,INGRESO,COSTO,Ventas,1000.00
2024-03-10,EGRESO,COSTO,Planilla,200.00
2024-03-20,EGRESO,GASTO,Servicios,300.00
2024-04-02,INGRESO,GASTO,Ventas,500.00
2024-04-15,EGRESO,COSTO,Planilla,150.00
`

func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(strings.NewReader(fixtureCSV), "fixture.csv")
	require.NoError(t, err)
	return ds
}

func TestApplyMonthFilter(t *testing.T) {
	ds := fixture(t)
	st := filterstate.New()
	st.SetMes("Marzo")

	got := Apply(ds, st)
	assert.Equal(t, 3, got.Len())
	for _, r := range got.Rows {
		assert.Equal(t, "Marzo", r.Fields[dataset.ColMesNombre])
	}
	// source untouched
	assert.Equal(t, 5, ds.Len())
}

func TestApplyCascadeIsConjunctive(t *testing.T) {
	ds := fixture(t)
	st := filterstate.New()
	st.SetColumns([]string{"costo__gasto", "clasificacion_1"})
	st.SetSelection("costo__gasto", []string{"COSTO"}, AvailableValues(ds, st, "costo__gasto"))
	st.SetSelection("clasificacion_1", []string{"Planilla"}, AvailableValues(ds, st, "clasificacion_1"))

	got := Apply(ds, st)
	assert.Equal(t, 2, got.Len())
	for _, r := range got.Rows {
		assert.Equal(t, "COSTO", r.Fields["costo__gasto"])
		assert.Equal(t, "Planilla", r.Fields["clasificacion_1"])
	}
}

func TestApplyOrderCommutes(t *testing.T) {
	ds := fixture(t)
	sel := map[string][]string{
		"costo__gasto":    {"COSTO", "GASTO"},
		"clasificacion_1": {"Planilla", "Servicios"},
	}

	rowKeys := func(cols []string) []string {
		st := filterstate.New()
		st.SetColumns(cols)
		for _, col := range cols {
			st.SetSelection(col, sel[col], sel[col])
		}
		got := Apply(ds, st)
		keys := make([]string, 0, got.Len())
		for _, r := range got.Rows {
			keys = append(keys, r.Fecha.Format("2006-01-02")+"|"+r.Total.StringFixed(2))
		}
		return keys
	}

	// the same selections survive either enable order
	forward := rowKeys([]string{"costo__gasto", "clasificacion_1"})
	reversed := rowKeys([]string{"clasificacion_1", "costo__gasto"})
	require.NotEmpty(t, forward)
	assert.Equal(t, forward, reversed)
}

func TestApplyNarrowsMonotonically(t *testing.T) {
	ds := fixture(t)
	st := filterstate.New()
	base := Apply(ds, st).Len()

	st.SetMes("Marzo")
	withMes := Apply(ds, st).Len()
	assert.LessOrEqual(t, withMes, base)

	st.SetColumns([]string{"costo__gasto"})
	st.SetSelection("costo__gasto", []string{"COSTO"}, AvailableValues(ds, st, "costo__gasto"))
	withCol := Apply(ds, st).Len()
	assert.LessOrEqual(t, withCol, withMes)
}

func TestAvailableValuesSeesCascadePrefixOnly(t *testing.T) {
	ds := fixture(t)
	st := filterstate.New()
	st.SetColumns([]string{"costo__gasto", "clasificacion_1"})
	st.SetSelection("costo__gasto", []string{"GASTO"}, AvailableValues(ds, st, "costo__gasto"))

	// downstream column only offers values compatible with the prefix
	assert.Equal(t, []string{"Servicios", "Ventas"}, AvailableValues(ds, st, "clasificacion_1"))

	// the column's own selection does not narrow its own options
	assert.Equal(t, []string{"COSTO", "GASTO"}, AvailableValues(ds, st, "costo__gasto"))
}

func TestEmptySelectionRestrictsNothing(t *testing.T) {
	ds := fixture(t)
	st := filterstate.New()
	st.SetColumns([]string{"costo__gasto"})

	assert.Equal(t, ds.Len(), Apply(ds, st).Len())
}

func TestDateBoundsFollowMonthOnly(t *testing.T) {
	ds := fixture(t)
	st := filterstate.New()
	st.SetColumns([]string{"costo__gasto"})
	st.SetSelection("costo__gasto", []string{"GASTO"}, AvailableValues(ds, st, "costo__gasto"))
	st.SetMes("Marzo")

	// bounds ignore the discrete cascade
	min, max, ok := DateBounds(ds, st)
	require.True(t, ok)
	assert.Equal(t, "2024-03-05", min.Format("2006-01-02"))
	assert.Equal(t, "2024-03-20", max.Format("2006-01-02"))
}

func TestApplyRangeInclusive(t *testing.T) {
	ds := fixture(t)
	st := filterstate.New()
	st.SetRange(
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	)
	got := Apply(ds, st)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "2024-03-10", got.Rows[0].Fecha.Format("2006-01-02"))
	assert.Equal(t, "2024-03-20", got.Rows[1].Fecha.Format("2006-01-02"))
}

func TestEffectiveRangeClampsToBounds(t *testing.T) {
	ds := fixture(t)
	st := filterstate.New()
	st.SetRange(
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	inicio, fin, ok := EffectiveRange(ds, st)
	require.True(t, ok)
	assert.Equal(t, "2024-03-05", inicio.Format("2006-01-02"))
	assert.Equal(t, "2024-04-15", fin.Format("2006-01-02"))
}

func TestEffectiveRangeEmptyDataset(t *testing.T) {
	st := filterstate.New()
	_, _, ok := EffectiveRange(&dataset.Dataset{}, st)
	assert.False(t, ok)
}
