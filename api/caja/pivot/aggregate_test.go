package pivot

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/filterstate"
)

const pivotCSV = `Fecha,INGRESO/EGRESO,Costo / Gasto,Total General S/
2024-03-05,INGRESO,COSTO,1000.00
2024-03-05,INGRESO,COSTO,500.00
2024-03-10,EGRESO,COSTO,200.00
2024-03-20,EGRESO,GASTO,300.00
2024-04-02,INGRESO,GASTO,700.00
`

func pivotFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(strings.NewReader(pivotCSV), "fixture.csv")
	require.NoError(t, err)
	return ds
}

func sumRows(ds *dataset.Dataset) decimal.Decimal {
	total := decimal.Zero
	for _, r := range ds.Rows {
		total = total.Add(r.Total)
	}
	return total
}

func TestAggregateConservesTotal(t *testing.T) {
	ds := pivotFixture(t)
	tabla := Aggregate(ds, []string{"costo__gasto", dataset.ColDireccion})

	got := decimal.Zero
	for _, f := range tabla.Filas {
		got = got.Add(f.Total)
	}
	assert.True(t, got.Equal(sumRows(ds)), "table sum %s != dataset sum %s", got, sumRows(ds))
}

func TestAggregateGroupsOnce(t *testing.T) {
	ds := pivotFixture(t)
	tabla := Aggregate(ds, []string{"costo__gasto", dataset.ColDireccion})

	seen := map[string]bool{}
	for _, f := range tabla.Filas {
		key := f.Claves["costo__gasto"] + "|" + f.Claves[dataset.ColDireccion]
		assert.False(t, seen[key], "duplicate group %s", key)
		seen[key] = true
	}
	// COSTO/INGRESO, COSTO/EGRESO, GASTO/EGRESO, GASTO/INGRESO
	assert.Len(t, tabla.Filas, 4)

	for _, f := range tabla.Filas {
		if f.Claves["costo__gasto"] == "COSTO" && f.Claves[dataset.ColDireccion] == "INGRESO" {
			assert.Equal(t, "1500.00", f.Total.StringFixed(2))
		}
	}
}

func TestAggregateSortCostoAscTotalDesc(t *testing.T) {
	ds := pivotFixture(t)
	tabla := Aggregate(ds, []string{"costo__gasto", dataset.ColDireccion})

	for i := 1; i < len(tabla.Filas); i++ {
		prev, cur := tabla.Filas[i-1], tabla.Filas[i]
		cp, cc := prev.Claves["costo__gasto"], cur.Claves["costo__gasto"]
		require.LessOrEqual(t, cp, cc)
		if cp == cc {
			assert.True(t, prev.Total.GreaterThanOrEqual(cur.Total))
		}
	}
}

func TestAggregateSortTotalDescWithoutCosto(t *testing.T) {
	ds := pivotFixture(t)
	tabla := Aggregate(ds, []string{dataset.ColDireccion})
	require.Len(t, tabla.Filas, 2)
	assert.True(t, tabla.Filas[0].Total.GreaterThan(tabla.Filas[1].Total))
}

func TestAggregateEmptyInput(t *testing.T) {
	tabla := Aggregate(&dataset.Dataset{}, []string{"costo__gasto"})
	assert.True(t, tabla.Empty())
}

func TestGroupColumnsDefaults(t *testing.T) {
	ds := pivotFixture(t)
	st := filterstate.New()

	// no filters: mes_nombre added for the multi-month span, direction
	// appended last; the fecha default only applies when nothing else did
	cols := GroupColumns(ds, st)
	assert.Equal(t, []string{dataset.ColMesNombre, dataset.ColDireccion}, cols)
}

func TestGroupColumnsWithState(t *testing.T) {
	ds := pivotFixture(t)
	st := filterstate.New()
	st.SetColumns([]string{"costo__gasto"})
	st.SetMes("Marzo")
	st.SetModo(filterstate.ModoPorMes)

	cols := GroupColumns(ds, st)
	assert.Equal(t, []string{"costo__gasto", dataset.ColMesNombre, dataset.ColAnioMes, dataset.ColDireccion}, cols)
}

func TestGroupColumnsSingleMonthNoMesNombre(t *testing.T) {
	ds, err := dataset.Load(strings.NewReader(`Fecha,INGRESO/EGRESO,Total General S/
2024-03-05,INGRESO,100.00
2024-03-06,EGRESO,50.00
`), "f.csv")
	require.NoError(t, err)

	st := filterstate.New()
	cols := GroupColumns(ds, st)
	assert.Equal(t, []string{dataset.ColFecha, dataset.ColDireccion}, cols)
}
