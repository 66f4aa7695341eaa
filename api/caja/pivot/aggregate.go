package pivot

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/filterstate"
)

// Column whose presence changes the sort contract: cost/expense
// classification sorts first, totals descend within it.
const colCostoGasto = "costo__gasto"

// Fila is one row of the aggregate table.
type Fila struct {
	Claves map[string]string
	Total  decimal.Decimal
}

// Tabla is the grouped, sorted aggregate of a filtered dataset.
type Tabla struct {
	Grupos []string
	Filas  []Fila
}

func (t *Tabla) Empty() bool { return len(t.Filas) == 0 }

// GroupColumns derives the grouping fields for the current state: the
// enabled filter columns, plus the month name when a month is selected or
// the filtered range spans more than one month, plus the comparison-mode
// bucket (fecha by day, anio_mes by month). Defaults to fecha when nothing
// else applies. Direction is appended last when the dataset carries it, so
// inflow and outflow totals are never merged.
func GroupColumns(filtered *dataset.Dataset, st *filterstate.State) []string {
	cols := append([]string(nil), st.Columns...)

	if st.Mes != filterstate.Todos || countMeses(filtered) > 1 {
		if !containsString(cols, dataset.ColMesNombre) {
			cols = append(cols, dataset.ColMesNombre)
		}
	}
	switch st.Modo {
	case filterstate.ModoPorDia:
		if !containsString(cols, dataset.ColFecha) {
			cols = append(cols, dataset.ColFecha)
		}
	case filterstate.ModoPorMes:
		if !containsString(cols, dataset.ColAnioMes) {
			cols = append(cols, dataset.ColAnioMes)
		}
	}
	if len(cols) == 0 {
		cols = []string{dataset.ColFecha}
	}
	if filtered.HasColumn(dataset.ColDireccion) && !containsString(cols, dataset.ColDireccion) {
		cols = append(cols, dataset.ColDireccion)
	}
	return cols
}

// Aggregate groups the filtered dataset by groupCols and sums the amount per
// group. Every group key present in the input appears exactly once; the sum
// of the table equals the sum of the input. An empty input yields an empty
// table, which callers treat as the "no data" state.
func Aggregate(filtered *dataset.Dataset, groupCols []string) *Tabla {
	t := &Tabla{Grupos: groupCols}
	if filtered.Empty() {
		return t
	}

	index := map[string]int{}
	for _, r := range filtered.Rows {
		key := groupKey(r, groupCols)
		i, ok := index[key]
		if !ok {
			claves := make(map[string]string, len(groupCols))
			for _, c := range groupCols {
				claves[c] = r.Get(c)
			}
			t.Filas = append(t.Filas, Fila{Claves: claves, Total: decimal.Zero})
			i = len(t.Filas) - 1
			index[key] = i
		}
		t.Filas[i].Total = t.Filas[i].Total.Add(r.Total)
	}

	sortTabla(t)
	return t
}

// sortTabla applies the presentation ordering: when the cost/expense column
// is among the groups, ascending by it then totals descending; otherwise
// totals descending.
func sortTabla(t *Tabla) {
	byCosto := containsString(t.Grupos, colCostoGasto)
	sort.SliceStable(t.Filas, func(i, j int) bool {
		a, b := t.Filas[i], t.Filas[j]
		if byCosto {
			if ca, cb := a.Claves[colCostoGasto], b.Claves[colCostoGasto]; ca != cb {
				return ca < cb
			}
		}
		return a.Total.GreaterThan(b.Total)
	})
}

func groupKey(r dataset.Row, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = r.Get(c)
	}
	return strings.Join(parts, "\x1f")
}

func countMeses(ds *dataset.Dataset) int {
	seen := map[string]bool{}
	for _, r := range ds.Rows {
		if m := r.Fields[dataset.ColMesNombre]; m != "" {
			seen[m] = true
		}
	}
	return len(seen)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
