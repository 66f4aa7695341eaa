package pivot

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/filterstate"
)

var cien = decimal.NewFromInt(100)

// FilaComparativa is one pivoted row: the group key with executed and
// projected totals side by side and the derived columns.
type FilaComparativa struct {
	Claves       map[string]string
	Ejecutado    decimal.Decimal
	Proyectado   decimal.Decimal
	Diferencia   decimal.Decimal
	Cumplimiento decimal.Decimal
}

// TablaComparativa is the executed-vs-projected pivot. MesSeleccionado is
// set when a month filter narrowed the data, so exports can label the rows.
type TablaComparativa struct {
	Grupos          []string
	Filas           []FilaComparativa
	MesSeleccionado string
}

func (t *TablaComparativa) Empty() bool { return len(t.Filas) == 0 }

// AggregateComparison groups by groupCols plus the source tag, then pivots
// the tag into Ejecutado/Proyectado columns. Every group key present in
// either source appears exactly once, with both columns populated (zero when
// one side has no data). Diferencia = Ejecutado - Proyectado; Cumplimiento =
// Ejecutado/Proyectado*100, 0 when Proyectado is 0.
func AggregateComparison(filtered *dataset.Dataset, groupCols []string, st *filterstate.State) *TablaComparativa {
	t := &TablaComparativa{Grupos: groupCols}
	if st.Mes != filterstate.Todos {
		t.MesSeleccionado = st.Mes
	}
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
			t.Filas = append(t.Filas, FilaComparativa{
				Claves:     claves,
				Ejecutado:  decimal.Zero,
				Proyectado: decimal.Zero,
			})
			i = len(t.Filas) - 1
			index[key] = i
		}
		switch r.Fields[dataset.ColTipo] {
		case dataset.TipoEjecutado:
			t.Filas[i].Ejecutado = t.Filas[i].Ejecutado.Add(r.Total)
		case dataset.TipoProyectado:
			t.Filas[i].Proyectado = t.Filas[i].Proyectado.Add(r.Total)
		}
	}

	for i := range t.Filas {
		f := &t.Filas[i]
		f.Diferencia = f.Ejecutado.Sub(f.Proyectado)
		if f.Proyectado.IsZero() {
			f.Cumplimiento = decimal.Zero
		} else {
			f.Cumplimiento = f.Ejecutado.Div(f.Proyectado).Mul(cien)
		}
	}

	// pivot_table ordering: ascending over the group key columns
	sort.SliceStable(t.Filas, func(i, j int) bool {
		return clavesKey(t.Filas[i].Claves, groupCols) < clavesKey(t.Filas[j].Claves, groupCols)
	})
	return t
}

func clavesKey(claves map[string]string, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = claves[c]
	}
	return strings.Join(parts, "\x1f")
}
