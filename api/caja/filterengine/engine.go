package filterengine

import (
	"sort"
	"time"

	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/filterstate"
)

// Apply runs the session's filters over the dataset in the fixed order the
// dashboard defines: month first, then each enabled column's selection in
// the order the columns were enabled (a cascading AND), then the inclusive
// date range. The source dataset is never mutated; the result shares row
// storage with it.
func Apply(ds *dataset.Dataset, st *filterstate.State) *dataset.Dataset {
	out := applyMes(ds, st.Mes)
	out = applyColumnas(out, st)
	out = applyRango(out, ds, st)
	return out
}

// DateBounds returns the min/max dates visible to the date picker. They are
// computed after the month filter only, so the picker reflects month-scoped
// data while the range itself still applies after the column cascade.
func DateBounds(ds *dataset.Dataset, st *filterstate.State) (time.Time, time.Time, bool) {
	return applyMes(ds, st.Mes).MinMaxFecha()
}

// EffectiveRange is the range actually enforced: the session's range clamped
// into the current bounds, or the full bounds when no range is set or the
// stored one is garbled beyond use.
func EffectiveRange(ds *dataset.Dataset, st *filterstate.State) (time.Time, time.Time, bool) {
	min, max, ok := DateBounds(ds, st)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	min, max = truncateDay(min), truncateDay(max)
	inicio, fin := min, max
	if st.FechaInicio != nil && st.FechaFin != nil {
		inicio = clampFecha(*st.FechaInicio, min, max)
		fin = clampFecha(*st.FechaFin, min, max)
		if fin.Before(inicio) {
			inicio, fin = min, max
		}
	}
	return inicio, fin, true
}

// AvailableValues lists the sorted distinct values of col as the cascade
// sees them: month filter plus every enabled column before col already
// applied. Feeds the option lists, so each filter only offers values that
// can still match.
func AvailableValues(ds *dataset.Dataset, st *filterstate.State, col string) []string {
	working := applyMes(ds, st.Mes)
	for _, enabled := range st.Columns {
		if enabled == col {
			break
		}
		working = applySeleccion(working, enabled, st.Selections[enabled])
	}
	seen := map[string]bool{}
	for _, r := range working.Rows {
		if v := r.Get(col); v != "" {
			seen[v] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func applyMes(ds *dataset.Dataset, mes string) *dataset.Dataset {
	if mes == "" || mes == filterstate.Todos {
		return ds
	}
	rows := make([]dataset.Row, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		if r.Fields[dataset.ColMesNombre] == mes {
			rows = append(rows, r)
		}
	}
	return &dataset.Dataset{Columns: ds.Columns, Rows: rows}
}

func applyColumnas(ds *dataset.Dataset, st *filterstate.State) *dataset.Dataset {
	out := ds
	for _, col := range st.Columns {
		out = applySeleccion(out, col, st.Selections[col])
	}
	return out
}

// applySeleccion narrows the working set to rows whose value for col is in
// the selection. An empty selection restricts nothing; it never excludes all
// rows.
func applySeleccion(ds *dataset.Dataset, col string, selected []string) *dataset.Dataset {
	if len(selected) == 0 {
		return ds
	}
	allow := make(map[string]bool, len(selected))
	for _, v := range selected {
		allow[v] = true
	}
	rows := make([]dataset.Row, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		if allow[r.Get(col)] {
			rows = append(rows, r)
		}
	}
	return &dataset.Dataset{Columns: ds.Columns, Rows: rows}
}

func applyRango(working, base *dataset.Dataset, st *filterstate.State) *dataset.Dataset {
	if st.FechaInicio == nil || st.FechaFin == nil {
		return working
	}
	inicio, fin, ok := EffectiveRange(base, st)
	if !ok {
		return working
	}
	rows := make([]dataset.Row, 0, len(working.Rows))
	for _, r := range working.Rows {
		d := truncateDay(r.Fecha)
		if !d.Before(inicio) && !d.After(fin) {
			rows = append(rows, r)
		}
	}
	return &dataset.Dataset{Columns: working.Columns, Rows: rows}
}

func clampFecha(t, min, max time.Time) time.Time {
	t = truncateDay(t)
	if t.Before(truncateDay(min)) {
		return truncateDay(min)
	}
	if t.After(truncateDay(max)) {
		return truncateDay(max)
	}
	return t
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
