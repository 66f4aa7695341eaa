package reportes

import (
	"net/http"
	"net/url"

	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/filterengine"
	"ControlCajaSaas/api/caja/filterstate"
)

// applyParams replays a URL serialization onto the session state through the
// mutators, so the Todos sentinel expands against the cascade-scoped value
// sets and read-only states stay untouched. Order matters: columns, month,
// then selections in cascade order, then range, mode and grouping.
func applyParams(st *filterstate.State, ds *dataset.Dataset, params url.Values) {
	desired := filterstate.FromValues(params)

	st.SetColumns(desired.Columns)
	st.SetMes(desired.Mes)
	for _, col := range st.Columns {
		avail := filterengine.AvailableValues(ds, st, col)
		st.SetSelection(col, desired.Selections[col], avail)
	}
	if desired.FechaInicio != nil && desired.FechaFin != nil {
		st.SetRange(*desired.FechaInicio, *desired.FechaFin)
	} else {
		st.ClearRange()
	}
	st.SetModo(desired.Modo)
	st.SetAgrupacion(desired.Agrupacion)

	// Freeze last so the view's own filters land before the lock.
	if desired.Ejecutivo {
		st.Ejecutivo = true
	}
}

// Handler: AplicarFiltros
func AplicarFiltros(store *dataset.Store, filters *filterstate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, session, ok := resolve(w, r)
		if !ok {
			return
		}
		st := sessionState(filters, session)

		ds, err := store.Single()
		if err != nil {
			replyNoData(w, "No hay archivo cargado")
			return
		}
		applyParams(st, ds, req.urlValues())

		replyJSON(w, map[string]interface{}{
			"success":   true,
			"read_only": st.ReadOnly(),
			"url":       st.Values().Encode(),
		})
	}
}

// Handler: ResetFiltros
func ResetFiltros(filters *filterstate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, session, ok := resolve(w, r)
		if !ok {
			return
		}
		st := sessionState(filters, session)
		st.Reset()

		replyJSON(w, map[string]interface{}{
			"success":   true,
			"read_only": st.ReadOnly(),
			"url":       st.Values().Encode(),
		})
	}
}
