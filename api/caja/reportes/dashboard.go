package reportes

import (
	"net/http"

	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/export"
	"ControlCajaSaas/api/caja/filterengine"
	"ControlCajaSaas/api/caja/filterstate"
	"ControlCajaSaas/api/caja/pivot"
	"ControlCajaSaas/api/utils"
	"ControlCajaSaas/internal/config"
)

const fechaLayout = "2006-01-02"

// vista is one full recompute of the single-source dashboard: the filtered
// dataset plus everything derived from it.
type vista struct {
	ds       *dataset.Dataset
	filtered *dataset.Dataset
	st       *filterstate.State
	resumen  pivot.Resumen
	tabla    *pivot.Tabla
	pie      []pivot.PieSlice
	barras   []pivot.BarPoint
}

func computeVista(ds *dataset.Dataset, st *filterstate.State) *vista {
	filtered := filterengine.Apply(ds, st)
	resumen := pivot.Summarize(filtered)
	tabla := pivot.Aggregate(filtered, pivot.GroupColumns(filtered, st))

	ejes := st.Agrupacion
	if len(ejes) == 0 {
		ejes = []string{dataset.ColFecha}
	}
	return &vista{
		ds:       ds,
		filtered: filtered,
		st:       st,
		resumen:  resumen,
		tabla:    tabla,
		pie:      pivot.PieBreakdown(resumen),
		barras:   pivot.BarSeries(filtered, ejes),
	}
}

// Handler: Dashboard
func Dashboard(store *dataset.Store, filters *filterstate.Store) http.HandlerFunc {
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
		if len(req.Params) > 0 {
			applyParams(st, ds, req.urlValues())
		} else if st.Equal(filterstate.New()) {
			st.SetColumns(defaultColumns(ds))
		}
		v := computeVista(ds, st)
		if v.filtered.Empty() {
			replyNoData(w, "No hay datos para los filtros seleccionados")
			return
		}

		opciones := map[string][]string{}
		for _, col := range ds.FilterableColumns() {
			opciones[col] = filterengine.AvailableValues(ds, st, col)
		}

		tabla := tablaJSON(v.tabla)
		var paginacion *utils.PaginationParams
		if utils.Requested(r) {
			p, err := utils.ExtractPagination(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			filas := tabla["filas"].([]map[string]interface{})
			p.SetPaginationStats(len(filas))
			from, to := p.Slice(len(filas))
			tabla["filas"] = filas[from:to]
			paginacion = &p
		}

		payload := map[string]interface{}{
			"success": true,
			"resumen": map[string]interface{}{
				"total_ingresos": export.FormatoMoneda(v.resumen.TotalIngresos),
				"total_egresos":  export.FormatoMoneda(v.resumen.TotalEgresos.Abs()),
				"saldo":          export.FormatoMoneda(v.resumen.Saldo),
			},
			"tabla":     tabla,
			"pie":       pieJSON(v.pie),
			"barras":    barrasJSON(v.barras),
			"opciones":  opciones,
			"meses":     append([]string{filterstate.Todos}, ds.MonthsPresent()...),
			"read_only": st.ReadOnly(),
			"url":       st.Values().Encode(),
		}
		if paginacion != nil {
			payload["paginacion"] = paginacion
		}
		if min, max, ok := filterengine.DateBounds(ds, st); ok {
			payload["fecha_min"] = min.Format(fechaLayout)
			payload["fecha_max"] = max.Format(fechaLayout)
		}
		if inicio, fin, ok := filterengine.EffectiveRange(ds, st); ok {
			payload["rango_inicio"] = inicio.Format(fechaLayout)
			payload["rango_fin"] = fin.Format(fechaLayout)
		}
		replyJSON(w, payload)
	}
}

// Handler: DashboardComparacion
func DashboardComparacion(store *dataset.Store, filters *filterstate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, session, ok := resolve(w, r)
		if !ok {
			return
		}
		st := sessionState(filters, session)

		ds, err := store.Comparison()
		if err != nil {
			replyNoData(w, "No hay archivos de comparación cargados")
			return
		}
		if len(req.Params) > 0 {
			applyParams(st, ds, req.urlValues())
		}
		filtered := filterengine.Apply(ds, st)
		if filtered.Empty() {
			replyNoData(w, "No hay datos para los filtros seleccionados")
			return
		}
		res := pivot.SummarizeComparison(filtered)
		tabla := pivot.AggregateComparison(filtered, pivot.GroupColumns(filtered, st), st)
		barras := pivot.BarSeriesComparison(filtered, st)

		replyJSON(w, map[string]interface{}{
			"success": true,
			"resumen": map[string]interface{}{
				"ejecutado":    export.FormatoMoneda(res.Ejecutado),
				"proyectado":   export.FormatoMoneda(res.Proyectado),
				"diferencia":   export.FormatoMoneda(res.Diferencia),
				"variacion":    export.FormatoPorcentaje(res.Variacion),
				"cumplimiento": export.FormatoPorcentaje(res.Cumplimiento),
			},
			"tabla":     tablaComparativaJSON(tabla),
			"barras":    barrasJSON(barras),
			"meses":     append([]string{filterstate.Todos}, ds.MonthsPresent()...),
			"read_only": st.ReadOnly(),
			"url":       st.Values().Encode(),
		})
	}
}

// defaultColumns pre-enables the usual filter columns for a session that has
// never touched its filters, skipping columns the workbook does not carry.
func defaultColumns(ds *dataset.Dataset) []string {
	cols := make([]string, 0, len(config.DefaultFilterColumns))
	for _, c := range config.DefaultFilterColumns {
		if ds.HasColumn(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

func tablaJSON(t *pivot.Tabla) map[string]interface{} {
	filas := make([]map[string]interface{}, 0, len(t.Filas))
	for _, f := range t.Filas {
		fila := map[string]interface{}{}
		for _, g := range t.Grupos {
			fila[g] = f.Claves[g]
		}
		fila["total"] = f.Total.StringFixed(2)
		filas = append(filas, fila)
	}
	return map[string]interface{}{"grupos": t.Grupos, "filas": filas}
}

func tablaComparativaJSON(t *pivot.TablaComparativa) map[string]interface{} {
	filas := make([]map[string]interface{}, 0, len(t.Filas))
	for _, f := range t.Filas {
		fila := map[string]interface{}{}
		for _, g := range t.Grupos {
			fila[g] = f.Claves[g]
		}
		fila["ejecutado"] = f.Ejecutado.StringFixed(2)
		fila["proyectado"] = f.Proyectado.StringFixed(2)
		fila["diferencia"] = f.Diferencia.StringFixed(2)
		fila["cumplimiento"] = f.Cumplimiento.StringFixed(2)
		filas = append(filas, fila)
	}
	out := map[string]interface{}{"grupos": t.Grupos, "filas": filas}
	if t.MesSeleccionado != "" {
		out["mes_seleccionado"] = t.MesSeleccionado
	}
	return out
}

func pieJSON(slices []pivot.PieSlice) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(slices))
	for _, s := range slices {
		out = append(out, map[string]interface{}{
			"nombre": s.Nombre,
			"monto":  s.Monto.StringFixed(2),
		})
	}
	return out
}

func barrasJSON(points []pivot.BarPoint) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(points))
	for _, p := range points {
		item := map[string]interface{}{
			"etiqueta": p.Etiqueta,
			"serie":    p.Serie,
			"total":    p.Total.StringFixed(2),
		}
		if p.Faceta != "" {
			item["faceta"] = p.Faceta
		}
		out = append(out, item)
	}
	return out
}
