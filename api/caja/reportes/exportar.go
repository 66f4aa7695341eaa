package reportes

import (
	"errors"
	"net/http"
	"time"

	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/export"
	"ControlCajaSaas/api/caja/filterengine"
	"ControlCajaSaas/api/caja/filterstate"
	"ControlCajaSaas/api/caja/pivot"
	"ControlCajaSaas/internal/config"
)

// Handler: ExportarBundle
func ExportarBundle(store *dataset.Store, filters *filterstate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, session, ok := resolve(w, r)
		if !ok {
			return
		}
		st := sessionState(filters, session)

		ds, err := store.Single()
		if err != nil {
			replyNoData(w, "No hay archivo cargado")
			return
		}
		v := computeVista(ds, st)
		if v.filtered.Empty() {
			replyNoData(w, "No hay datos para exportar")
			return
		}

		workbook, err := export.Workbook(v.resumen, v.tabla)
		if err != nil {
			http.Error(w, "Failed to build workbook: "+err.Error(), http.StatusInternalServerError)
			return
		}
		pie, err := export.RenderPie(v.pie)
		if err != nil && !errors.Is(err, export.ErrSinDatosGrafico) {
			http.Error(w, "Failed to render chart: "+err.Error(), http.StatusInternalServerError)
			return
		}
		bars, err := export.RenderBars(v.barras, "Resultados por grupo")
		if err != nil && !errors.Is(err, export.ErrSinDatosGrafico) {
			http.Error(w, "Failed to render chart: "+err.Error(), http.StatusInternalServerError)
			return
		}
		bundle, err := export.Bundle(workbook, pie, bars)
		if err != nil {
			http.Error(w, "Failed to build bundle: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="reporte_control_caja.zip"`)
		w.Write(bundle.Bytes())
	}
}

// Handler: ExportarPDF
func ExportarPDF(store *dataset.Store, filters *filterstate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, session, ok := resolve(w, r)
		if !ok {
			return
		}
		st := sessionState(filters, session)

		if st.Modo != filterstate.ModoSinComparacion {
			exportarPDFComparacion(w, store, st)
			return
		}

		ds, err := store.Single()
		if err != nil {
			replyNoData(w, "No hay archivo cargado")
			return
		}
		v := computeVista(ds, st)
		if v.filtered.Empty() {
			replyNoData(w, "No hay datos para exportar")
			return
		}

		pie, err := export.RenderPie(v.pie)
		if err != nil && !errors.Is(err, export.ErrSinDatosGrafico) {
			http.Error(w, "Failed to render chart: "+err.Error(), http.StatusInternalServerError)
			return
		}
		bars, err := export.RenderBars(v.barras, "Resultados por grupo")
		if err != nil && !errors.Is(err, export.ErrSinDatosGrafico) {
			http.Error(w, "Failed to render chart: "+err.Error(), http.StatusInternalServerError)
			return
		}

		info := reportInfo(ds, st)
		pdf, err := export.ReportePDF(info, v.resumen, v.tabla, pie, bars)
		if err != nil {
			http.Error(w, "Failed to build PDF: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="reporte_ejecutivo.pdf"`)
		w.Write(pdf.Bytes())
	}
}

func exportarPDFComparacion(w http.ResponseWriter, store *dataset.Store, st *filterstate.State) {
	ds, err := store.Comparison()
	if err != nil {
		replyNoData(w, "No hay archivos de comparación cargados")
		return
	}
	filtered := filterengine.Apply(ds, st)
	if filtered.Empty() {
		replyNoData(w, "No hay datos para exportar")
		return
	}
	res := pivot.SummarizeComparison(filtered)
	tabla := pivot.AggregateComparison(filtered, pivot.GroupColumns(filtered, st), st)

	bars, err := export.RenderBars(pivot.BarSeriesComparison(filtered, st), "Ejecutado vs Proyectado")
	if err != nil && !errors.Is(err, export.ErrSinDatosGrafico) {
		http.Error(w, "Failed to render chart: "+err.Error(), http.StatusInternalServerError)
		return
	}

	info := reportInfo(ds, st)
	pdf, err := export.ReportePDFComparacion(info, res, tabla, bars)
	if err != nil {
		http.Error(w, "Failed to build PDF: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="reporte_comparativo.pdf"`)
	w.Write(pdf.Bytes())
}

func reportInfo(ds *dataset.Dataset, st *filterstate.State) export.ReportInfo {
	info := export.ReportInfo{GeneradoEn: time.Now().In(reportLocation())}
	if inicio, fin, ok := filterengine.EffectiveRange(ds, st); ok {
		info.RangoInicio = inicio
		info.RangoFin = fin
	}
	return info
}

func reportLocation() *time.Location {
	loc, err := time.LoadLocation(config.DefaultTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
