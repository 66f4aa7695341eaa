package export

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"

	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/pivot"
)

const pdfPageWidth = 190.0 // A4 portrait minus default margins

// ReportInfo carries the header metadata for the executive report.
type ReportInfo struct {
	GeneradoEn  time.Time
	RangoInicio time.Time
	RangoFin    time.Time
}

// ReportePDF renders the single-source executive report: headline metrics,
// both charts and the aggregated table, with outflow rows in red and the
// rest in green. Chart buffers may be nil when there was nothing to draw.
func ReportePDF(info ReportInfo, res pivot.Resumen, tabla *pivot.Tabla, pie, bars *bytes.Buffer) (*bytes.Buffer, error) {
	pdf, tr := newReport(info)

	writeKPIs(pdf, tr, [][2]string{
		{"Total Ingresos", FormatoMoneda(res.TotalIngresos)},
		{"Total Egresos", FormatoMoneda(res.TotalEgresos.Abs())},
		{"Saldo", FormatoMoneda(res.Saldo)},
	})
	writeChart(pdf, "pie", pie)
	writeChart(pdf, "bars", bars)

	header := make([]string, 0, len(tabla.Grupos)+1)
	for _, g := range tabla.Grupos {
		header = append(header, TituloColumna(g))
	}
	header = append(header, "TOTAL")

	rows := make([][]string, 0, len(tabla.Filas))
	egreso := make([]bool, 0, len(tabla.Filas))
	for _, fila := range tabla.Filas {
		row := make([]string, 0, len(header))
		for _, g := range tabla.Grupos {
			row = append(row, fila.Claves[g])
		}
		row = append(row, FormatoMoneda(fila.Total))
		rows = append(rows, row)
		egreso = append(egreso, fila.Claves[dataset.ColDireccion] == dataset.DirEgreso)
	}
	writeTable(pdf, tr, header, rows, egreso)

	return finishReport(pdf)
}

// ReportePDFComparacion is the comparison-mode report with the executed,
// projected, difference and completion columns.
func ReportePDFComparacion(info ReportInfo, res pivot.ResumenComparativo, tabla *pivot.TablaComparativa, bars *bytes.Buffer) (*bytes.Buffer, error) {
	pdf, tr := newReport(info)

	writeKPIs(pdf, tr, [][2]string{
		{"Ejecutado", FormatoMoneda(res.Ejecutado)},
		{"Proyectado", FormatoMoneda(res.Proyectado)},
		{"Diferencia", FormatoMoneda(res.Diferencia)},
		{"% CUMP.", FormatoPorcentaje(res.Cumplimiento)},
	})
	writeChart(pdf, "bars", bars)

	header := make([]string, 0, len(tabla.Grupos)+4)
	for _, g := range tabla.Grupos {
		header = append(header, TituloColumna(g))
	}
	header = append(header, "Ejecutado", "Proyectado", "Diferencia", "% CUMP.")

	rows := make([][]string, 0, len(tabla.Filas))
	egreso := make([]bool, 0, len(tabla.Filas))
	for _, fila := range tabla.Filas {
		row := make([]string, 0, len(header))
		for _, g := range tabla.Grupos {
			row = append(row, fila.Claves[g])
		}
		row = append(row,
			FormatoMoneda(fila.Ejecutado),
			FormatoMoneda(fila.Proyectado),
			FormatoMoneda(fila.Diferencia),
			FormatoPorcentaje(fila.Cumplimiento),
		)
		rows = append(rows, row)
		egreso = append(egreso, fila.Claves[dataset.ColDireccion] == dataset.DirEgreso)
	}
	writeTable(pdf, tr, header, rows, egreso)

	return finishReport(pdf)
}

func newReport(info ReportInfo) (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(pdfPageWidth, 10, tr("Reporte Ejecutivo - Control de Caja"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(pdfPageWidth, 5, "Generado: "+info.GeneradoEn.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	if !info.RangoInicio.IsZero() && !info.RangoFin.IsZero() {
		rango := info.RangoInicio.Format("02/01/2006") + " - " + info.RangoFin.Format("02/01/2006")
		pdf.CellFormat(pdfPageWidth, 5, tr("Período analizado: ")+rango, "", 1, "C", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
	return pdf, tr
}

func writeKPIs(pdf *fpdf.Fpdf, tr func(string) string, kpis [][2]string) {
	w := pdfPageWidth / float64(len(kpis))
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 240, 245)
	for _, kpi := range kpis {
		pdf.CellFormat(w, 7, tr(kpi[0]), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, kpi := range kpis {
		pdf.CellFormat(w, 8, tr(kpi[1]), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.Ln(5)
}

func writeChart(pdf *fpdf.Fpdf, name string, img *bytes.Buffer) {
	if img == nil {
		return
	}
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Bytes()))
	pdf.ImageOptions(name, 30, pdf.GetY(), 150, 0, true, opts, 0, "")
	pdf.Ln(4)
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, header []string, rows [][]string, egreso []bool) {
	w := pdfPageWidth / float64(len(header))
	size := 8.0
	if len(header) > 6 {
		size = 6.5
	}

	pdf.SetFont("Helvetica", "B", size)
	pdf.SetFillColor(80, 149, 180)
	pdf.SetTextColor(255, 255, 255)
	for _, h := range header {
		pdf.CellFormat(w, 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", size)
	for i, row := range rows {
		if egreso[i] {
			pdf.SetTextColor(190, 35, 35)
		} else {
			pdf.SetTextColor(38, 145, 97)
		}
		for _, cell := range row {
			pdf.CellFormat(w, 6, tr(cell), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetTextColor(0, 0, 0)
}

func finishReport(pdf *fpdf.Fpdf) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
