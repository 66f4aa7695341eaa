package export

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/filterstate"
	"ControlCajaSaas/api/caja/pivot"
)

func exportFixture(t *testing.T) (*dataset.Dataset, pivot.Resumen, *pivot.Tabla) {
	t.Helper()
	ds, err := dataset.Load(strings.NewReader(`Fecha,INGRESO/EGRESO,Costo / Gasto,Total General S/
2024-03-05,INGRESO,COSTO,1000.00
2024-03-10,EGRESO,GASTO,400.00
`), "f.csv")
	require.NoError(t, err)
	tabla := pivot.Aggregate(ds, []string{"costo__gasto", dataset.ColDireccion})
	return ds, pivot.Summarize(ds), tabla
}

func TestWorkbookSheets(t *testing.T) {
	_, res, tabla := exportFixture(t)

	buf, err := Workbook(res, tabla)
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Resumen", "Resultado_Filtrado"}, f.GetSheetList())

	// the spreadsheet keeps the signed egreso total; magnitude rendering is
	// the dashboard's and the PDF's concern
	egresos, err := f.GetCellValue("Resumen", "B3")
	require.NoError(t, err)
	assert.Equal(t, "S/ -400.00", egresos)

	saldo, err := f.GetCellValue("Resumen", "B4")
	require.NoError(t, err)
	assert.Equal(t, "S/ 600.00", saldo)

	rows, err := f.GetRows("Resultado_Filtrado")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "TOTAL", rows[0][len(rows[0])-1])
}

func TestWorkbookComparisonMonthColumn(t *testing.T) {
	ej := `Fecha,Clasificacion 1,Total General S/
2024-03-05,Ventas,1000.00
`
	pr := `Fecha,Clasificacion 1,Total General S/
2024-03-05,Ventas,1250.00
`
	ds, err := dataset.LoadComparison(strings.NewReader(ej), "ej.csv", strings.NewReader(pr), "pr.csv")
	require.NoError(t, err)

	st := filterstate.New()
	st.SetMes("Marzo")
	tabla := pivot.AggregateComparison(ds, []string{"clasificacion_1"}, st)
	res := pivot.SummarizeComparison(ds)

	buf, err := WorkbookComparison(res, tabla)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Resultado_Filtrado")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Mes Seleccionado", rows[0][0])
	assert.Equal(t, "Marzo", rows[1][0])
	assert.Equal(t, "% CUMP.", rows[0][len(rows[0])-1])
}

func TestRenderPie(t *testing.T) {
	slices := []pivot.PieSlice{
		{Nombre: "Ingresos", Monto: decimal.NewFromInt(1000)},
		{Nombre: "Egresos", Monto: decimal.NewFromInt(400)},
	}
	buf, err := RenderPie(slices)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", buf.String()[:4])
}

func TestRenderPieNoData(t *testing.T) {
	slices := []pivot.PieSlice{
		{Nombre: "Ingresos", Monto: decimal.Zero},
		{Nombre: "Egresos", Monto: decimal.Zero},
	}
	_, err := RenderPie(slices)
	assert.ErrorIs(t, err, ErrSinDatosGrafico)
}

func TestRenderBars(t *testing.T) {
	points := []pivot.BarPoint{
		{Etiqueta: "Ventas", Serie: dataset.DirIngreso, Total: decimal.NewFromInt(1000)},
		{Etiqueta: "Planilla", Faceta: "COSTO", Serie: dataset.DirEgreso, Total: decimal.NewFromInt(-400)},
	}
	buf, err := RenderBars(points, "Resultados")
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", buf.String()[:4])

	_, err = RenderBars(nil, "Resultados")
	assert.ErrorIs(t, err, ErrSinDatosGrafico)
}

func TestBundleEntries(t *testing.T) {
	_, res, tabla := exportFixture(t)
	wb, err := Workbook(res, tabla)
	require.NoError(t, err)
	pie, err := RenderPie(pivot.PieBreakdown(res))
	require.NoError(t, err)

	// nil bars simulates a chart with nothing to draw
	buf, err := Bundle(wb, pie, nil)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{BundleWorkbookName, BundlePieName}, names)
}

func TestReportePDF(t *testing.T) {
	_, res, tabla := exportFixture(t)
	pie, err := RenderPie(pivot.PieBreakdown(res))
	require.NoError(t, err)

	info := ReportInfo{
		GeneradoEn:  time.Date(2024, 4, 1, 10, 30, 0, 0, time.UTC),
		RangoInicio: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		RangoFin:    time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	buf, err := ReportePDF(info, res, tabla, pie, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestReportePDFComparacion(t *testing.T) {
	ds := comparacionPDFFixture(t)
	st := filterstate.New()
	tabla := pivot.AggregateComparison(ds, []string{"clasificacion_1"}, st)
	res := pivot.SummarizeComparison(ds)

	info := ReportInfo{GeneradoEn: time.Now()}
	buf, err := ReportePDFComparacion(info, res, tabla, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func comparacionPDFFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ej := `Fecha,Clasificacion 1,Total General S/
2024-03-05,Ventas,1000.00
`
	pr := `Fecha,Clasificacion 1,Total General S/
2024-03-05,Ventas,1250.00
`
	ds, err := dataset.LoadComparison(strings.NewReader(ej), "ej.csv", strings.NewReader(pr), "pr.csv")
	require.NoError(t, err)
	return ds
}
