package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"ControlCajaSaas/api/caja/pivot"
)

const (
	sheetResumen   = "Resumen"
	sheetResultado = "Resultado_Filtrado"
)

// Workbook builds the export spreadsheet: a summary sheet with the three
// headline metrics as currency strings, and the current aggregate table on a
// second sheet with the total column currency-formatted.
func Workbook(res pivot.Resumen, tabla *pivot.Tabla) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetResumen); err != nil {
		return nil, err
	}
	writeResumenSheet(f, res)

	if _, err := f.NewSheet(sheetResultado); err != nil {
		return nil, err
	}
	header := make([]interface{}, 0, len(tabla.Grupos)+1)
	for _, g := range tabla.Grupos {
		header = append(header, g)
	}
	header = append(header, "TOTAL")
	f.SetSheetRow(sheetResultado, "A1", &header)

	for i, fila := range tabla.Filas {
		row := make([]interface{}, 0, len(tabla.Grupos)+1)
		for _, g := range tabla.Grupos {
			row = append(row, fila.Claves[g])
		}
		row = append(row, FormatoMoneda(fila.Total))
		f.SetSheetRow(sheetResultado, fmt.Sprintf("A%d", i+2), &row)
	}

	return f.WriteToBuffer()
}

// WorkbookComparison is the comparison-mode variant: summary KPIs plus the
// pivoted table with the executed/projected/difference columns formatted.
func WorkbookComparison(res pivot.ResumenComparativo, tabla *pivot.TablaComparativa) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetResumen); err != nil {
		return nil, err
	}
	rows := [][]interface{}{
		{"Concepto", "Monto"},
		{"Ejecutado", FormatoMoneda(res.Ejecutado)},
		{"Proyectado", FormatoMoneda(res.Proyectado)},
		{"Diferencia", FormatoMoneda(res.Diferencia)},
		{"% CUMP.", FormatoPorcentaje(res.Cumplimiento)},
	}
	for i := range rows {
		f.SetSheetRow(sheetResumen, fmt.Sprintf("A%d", i+1), &rows[i])
	}

	if _, err := f.NewSheet(sheetResultado); err != nil {
		return nil, err
	}
	header := make([]interface{}, 0, len(tabla.Grupos)+5)
	if tabla.MesSeleccionado != "" {
		header = append(header, "Mes Seleccionado")
	}
	for _, g := range tabla.Grupos {
		header = append(header, g)
	}
	header = append(header, "Ejecutado", "Proyectado", "Diferencia", "% CUMP.")
	f.SetSheetRow(sheetResultado, "A1", &header)

	for i, fila := range tabla.Filas {
		row := make([]interface{}, 0, len(header))
		if tabla.MesSeleccionado != "" {
			row = append(row, tabla.MesSeleccionado)
		}
		for _, g := range tabla.Grupos {
			row = append(row, fila.Claves[g])
		}
		row = append(row,
			FormatoMoneda(fila.Ejecutado),
			FormatoMoneda(fila.Proyectado),
			FormatoMoneda(fila.Diferencia),
			FormatoPorcentaje(fila.Cumplimiento),
		)
		f.SetSheetRow(sheetResultado, fmt.Sprintf("A%d", i+2), &row)
	}

	return f.WriteToBuffer()
}

func writeResumenSheet(f *excelize.File, res pivot.Resumen) {
	rows := [][]interface{}{
		{"Concepto", "Monto"},
		{"Total Ingresos", FormatoMoneda(res.TotalIngresos)},
		{"Total Egresos", FormatoMoneda(res.TotalEgresos)},
		{"Saldo", FormatoMoneda(res.Saldo)},
	}
	for i := range rows {
		f.SetSheetRow(sheetResumen, fmt.Sprintf("A%d", i+1), &rows[i])
	}
}
