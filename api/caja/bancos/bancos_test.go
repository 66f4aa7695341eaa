package bancos

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookFixture(t *testing.T, sheets map[string][][]interface{}, order []string) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cellRef, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cellRef, &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func bancosFixture(t *testing.T) *bytes.Reader {
	return workbookFixture(t, map[string][][]interface{}{
		"BCP": {
			{"Fecha", "Tipo", "Monto"},
			{"2024-03-01", "INGRESO", 1000.00},
			{"2024-03-02", "EGRESO", 400.00},
		},
		"Interbank": {
			{" TIPO ", " Monto "},
			{"ingreso", "S/ 1,500.00"},
			{"EGRESO", "250.00"},
			{"EGRESO", "no-numerico"},
			{"TRANSFERENCIA", "999.00"},
		},
		"Notas": {
			{"Comentario"},
			{"sin columnas de movimiento"},
		},
	}, []string{"BCP", "Interbank", "Notas"})
}

func TestSummarizeTotalsPerSheet(t *testing.T) {
	resumen, omitidas, err := Summarize(bancosFixture(t), nil)
	require.NoError(t, err)
	require.Len(t, resumen, 2)

	bcp := resumen[0]
	assert.Equal(t, "BCP", bcp.Hoja)
	assert.Equal(t, "1000.00", bcp.Ingresos.StringFixed(2))
	assert.Equal(t, "400.00", bcp.Egresos.StringFixed(2))
	assert.Equal(t, "600.00", bcp.Saldo.StringFixed(2))

	// header padding, currency decoration and lowercase tipo all normalize;
	// unparseable montos and unknown tipos are excluded
	ibk := resumen[1]
	assert.Equal(t, "Interbank", ibk.Hoja)
	assert.Equal(t, "1500.00", ibk.Ingresos.StringFixed(2))
	assert.Equal(t, "250.00", ibk.Egresos.StringFixed(2))
	assert.Equal(t, "1250.00", ibk.Saldo.StringFixed(2))

	assert.Equal(t, []string{"Notas"}, omitidas)
}

func TestSummarizeSheetSelection(t *testing.T) {
	resumen, omitidas, err := Summarize(bancosFixture(t), []string{"Interbank"})
	require.NoError(t, err)
	require.Len(t, resumen, 1)
	assert.Equal(t, "Interbank", resumen[0].Hoja)
	assert.Empty(t, omitidas)
}

func TestSummarizeNoUsableSheets(t *testing.T) {
	r := workbookFixture(t, map[string][][]interface{}{
		"Notas": {{"Comentario"}, {"x"}},
	}, []string{"Notas"})

	resumen, omitidas, err := Summarize(r, nil)
	require.NoError(t, err)
	assert.Empty(t, resumen)
	assert.Equal(t, []string{"Notas"}, omitidas)
}

func TestSummarizeRejectsNonWorkbook(t *testing.T) {
	_, _, err := Summarize(bytes.NewReader([]byte("no es un xlsx")), nil)
	assert.Error(t, err)
}

func TestSplitHojas(t *testing.T) {
	assert.Nil(t, splitHojas(""))
	assert.Equal(t, []string{"BCP", "Interbank"}, splitHojas(" BCP , Interbank ,"))
}
