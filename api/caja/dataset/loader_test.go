package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Fecha":           "fecha",
		"Total General S/": "total_general_s",
		"Costo / Gasto":   "costo__gasto",
		"N° Documento":    "n_documento",
		"  INGRESO/EGRESO ": "ingresoegreso",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHeader(in), "input %q", in)
	}
}

func loadCSV(t *testing.T, csv string) *Dataset {
	t.Helper()
	ds, err := Load(strings.NewReader(csv), "control.csv")
	require.NoError(t, err)
	return ds
}

func TestLoadDerivedFields(t *testing.T) {
	ds := loadCSV(t, `Fecha,INGRESO/EGRESO,Costo / Gasto,Total General S/
2024-03-15,INGRESO,Ventas,"1,500.00"
2024-04-02,EGRESO,Planilla,400.50
`)
	require.Equal(t, 2, ds.Len())

	r := ds.Rows[0]
	assert.Equal(t, "2024-03", r.Fields[ColAnioMes])
	assert.Equal(t, "3", r.Fields[ColMesNum])
	assert.Equal(t, "Marzo", r.Fields[ColMesNombre])
	assert.Equal(t, "1500.00", r.Total.StringFixed(2))

	assert.True(t, ds.HasColumn(ColAnioMes))
	assert.True(t, ds.HasColumn(ColMesNombre))
	assert.Equal(t, []string{"Marzo", "Abril"}, ds.MonthsPresent())
}

func TestLoadNegatesOutflows(t *testing.T) {
	ds := loadCSV(t, `Fecha,INGRESO/EGRESO,Total General S/
2024-01-10,INGRESO,1000.00
2024-01-11,EGRESO,400.00
2024-01-12,EGRESO,-50.00
`)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, "1000.00", ds.Rows[0].Total.StringFixed(2))
	assert.Equal(t, "-400.00", ds.Rows[1].Total.StringFixed(2))
	// already negative stays as is
	assert.Equal(t, "-50.00", ds.Rows[2].Total.StringFixed(2))
}

func TestLoadMissingRequiredColumn(t *testing.T) {
	_, err := Load(strings.NewReader("Fecha,Detalle\n2024-01-01,x\n"), "c.csv")
	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "total_general_s", missing.Column)
	assert.Contains(t, missing.Error(), "falta la columna obligatoria")
}

func TestLoadMalformedAmountIsFatal(t *testing.T) {
	_, err := Load(strings.NewReader(`Fecha,Total General S/
2024-01-01,100.00
2024-01-02,abc
`), "c.csv")
	var malformed *MalformedAmountError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 3, malformed.RowNumber)
	assert.Equal(t, "abc", malformed.Value)
}

func TestLoadDropsUnparseableDates(t *testing.T) {
	ds := loadCSV(t, `Fecha,Total General S/
2024-01-01,100.00
no-es-fecha,200.00
,300.00
2024-01-04,400.00
`)
	assert.Equal(t, 2, ds.Len())
}

func TestLoadSkipsEmptyRecords(t *testing.T) {
	ds := loadCSV(t, `Fecha,Total General S/
2024-01-01,100.00
,
2024-01-03,300.00
`)
	assert.Equal(t, 2, ds.Len())
}

func TestParseFechaFormats(t *testing.T) {
	for _, s := range []string{"2024-05-20", "20/05/2024", "20-05-2024", "2024-05-20 13:45:00"} {
		got, ok := parseFecha(s)
		require.True(t, ok, "input %q", s)
		assert.Equal(t, "2024-05-20", got.Format("2006-01-02"))
	}

	// Excel serial: days since 1899-12-30
	got, ok := parseFecha("45432")
	require.True(t, ok)
	assert.Equal(t, "2024-05-20", got.Format("2006-01-02"))

	_, ok = parseFecha("mañana")
	assert.False(t, ok)
}

func TestParseMontoDecoration(t *testing.T) {
	d, err := ParseMonto(`S/ 1,234.56`)
	require.NoError(t, err)
	assert.Equal(t, "1234.56", d.StringFixed(2))

	_, err = ParseMonto("  ")
	assert.Error(t, err)
}

func TestLoadComparisonTagsSources(t *testing.T) {
	ej := `Fecha,INGRESO/EGRESO,Total General S/
2024-01-05,INGRESO,1000.00
`
	pr := `Fecha,INGRESO/EGRESO,Total General S/
2024-01-05,INGRESO,1200.00
2024-01-06,EGRESO,300.00
`
	ds, err := LoadComparison(strings.NewReader(ej), "ej.csv", strings.NewReader(pr), "pr.csv")
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
	assert.True(t, ds.HasColumn(ColTipo))
	assert.Equal(t, TipoEjecutado, ds.Rows[0].Fields[ColTipo])
	assert.Equal(t, TipoProyectado, ds.Rows[1].Fields[ColTipo])

	// the source tag is never offered as a filter
	assert.NotContains(t, ds.FilterableColumns(), ColTipo)
}

func TestDirectionNormalization(t *testing.T) {
	r := Row{Fields: map[string]string{ColDireccion: " ingreso "}}
	dir, known := r.Direction()
	assert.True(t, known)
	assert.Equal(t, DirIngreso, dir)

	r = Row{Fields: map[string]string{ColDireccion: "TRANSFERENCIA"}}
	_, known = r.Direction()
	assert.False(t, known)
}
