package dataset

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ControlCajaSaas/internal/config"
)

// Normalized field names every loaded workbook carries.
const (
	ColFecha     = "fecha"
	ColTotal     = "total_general_s"
	ColDireccion = "ingresoegreso"
	ColAnioMes   = "anio_mes"
	ColMesNum    = "mes_num"
	ColMesNombre = "mes_nombre"
	ColTipo      = "tipo_archivo"
)

// Direction values for ColDireccion (matched case-insensitively).
const (
	DirIngreso = "INGRESO"
	DirEgreso  = "EGRESO"
)

// Source tags for comparison datasets.
const (
	TipoEjecutado  = "Ejecutado"
	TipoProyectado = "Proyectado"
)

// Row is one transaction. Fecha and Total are typed; every other column,
// including the derived ones, lives in Fields as a string.
type Row struct {
	Fecha  time.Time
	Total  decimal.Decimal
	Fields map[string]string
}

// Get returns the row's value for a normalized column name. The typed
// columns are rendered the same way they appear in aggregate keys.
func (r Row) Get(col string) string {
	switch col {
	case ColFecha:
		return r.Fecha.Format("2006-01-02")
	case ColTotal:
		return r.Total.StringFixed(2)
	}
	return r.Fields[col]
}

// Direction reports the row's normalized direction and whether it is one of
// the two recognized values.
func (r Row) Direction() (string, bool) {
	d := strings.ToUpper(strings.TrimSpace(r.Fields[ColDireccion]))
	if d == DirIngreso || d == DirEgreso {
		return d, true
	}
	return d, false
}

// Dataset is an immutable ordered collection of rows. Filtering produces new
// Dataset values sharing row storage; rows are never mutated after load.
type Dataset struct {
	Columns []string
	Rows    []Row
}

func (ds *Dataset) Len() int { return len(ds.Rows) }

func (ds *Dataset) Empty() bool { return len(ds.Rows) == 0 }

func (ds *Dataset) HasColumn(name string) bool {
	for _, c := range ds.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// FilterableColumns lists the columns a user may filter by. The amount and
// the year-month bucket are never offered; in comparison datasets the source
// tag is excluded as well so the two files always stay side by side.
func (ds *Dataset) FilterableColumns() []string {
	out := make([]string, 0, len(ds.Columns))
	for _, c := range ds.Columns {
		if c == ColTotal || c == ColAnioMes || c == ColTipo {
			continue
		}
		out = append(out, c)
	}
	return out
}

// MinMaxFecha returns the inclusive date bounds of the dataset.
func (ds *Dataset) MinMaxFecha() (time.Time, time.Time, bool) {
	if ds.Empty() {
		return time.Time{}, time.Time{}, false
	}
	min, max := ds.Rows[0].Fecha, ds.Rows[0].Fecha
	for _, r := range ds.Rows[1:] {
		if r.Fecha.Before(min) {
			min = r.Fecha
		}
		if r.Fecha.After(max) {
			max = r.Fecha
		}
	}
	return min, max, true
}

// MonthsPresent returns the distinct Spanish month names in calendar order.
func (ds *Dataset) MonthsPresent() []string {
	seen := map[string]bool{}
	for _, r := range ds.Rows {
		if m := r.Fields[ColMesNombre]; m != "" {
			seen[m] = true
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return config.MonthOrder(out[i]) < config.MonthOrder(out[j])
	})
	return out
}

// MissingColumnError reports a required column absent after normalization.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("falta la columna obligatoria: %s", e.Column)
}

// MalformedAmountError reports a non-numeric amount cell.
type MalformedAmountError struct {
	RowNumber int
	Value     string
}

func (e *MalformedAmountError) Error() string {
	return fmt.Sprintf("monto no numérico en la fila %d: %q", e.RowNumber, e.Value)
}
