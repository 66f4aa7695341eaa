package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"ControlCajaSaas/internal/config"
)

// NormalizeHeader folds a workbook header to its canonical field name:
// lower-case, spaces to underscores, slashes and ordinal marks stripped.
// "Costo / Gasto" and "costo__gasto" normalize to the same key.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "/", "")
	h = strings.ReplaceAll(h, "°", "")
	return h
}

func monthName(n int) string { return config.MonthNames[n] }

// Load reads one uploaded workbook into a Dataset. The extension of filename
// picks the parser (.xlsx, .xls, .csv). Rows with unparseable dates are
// excluded from the dataset entirely; they appear in no totals and no filter
// option lists.
func Load(r io.Reader, filename string) (*Dataset, error) {
	records, err := parseTabular(r, strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return nil, err
	}
	return build(records, "")
}

// LoadComparison reads the executed and projected workbooks, tags every row
// with its source, and concatenates executed-first.
func LoadComparison(ejecutado io.Reader, ejName string, proyectado io.Reader, prName string) (*Dataset, error) {
	dsEj, err := loadTagged(ejecutado, ejName, TipoEjecutado)
	if err != nil {
		return nil, fmt.Errorf("ejecutado: %w", err)
	}
	dsPr, err := loadTagged(proyectado, prName, TipoProyectado)
	if err != nil {
		return nil, fmt.Errorf("proyectado: %w", err)
	}
	return Concat(dsEj, dsPr), nil
}

func loadTagged(r io.Reader, filename, tipo string) (*Dataset, error) {
	records, err := parseTabular(r, strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return nil, err
	}
	return build(records, tipo)
}

// Concat joins two datasets over the union of their columns.
func Concat(a, b *Dataset) *Dataset {
	cols := append([]string{}, a.Columns...)
	for _, c := range b.Columns {
		if !containsString(cols, c) {
			cols = append(cols, c)
		}
	}
	rows := make([]Row, 0, len(a.Rows)+len(b.Rows))
	rows = append(rows, a.Rows...)
	rows = append(rows, b.Rows...)
	return &Dataset{Columns: cols, Rows: rows}
}

// parseTabular turns the upload into raw records, same dispatch the bank
// statement intake uses: excelize for .xlsx, extrame/xls for legacy .xls,
// encoding/csv otherwise.
func parseTabular(r io.Reader, ext string) ([][]string, error) {
	switch ext {
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		return f.GetRows(sheet)
	case ".xls":
		buf, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		wb, err := xls.OpenReader(bytes.NewReader(buf), "utf-8")
		if err != nil {
			return nil, err
		}
		if wb.NumSheets() == 0 {
			return nil, errors.New("xls sin hojas")
		}
		sheet := wb.GetSheet(0)
		if sheet == nil {
			return nil, errors.New("xls sin hojas")
		}
		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for i := 0; i <= int(sheet.MaxRow); i++ {
			row := sheet.Row(i)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			vals := make([]string, 0, row.LastCol())
			for j := row.FirstCol(); j < row.LastCol(); j++ {
				vals = append(vals, row.Col(j))
			}
			rows = append(rows, vals)
		}
		return rows, nil
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		return cr.ReadAll()
	}
	return nil, fmt.Errorf("tipo de archivo no soportado: %s", ext)
}

func build(records [][]string, tipo string) (*Dataset, error) {
	if len(records) < 1 {
		return nil, errors.New("archivo vacío")
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = NormalizeHeader(h)
	}
	colIdx := map[string]int{}
	for i, h := range header {
		if h != "" {
			colIdx[h] = i
		}
	}
	for _, required := range config.RequiredColumns {
		if _, ok := colIdx[required]; !ok {
			return nil, &MissingColumnError{Column: required}
		}
	}

	fechaIdx := colIdx[ColFecha]
	totalIdx := colIdx[ColTotal]

	columns := make([]string, 0, len(header)+4)
	for _, h := range header {
		if h != "" {
			columns = append(columns, h)
		}
	}
	columns = append(columns, ColAnioMes, ColMesNum, ColMesNombre)
	if tipo != "" {
		columns = append(columns, ColTipo)
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		if emptyRecord(rec) {
			continue
		}
		fecha, ok := parseFecha(cell(rec, fechaIdx))
		if !ok {
			// dropped: no parseable date
			continue
		}
		total, err := ParseMonto(cell(rec, totalIdx))
		if err != nil {
			return nil, &MalformedAmountError{RowNumber: i + 2, Value: cell(rec, totalIdx)}
		}

		fields := make(map[string]string, len(colIdx)+4)
		for name, idx := range colIdx {
			if name == ColFecha || name == ColTotal {
				continue
			}
			fields[name] = strings.TrimSpace(cell(rec, idx))
		}
		fields[ColAnioMes] = fecha.Format("2006-01")
		fields[ColMesNum] = strconv.Itoa(int(fecha.Month()))
		fields[ColMesNombre] = monthName(int(fecha.Month()))
		if tipo != "" {
			fields[ColTipo] = tipo
		}

		// Sign convention: outflows contribute non-positively, so the
		// balance is always inflow total plus outflow total.
		if dir, known := (Row{Fields: fields}).Direction(); known && dir == DirEgreso && total.IsPositive() {
			total = total.Neg()
		}

		rows = append(rows, Row{Fecha: fecha, Total: total, Fields: fields})
	}

	return &Dataset{Columns: columns, Rows: rows}, nil
}

func cell(rec []string, idx int) string {
	if idx < len(rec) {
		return rec[idx]
	}
	return ""
}

func emptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

var fechaLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"1/2/06 15:04",
	"01-02-06",
	time.RFC3339,
}

// parseFecha accepts the date renderings Excel exports produce, including
// raw serial numbers (days since 1899-12-30).
func parseFecha(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range fechaLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(serial)), true
	}
	return time.Time{}, false
}

// ParseMonto strips thousands separators and currency decoration before
// decimal conversion.
func ParseMonto(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, config.CurrencyPrefix)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("monto vacío")
	}
	return decimal.NewFromString(s)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
