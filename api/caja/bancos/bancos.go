package bancos

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"ControlCajaSaas/api/auth"
	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/export"
)

// Sheet columns the per-bank summary needs, after header normalization.
const (
	colTipo  = "tipo"
	colMonto = "monto"
)

// ResumenHoja totals one worksheet. Egresos here is the raw outflow sum, so
// Saldo = Ingresos - Egresos, unlike the main dataset's signed convention.
type ResumenHoja struct {
	Hoja     string
	Ingresos decimal.Decimal
	Egresos  decimal.Decimal
	Saldo    decimal.Decimal
}

// Summarize totals every selected sheet of the workbook by its tipo column.
// An empty selection means all sheets. Sheets without both the tipo and
// monto columns are reported in omitidas instead of failing the whole file.
func Summarize(r io.Reader, hojas []string) (resumen []ResumenHoja, omitidas []string, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	wanted := map[string]bool{}
	for _, h := range hojas {
		if h = strings.TrimSpace(h); h != "" {
			wanted[h] = true
		}
	}

	for _, hoja := range f.GetSheetList() {
		if len(wanted) > 0 && !wanted[hoja] {
			continue
		}
		rows, err := f.GetRows(hoja)
		if err != nil {
			return nil, nil, err
		}
		res, ok := summarizeSheet(hoja, rows)
		if !ok {
			omitidas = append(omitidas, hoja)
			continue
		}
		resumen = append(resumen, res)
	}
	return resumen, omitidas, nil
}

func summarizeSheet(hoja string, rows [][]string) (ResumenHoja, bool) {
	if len(rows) == 0 {
		return ResumenHoja{}, false
	}
	tipoIdx, montoIdx := -1, -1
	for i, h := range rows[0] {
		switch dataset.NormalizeHeader(h) {
		case colTipo:
			tipoIdx = i
		case colMonto:
			montoIdx = i
		}
	}
	if tipoIdx < 0 || montoIdx < 0 {
		return ResumenHoja{}, false
	}

	res := ResumenHoja{Hoja: hoja, Ingresos: decimal.Zero, Egresos: decimal.Zero}
	for _, rec := range rows[1:] {
		if tipoIdx >= len(rec) || montoIdx >= len(rec) {
			continue
		}
		monto, err := dataset.ParseMonto(rec[montoIdx])
		if err != nil {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(rec[tipoIdx])) {
		case dataset.DirIngreso:
			res.Ingresos = res.Ingresos.Add(monto)
		case dataset.DirEgreso:
			res.Egresos = res.Egresos.Add(monto)
		}
	}
	res.Saldo = res.Ingresos.Sub(res.Egresos)
	return res, true
}

func readUpload(files []*multipart.FileHeader) ([]byte, string, error) {
	if len(files) == 0 {
		return nil, "", errors.New("no file uploaded")
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return buf, files[0].Filename, nil
}

// Handler: ResumenPorHojas
// Multi-sheet workbook analysis: one inflow/outflow/balance card per sheet
// plus the consolidated table. The upload is analyzed in place, never saved,
// so any active session may use it.
func ResumenPorHojas() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
			return
		}
		userID := r.FormValue("user_id")
		if userID == "" {
			http.Error(w, "user_id required in form", http.StatusBadRequest)
			return
		}
		var session *auth.UserSession
		for _, s := range auth.GetActiveSessions() {
			if s.UserID == userID {
				session = s
				break
			}
		}
		if session == nil {
			http.Error(w, "User not found in active sessions", http.StatusUnauthorized)
			return
		}

		buf, filename, err := readUpload(r.MultipartForm.File["file"])
		if err != nil {
			http.Error(w, "No files uploaded", http.StatusBadRequest)
			return
		}
		if strings.ToLower(filepath.Ext(filename)) != ".xlsx" {
			http.Error(w, "solo se aceptan archivos .xlsx", http.StatusBadRequest)
			return
		}

		hojas := splitHojas(r.FormValue("hojas"))
		resumen, omitidas, err := Summarize(bytes.NewReader(buf), hojas)
		if err != nil {
			http.Error(w, "Invalid or empty file: "+err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if len(resumen) == 0 {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":  false,
				"no_data":  true,
				"error":    "ninguna hoja contiene columnas 'tipo' y 'monto'",
				"omitidas": omitidas,
			})
			return
		}

		items := make([]map[string]interface{}, 0, len(resumen))
		for _, h := range resumen {
			items = append(items, map[string]interface{}{
				"hoja":     h.Hoja,
				"ingresos": export.FormatoMoneda(h.Ingresos),
				"egresos":  export.FormatoMoneda(h.Egresos),
				"saldo":    export.FormatoMoneda(h.Saldo),
			})
		}
		payload := map[string]interface{}{
			"success": true,
			"hojas":   items,
		}
		if len(omitidas) > 0 {
			payload["omitidas"] = omitidas
		}
		json.NewEncoder(w).Encode(payload)
	}
}

func splitHojas(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
