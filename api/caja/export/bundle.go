package export

import (
	"archive/zip"
	"bytes"
)

// File names inside the download bundle.
const (
	BundleWorkbookName = "control_caja.xlsx"
	BundlePieName      = "grafico_ingresos_egresos.png"
	BundleBarsName     = "grafico_resultados.png"
)

// Bundle packs the workbook and the rendered charts into a single zip.
// Nil chart buffers are skipped, matching charts that had nothing to draw.
func Bundle(workbook, pie, bars *bytes.Buffer) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := []struct {
		name string
		data *bytes.Buffer
	}{
		{BundleWorkbookName, workbook},
		{BundlePieName, pie},
		{BundleBarsName, bars},
	}
	for _, e := range entries {
		if e.data == nil {
			continue
		}
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(e.data.Bytes()); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}
