package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"ControlCajaSaas/api/caja/pivot"
)

// Chart palette shared with the PDF report.
const (
	HexIngreso = "5095B4"
	HexEgreso  = "BE2323"
)

// ErrSinDatosGrafico is returned when a chart has nothing to draw, so the
// caller can skip the image instead of shipping an empty PNG.
var ErrSinDatosGrafico = errors.New("no hay datos para graficar")

// RenderPie draws the inflow/outflow share donut as a PNG.
func RenderPie(slices []pivot.PieSlice) (*bytes.Buffer, error) {
	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		v, _ := s.Monto.Abs().Float64()
		if v == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%s)", s.Nombre, FormatoMoneda(s.Monto)),
			Value: v,
			Style: chart.Style{FillColor: colorForSerie(s.Nombre)},
		})
	}
	if len(values) == 0 {
		return nil, ErrSinDatosGrafico
	}
	pie := chart.PieChart{
		Title:  "Ingresos vs Egresos",
		Width:  640,
		Height: 480,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

// RenderBars draws the grouped result chart. Each point becomes one bar,
// labeled with its group key and colored by series; facets are folded into
// the label since the renderer draws a single axis.
func RenderBars(points []pivot.BarPoint, titulo string) (*bytes.Buffer, error) {
	bars := make([]chart.Value, 0, len(points))
	for _, p := range points {
		v, _ := p.Total.Abs().Float64()
		if v == 0 {
			continue
		}
		label := p.Etiqueta
		if p.Faceta != "" {
			label = p.Faceta + " / " + label
		}
		bars = append(bars, chart.Value{
			Label: label,
			Value: v,
			Style: chart.Style{FillColor: colorForSerie(p.Serie)},
		})
	}
	if len(bars) == 0 {
		return nil, ErrSinDatosGrafico
	}
	graph := chart.BarChart{
		Title:    titulo,
		Width:    barChartWidth(len(bars)),
		Height:   480,
		BarWidth: 40,
		XAxis:    chart.Style{TextRotationDegrees: 45},
		Bars:     bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

func colorForSerie(serie string) drawing.Color {
	switch serie {
	case "EGRESO", "Egresos", "Proyectado":
		return drawing.ColorFromHex(HexEgreso)
	default:
		return drawing.ColorFromHex(HexIngreso)
	}
}

func barChartWidth(n int) int {
	w := n * 60
	if w < 640 {
		return 640
	}
	if w > 1600 {
		return 1600
	}
	return w
}
