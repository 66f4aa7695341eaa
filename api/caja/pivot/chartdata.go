package pivot

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/filterstate"
)

// PieSlice is one share of the inflow/outflow donut. Outflows are shown as
// magnitudes; the sign convention only matters for the balance.
type PieSlice struct {
	Nombre string
	Monto  decimal.Decimal
}

// PieBreakdown derives the two-slice inflow/outflow share chart.
func PieBreakdown(res Resumen) []PieSlice {
	return []PieSlice{
		{Nombre: "Ingresos", Monto: res.TotalIngresos},
		{Nombre: "Egresos", Monto: res.TotalEgresos.Abs()},
	}
}

// BarPoint is one bar of the grouped chart: a primary label, an optional
// facet (second grouping column), and the series it belongs to (direction,
// or source tag in comparison mode).
type BarPoint struct {
	Etiqueta string
	Faceta   string
	Serie    string
	Total    decimal.Decimal
}

// BarSeries groups the filtered dataset by one or two chart columns crossed
// with direction. With no usable grouping columns the result is empty and
// the chart is skipped.
func BarSeries(filtered *dataset.Dataset, ejes []string) []BarPoint {
	if len(ejes) == 0 {
		return nil
	}
	if len(ejes) > 2 {
		ejes = ejes[:2]
	}
	serie := func(r dataset.Row) string {
		dir, _ := r.Direction()
		return dir
	}
	return groupPoints(filtered, ejes, serie)
}

// BarSeriesComparison groups by the comparison bucket (fecha by day,
// anio_mes otherwise) with one series per source tag.
func BarSeriesComparison(filtered *dataset.Dataset, st *filterstate.State) []BarPoint {
	eje := dataset.ColAnioMes
	if st.Modo == filterstate.ModoPorDia {
		eje = dataset.ColFecha
	}
	serie := func(r dataset.Row) string { return r.Fields[dataset.ColTipo] }
	return groupPoints(filtered, []string{eje}, serie)
}

func groupPoints(filtered *dataset.Dataset, ejes []string, serie func(dataset.Row) string) []BarPoint {
	type key struct {
		etiqueta, faceta, serie string
	}
	totals := map[key]decimal.Decimal{}
	for _, r := range filtered.Rows {
		k := key{etiqueta: r.Get(ejes[0]), serie: serie(r)}
		if len(ejes) == 2 {
			k.faceta = r.Get(ejes[1])
		}
		totals[k] = totals[k].Add(r.Total)
	}
	out := make([]BarPoint, 0, len(totals))
	for k, total := range totals {
		out = append(out, BarPoint{Etiqueta: k.etiqueta, Faceta: k.faceta, Serie: k.serie, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		a := strings.Join([]string{out[i].Faceta, out[i].Etiqueta, out[i].Serie}, "\x1f")
		b := strings.Join([]string{out[j].Faceta, out[j].Etiqueta, out[j].Serie}, "\x1f")
		return a < b
	})
	return out
}
