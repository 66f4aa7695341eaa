package pivot

import (
	"github.com/shopspring/decimal"

	"ControlCajaSaas/api/caja/dataset"
)

// Resumen holds the headline metrics of a filtered dataset. TotalEgresos is
// non-positive under the load-time sign convention, so Saldo is always the
// plain sum of the two totals.
type Resumen struct {
	TotalIngresos decimal.Decimal
	TotalEgresos  decimal.Decimal
	Saldo         decimal.Decimal
}

// Summarize splits the filtered dataset's amounts by direction. Every row
// with a recognized direction lands in exactly one of the two totals; rows
// with an unrecognized direction value are excluded from both.
func Summarize(filtered *dataset.Dataset) Resumen {
	res := Resumen{
		TotalIngresos: decimal.Zero,
		TotalEgresos:  decimal.Zero,
	}
	for _, r := range filtered.Rows {
		dir, known := r.Direction()
		if !known {
			continue
		}
		if dir == dataset.DirIngreso {
			res.TotalIngresos = res.TotalIngresos.Add(r.Total)
		} else {
			res.TotalEgresos = res.TotalEgresos.Add(r.Total)
		}
	}
	res.Saldo = res.TotalIngresos.Add(res.TotalEgresos)
	return res
}

// ResumenComparativo holds the comparison-mode KPIs.
type ResumenComparativo struct {
	Ejecutado    decimal.Decimal
	Proyectado   decimal.Decimal
	Diferencia   decimal.Decimal
	Variacion    decimal.Decimal
	Cumplimiento decimal.Decimal
}

// SummarizeComparison totals the executed and projected sides and derives
// the variance and completion percentages. Both percentages are defined as
// 0 when the projected total is 0.
func SummarizeComparison(filtered *dataset.Dataset) ResumenComparativo {
	res := ResumenComparativo{
		Ejecutado:  decimal.Zero,
		Proyectado: decimal.Zero,
	}
	for _, r := range filtered.Rows {
		switch r.Fields[dataset.ColTipo] {
		case dataset.TipoEjecutado:
			res.Ejecutado = res.Ejecutado.Add(r.Total)
		case dataset.TipoProyectado:
			res.Proyectado = res.Proyectado.Add(r.Total)
		}
	}
	res.Diferencia = res.Ejecutado.Sub(res.Proyectado)
	if res.Proyectado.IsZero() {
		res.Variacion = decimal.Zero
		res.Cumplimiento = decimal.Zero
	} else {
		res.Variacion = res.Diferencia.Div(res.Proyectado).Mul(cien)
		res.Cumplimiento = res.Ejecutado.Div(res.Proyectado).Mul(cien)
	}
	return res
}
