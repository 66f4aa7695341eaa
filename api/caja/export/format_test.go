package export

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatoMoneda(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "S/ 0.00"},
		{"5", "S/ 5.00"},
		{"1234.5", "S/ 1,234.50"},
		{"1234567.89", "S/ 1,234,567.89"},
		{"-1234.56", "S/ -1,234.56"},
		{"-0.5", "S/ -0.50"},
		{"999", "S/ 999.00"},
		{"1000", "S/ 1,000.00"},
	}
	for _, c := range cases {
		d, err := decimal.NewFromString(c.in)
		assert.NoError(t, err)
		assert.Equal(t, c.want, FormatoMoneda(d), "input %s", c.in)
	}
}

func TestFormatoPorcentaje(t *testing.T) {
	assert.Equal(t, "95.20 %", FormatoPorcentaje(decimal.NewFromFloat(95.2)))
	assert.Equal(t, "0.00 %", FormatoPorcentaje(decimal.Zero))
	assert.Equal(t, "-9.77 %", FormatoPorcentaje(decimal.NewFromFloat(-9.77)))
}

func TestTituloColumna(t *testing.T) {
	assert.Equal(t, "Clasificacion 1", TituloColumna("clasificacion_1"))
	assert.Equal(t, "Costo  Gasto", TituloColumna("costo__gasto"))
	assert.Equal(t, "Fecha", TituloColumna("fecha"))
}
