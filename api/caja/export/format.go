package export

import (
	"strings"

	"github.com/shopspring/decimal"

	"ControlCajaSaas/internal/config"
)

// FormatoMoneda renders an amount the way every surface shows it:
// "S/ 1,234.56". Negative amounts keep their sign after the prefix.
func FormatoMoneda(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := config.CurrencyPrefix + " "
	if neg {
		out += "-"
	}
	return out + b.String() + frac
}

// FormatoPorcentaje renders a completion/variance percentage: "95.20 %".
func FormatoPorcentaje(d decimal.Decimal) string {
	return d.StringFixed(2) + " %"
}

// TituloColumna turns a normalized column name back into a display heading:
// "clasificacion_1" becomes "Clasificacion 1".
func TituloColumna(col string) string {
	words := strings.Split(strings.ReplaceAll(col, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
