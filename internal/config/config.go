package config

const (
	DefaultTimeZone = "America/Lima"
	CurrencyPrefix  = "S/"

	// Data directory for persisted workbooks. Saved files keep the upload's
	// extension so reloads dispatch to the right parser.
	DefaultDataDir     = "data"
	SingleWorkbookBase = "control_caja"
	ExecutedBase       = "ejecutado"
	ProjectedBase      = "proyectado"

	// Cleanup Job Constants
	DefaultCleanupSchedule = "*/10 * * * *"
	ExportRetentionHours   = 24
)

// Required normalized columns for every uploaded workbook
var RequiredColumns = []string{"fecha", "total_general_s"}

// Filter columns pre-enabled when no URL state is present
var DefaultFilterColumns = []string{"costo__gasto", "clasificacion_1", "clasificacion_flujo2"}

// Spanish month names, indexed by calendar month number
var MonthNames = map[int]string{
	1: "Enero", 2: "Febrero", 3: "Marzo", 4: "Abril",
	5: "Mayo", 6: "Junio", 7: "Julio", 8: "Agosto",
	9: "Septiembre", 10: "Octubre", 11: "Noviembre", 12: "Diciembre",
}

// MonthOrder returns the calendar position of a Spanish month name, or 0.
func MonthOrder(name string) int {
	for n, m := range MonthNames {
		if m == name {
			return n
		}
	}
	return 0
}
