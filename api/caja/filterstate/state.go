package filterstate

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

// Sentinel value meaning "no restriction" for months and value selections.
const Todos = "Todos"

// Comparison grouping modes.
const (
	ModoSinComparacion = "Sin comparación"
	ModoPorDia         = "Por día"
	ModoPorMes         = "Por mes"
)

// Reserved URL keys. Any other key is a per-column value selection.
const (
	KeyColumnas    = "columnas"
	KeyMes         = "mes"
	KeyFechaInicio = "fecha_inicio"
	KeyFechaFin    = "fecha_fin"
	KeyModo        = "modo"
	KeyAgrupacion  = "agrupacion"
	KeyAgruparPor  = "agrupar_por"
	KeyEjecutivo   = "ejecutivo"
	KeyView        = "view"
)

const fechaLayout = "2006-01-02"

// State is one session's filter configuration. The in-memory State is the
// single source of truth; the URL encoding is a serialization of it, written
// after each mutation and read only when seeding a fresh session.
type State struct {
	// Columns currently enabled for filtering, in the order they were
	// enabled. The cascade applies them in this order.
	Columns []string
	// Selections maps an enabled column to its chosen values. A missing or
	// empty entry means "no restriction on that column".
	Selections map[string][]string
	Mes        string
	FechaInicio *time.Time
	FechaFin    *time.Time
	Modo       string
	// Agrupacion holds the one or two chart grouping columns.
	Agrupacion []string
	// Ejecutivo marks a view frozen through the shared URL (ejecutivo=1 or
	// view=1); it survives serialization, unlike role-based read-only.
	Ejecutivo bool

	// roleReadOnly freezes the state for lectura-role sessions. Set by the
	// store, never serialized.
	roleReadOnly bool
}

func New() *State {
	return &State{
		Selections: make(map[string][]string),
		Mes:        Todos,
		Modo:       ModoSinComparacion,
	}
}

// ReadOnly reports whether mutations are ignored, either because the session
// role is lectura or because the state came from an executive link.
func (s *State) ReadOnly() bool { return s.roleReadOnly || s.Ejecutivo }

// SetRoleReadOnly is set by the store from the session role.
func (s *State) SetRoleReadOnly(ro bool) { s.roleReadOnly = ro }

// SetColumns replaces the enabled filter columns, dropping selections for
// columns no longer enabled.
func (s *State) SetColumns(cols []string) {
	if s.ReadOnly() {
		return
	}
	s.Columns = append([]string(nil), cols...)
	for col := range s.Selections {
		if !s.hasColumn(col) {
			delete(s.Selections, col)
		}
	}
}

// SetSelection records the chosen values for a column. The Todos sentinel
// expands to the full available value set at selection time; it is never
// stored. Values outside available are discarded.
func (s *State) SetSelection(col string, values, available []string) {
	if s.ReadOnly() || !s.hasColumn(col) {
		return
	}
	for _, v := range values {
		if v == Todos {
			s.Selections[col] = append([]string(nil), available...)
			return
		}
	}
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if containsString(available, v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(s.Selections, col)
		return
	}
	s.Selections[col] = kept
}

// SetMes selects a month. Changing the month invalidates the explicit date
// range, since the picker bounds are recomputed from month-scoped data.
func (s *State) SetMes(mes string) {
	if s.ReadOnly() {
		return
	}
	if mes == "" {
		mes = Todos
	}
	if mes != s.Mes {
		s.FechaInicio = nil
		s.FechaFin = nil
	}
	s.Mes = mes
}

// SetRange sets the inclusive date range at day granularity.
func (s *State) SetRange(inicio, fin time.Time) {
	if s.ReadOnly() {
		return
	}
	i := inicio.Truncate(24 * time.Hour)
	f := fin.Truncate(24 * time.Hour)
	s.FechaInicio, s.FechaFin = &i, &f
}

// ClearRange drops the explicit date range, falling back to the picker
// bounds.
func (s *State) ClearRange() {
	if s.ReadOnly() {
		return
	}
	s.FechaInicio = nil
	s.FechaFin = nil
}

func (s *State) SetModo(modo string) {
	if s.ReadOnly() {
		return
	}
	switch modo {
	case ModoSinComparacion, ModoPorDia, ModoPorMes:
		s.Modo = modo
	}
}

// SetAgrupacion picks at most two chart grouping columns.
func (s *State) SetAgrupacion(cols []string) {
	if s.ReadOnly() {
		return
	}
	if len(cols) > 2 {
		cols = cols[:2]
	}
	s.Agrupacion = append([]string(nil), cols...)
}

// Reset restores the defaults. The role-based freeze stays, but the executive
// lock is lifted: a writable session that opened a shared link can always get
// its own filters back.
func (s *State) Reset() {
	if s.roleReadOnly {
		return
	}
	s.Columns = nil
	s.Selections = make(map[string][]string)
	s.Mes = Todos
	s.FechaInicio = nil
	s.FechaFin = nil
	s.Modo = ModoSinComparacion
	s.Agrupacion = nil
	s.Ejecutivo = false
}

// Clone returns a deep copy sharing no mutable storage.
func (s *State) Clone() *State {
	c := &State{
		Columns:      append([]string(nil), s.Columns...),
		Selections:   make(map[string][]string, len(s.Selections)),
		Mes:          s.Mes,
		Modo:         s.Modo,
		Agrupacion:   append([]string(nil), s.Agrupacion...),
		Ejecutivo:    s.Ejecutivo,
		roleReadOnly: s.roleReadOnly,
	}
	for col, vals := range s.Selections {
		c.Selections[col] = append([]string(nil), vals...)
	}
	if s.FechaInicio != nil {
		t := *s.FechaInicio
		c.FechaInicio = &t
	}
	if s.FechaFin != nil {
		t := *s.FechaFin
		c.FechaFin = &t
	}
	return c
}

// Values serializes the state for the shareable URL. Unset values, Todos and
// defaults are omitted so "unset" and "explicitly all" stay unambiguous and
// links stay short. Multi-value selections are comma-joined.
func (s *State) Values() url.Values {
	v := url.Values{}
	if len(s.Columns) > 0 {
		v.Set(KeyColumnas, strings.Join(s.Columns, ","))
	}
	for _, col := range s.Columns {
		if sel := s.Selections[col]; len(sel) > 0 {
			v.Set(col, strings.Join(sel, ","))
		}
	}
	if s.Mes != "" && s.Mes != Todos {
		v.Set(KeyMes, s.Mes)
	}
	if s.FechaInicio != nil && s.FechaFin != nil {
		v.Set(KeyFechaInicio, s.FechaInicio.Format(fechaLayout))
		v.Set(KeyFechaFin, s.FechaFin.Format(fechaLayout))
	}
	if s.Modo != "" && s.Modo != ModoSinComparacion {
		v.Set(KeyModo, s.Modo)
	}
	if len(s.Agrupacion) > 0 {
		v.Set(KeyAgrupacion, strings.Join(s.Agrupacion, ","))
	}
	if s.Ejecutivo {
		v.Set(KeyEjecutivo, "1")
	}
	return v
}

// FromValues reconstructs a State from its URL serialization. Garbled date
// values are dropped rather than failing; the engine clamps any surviving
// range to the data. ejecutivo=1 or view=1 forces read-only regardless of
// the session role.
func FromValues(v url.Values) *State {
	s := New()
	if cols := splitList(v.Get(KeyColumnas)); len(cols) > 0 {
		s.Columns = cols
	}
	for _, col := range s.Columns {
		if sel := splitList(v.Get(col)); len(sel) > 0 {
			s.Selections[col] = sel
		}
	}
	if mes := v.Get(KeyMes); mes != "" {
		s.Mes = mes
	}
	inicio, okI := parseFechaParam(v.Get(KeyFechaInicio))
	fin, okF := parseFechaParam(v.Get(KeyFechaFin))
	if okI && okF {
		if fin.Before(inicio) {
			inicio, fin = fin, inicio
		}
		s.FechaInicio, s.FechaFin = &inicio, &fin
	}
	if modo := v.Get(KeyModo); modo == ModoPorDia || modo == ModoPorMes {
		s.Modo = modo
	}
	agr := splitList(v.Get(KeyAgrupacion))
	if len(agr) == 0 {
		agr = splitList(v.Get(KeyAgruparPor))
	}
	if len(agr) > 2 {
		agr = agr[:2]
	}
	s.Agrupacion = agr
	if v.Get(KeyEjecutivo) == "1" || v.Get(KeyView) == "1" {
		s.Ejecutivo = true
	}
	return s
}

// Equal compares the serializable parts of two states.
func (s *State) Equal(o *State) bool {
	if !equalStrings(s.Columns, o.Columns) || s.Mes != o.Mes || s.Modo != o.Modo ||
		!equalStrings(s.Agrupacion, o.Agrupacion) || s.Ejecutivo != o.Ejecutivo {
		return false
	}
	if (s.FechaInicio == nil) != (o.FechaInicio == nil) || (s.FechaFin == nil) != (o.FechaFin == nil) {
		return false
	}
	if s.FechaInicio != nil && (!s.FechaInicio.Equal(*o.FechaInicio) || !s.FechaFin.Equal(*o.FechaFin)) {
		return false
	}
	if len(nonEmptySelections(s.Selections)) != len(nonEmptySelections(o.Selections)) {
		return false
	}
	for col, vals := range s.Selections {
		if len(vals) == 0 {
			continue
		}
		if !equalStrings(sortedCopy(vals), sortedCopy(o.Selections[col])) {
			return false
		}
	}
	return true
}

func (s *State) hasColumn(col string) bool { return containsString(s.Columns, col) }

func parseFechaParam(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(fechaLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func splitList(v string) []string {
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

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedCopy(a []string) []string {
	c := append([]string(nil), a...)
	sort.Strings(c)
	return c
}

func nonEmptySelections(m map[string][]string) map[string][]string {
	out := map[string][]string{}
	for k, v := range m {
		if len(v) > 0 {
			out[k] = v
		}
	}
	return out
}
