package vistas

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"ControlCajaSaas/api/auth"
	"ControlCajaSaas/api/caja/filterstate"
)

// Handler: GuardarVista
// Persists the caller's current filter serialization as a shareable view.
// The stored params are frozen with view=1 so anyone opening the link gets
// a read-only state.
func GuardarVista(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID string `json:"user_id"`
			Nombre string `json:"nombre"`
			Params string `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			http.Error(w, "user_id required in body", http.StatusBadRequest)
			return
		}
		var session *auth.UserSession
		for _, s := range auth.GetActiveSessions() {
			if s.UserID == req.UserID {
				session = s
				break
			}
		}
		if session == nil {
			http.Error(w, "User not found in active sessions", http.StatusUnauthorized)
			return
		}
		if pool == nil {
			http.Error(w, "saved views storage not configured", http.StatusServiceUnavailable)
			return
		}

		params, err := url.ParseQuery(req.Params)
		if err != nil {
			http.Error(w, "invalid params", http.StatusBadRequest)
			return
		}
		params.Set(filterstate.KeyView, "1")

		id := uuid.New().String()
		_, err = pool.Exec(ctx,
			`INSERT INTO caja_vistas (id, nombre, params, creado_por, creado_en) VALUES ($1, $2, $3, $4, $5)`,
			id, req.Nombre, params.Encode(), session.Email, time.Now(),
		)
		if err != nil {
			http.Error(w, "Failed to save view: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"vista_id": id,
			"url":      params.Encode(),
		})
	}
}

// Handler: AplicarVista
// Replaces the caller's filter state with a saved view's params. The view=1
// flag stored with the view keeps the adopted state read-only.
func AplicarVista(pool *pgxpool.Pool, filters *filterstate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID  string `json:"user_id"`
			VistaID string `json:"vista_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			http.Error(w, "user_id required in body", http.StatusBadRequest)
			return
		}
		if req.VistaID == "" {
			http.Error(w, "vista_id required", http.StatusBadRequest)
			return
		}
		var session *auth.UserSession
		for _, s := range auth.GetActiveSessions() {
			if s.UserID == req.UserID {
				session = s
				break
			}
		}
		if session == nil {
			http.Error(w, "User not found in active sessions", http.StatusUnauthorized)
			return
		}
		if pool == nil {
			http.Error(w, "saved views storage not configured", http.StatusServiceUnavailable)
			return
		}

		var raw string
		err := pool.QueryRow(ctx,
			`SELECT params FROM caja_vistas WHERE id = $1`, req.VistaID,
		).Scan(&raw)
		if err != nil {
			http.Error(w, "view not found", http.StatusNotFound)
			return
		}
		params, err := url.ParseQuery(raw)
		if err != nil {
			http.Error(w, "stored view is corrupted", http.StatusInternalServerError)
			return
		}

		st := filterstate.FromValues(params)
		filters.Seed(session.SessionID, st, session.ReadOnly())

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"vista_id":  req.VistaID,
			"read_only": st.ReadOnly(),
			"url":       st.Values().Encode(),
		})
	}
}

// Handler: ObtenerVista
// Public by design: the share link works without a session, the read-only
// flag in the stored params does the gating.
func ObtenerVista(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := r.PathValue("id")
		if id == "" {
			http.Error(w, "view id required", http.StatusBadRequest)
			return
		}
		if pool == nil {
			http.Error(w, "saved views storage not configured", http.StatusServiceUnavailable)
			return
		}

		var nombre, params string
		var creadoEn time.Time
		err := pool.QueryRow(ctx,
			`SELECT nombre, params, creado_en FROM caja_vistas WHERE id = $1`, id,
		).Scan(&nombre, &params, &creadoEn)
		if err != nil {
			http.Error(w, "view not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"vista_id":  id,
			"nombre":    nombre,
			"params":    params,
			"creado_en": creadoEn.Format(time.RFC3339),
		})
	}
}
