package reportes

import (
	"net/http"

	"ControlCajaSaas/api/auth"
	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/filterstate"
	"ControlCajaSaas/internal/logger"
)

// Handler: LimpiarDatos
// Deletes the saved workbooks and resets every session's filter state.
func LimpiarDatos(store *dataset.Store, filters *filterstate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, session, ok := resolve(w, r)
		if !ok {
			return
		}
		if session.Role != auth.RoleAdmin {
			http.Error(w, "only admin can clear saved data", http.StatusForbidden)
			return
		}
		if err := store.Clear(); err != nil {
			http.Error(w, "Failed to clear saved files: "+err.Error(), http.StatusInternalServerError)
			return
		}
		filters.ResetAll()

		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit("Saved workbooks cleared by " + session.Email)
		}
		replyJSON(w, map[string]interface{}{"success": true})
	}
}
