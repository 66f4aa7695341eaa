package reportes

import (
	"encoding/json"
	"net/http"
	"net/url"

	"ControlCajaSaas/api/auth"
	"ControlCajaSaas/api/caja/filterstate"
)

// Peticion is the common POST body of the dashboard endpoints: the acting
// user plus optional filter params in their URL serialization (multi-values
// comma-joined, as Values() writes them).
type Peticion struct {
	UserID string            `json:"user_id"`
	Params map[string]string `json:"params"`
}

func (p *Peticion) urlValues() url.Values {
	v := url.Values{}
	for k, val := range p.Params {
		v.Set(k, val)
	}
	return v
}

// resolve decodes the request body and matches user_id against the active
// sessions, the way every vertical gates its handlers.
func resolve(w http.ResponseWriter, r *http.Request) (*Peticion, *auth.UserSession, bool) {
	var req Peticion
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "user_id required in body", http.StatusBadRequest)
		return nil, nil, false
	}
	for _, s := range auth.GetActiveSessions() {
		if s.UserID == req.UserID {
			return &req, s, true
		}
	}
	http.Error(w, "User not found in active sessions", http.StatusUnauthorized)
	return nil, nil, false
}

// sessionState fetches the caller's filter state with the role flag applied.
func sessionState(filters *filterstate.Store, session *auth.UserSession) *filterstate.State {
	return filters.Get(session.SessionID, session.ReadOnly())
}

func replyJSON(w http.ResponseWriter, payload map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func replyNoData(w http.ResponseWriter, mensaje string) {
	replyJSON(w, map[string]interface{}{
		"success": false,
		"no_data": true,
		"error":   mensaje,
	})
}
