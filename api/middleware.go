package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"ControlCajaSaas/api/auth"
	"ControlCajaSaas/api/constants"
)

type contextKey string

const SessionKey contextKey = "session"

// GetSessionFromCtx returns the session attached by SessionValidationMiddleware.
func GetSessionFromCtx(ctx context.Context) *auth.UserSession {
	if session, ok := ctx.Value(SessionKey).(*auth.UserSession); ok {
		return session
	}
	return nil
}

// SessionValidationMiddleware rejects requests whose user_id does not match
// an active session, and attaches the session to the request context. The
// body is re-buffered so downstream handlers can decode it again.
func SessionValidationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var userID string
		ct := r.Header.Get(constants.ContentTypeText)
		if strings.HasPrefix(ct, constants.ContentTypeJSON) && (r.Method == "POST" || r.Method == "PUT") {
			bodyBytes, err := io.ReadAll(r.Body)
			if err == nil && len(bodyBytes) > 0 {
				var bodyMap map[string]interface{}
				if err := json.Unmarshal(bodyBytes, &bodyMap); err == nil {
					if uid, ok := bodyMap[constants.KeyUserID].(string); ok {
						userID = uid
					}
				}
			}
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		} else if strings.HasPrefix(ct, constants.ContentTypeMultipart) && (r.Method == "POST" || r.Method == "PUT") {
			if err := r.ParseMultipartForm(32 << 20); err == nil {
				userID = r.FormValue(constants.KeyUserID)
			}
		} else {
			// GET routes (shared view links) pass through unauthenticated.
			next.ServeHTTP(w, r)
			return
		}

		if userID == "" {
			log.Println("[ERROR] Missing user_id in request")
			RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
			return
		}

		var session *auth.UserSession
		for _, s := range auth.GetActiveSessions() {
			if s.UserID == userID {
				session = s
				break
			}
		}
		if session == nil {
			log.Println("[ERROR] Invalid session for user_id:", userID)
			RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}

		ctx := context.WithValue(r.Context(), SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
