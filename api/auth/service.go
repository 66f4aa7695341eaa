package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ControlCajaSaas/internal/logger"
	"ControlCajaSaas/internal/serviceiface"
)

// Roles recognized by the reporting surface. Anything else a row in the
// roles table carries collapses to RoleLectura.
const (
	RoleAdmin    = "admin"
	RoleOperador = "operador"
	RoleLectura  = "lectura"
)

type UserSession struct {
	SessionID     string
	UserID        string
	Name          string
	Email         string
	Role          string
	LastLoginTime string
	ClientIP      string
	IsLoggedIn    bool
}

// ReadOnly reports whether the session's role forbids filter mutation.
func (s *UserSession) ReadOnly() bool {
	return s.Role == RoleLectura
}

// LoginHook runs after a successful login. prevSessionID is the session the
// client held before authenticating (may be empty) so per-session state can
// be carried across the role upgrade.
type LoginHook func(prevSessionID, newSessionID string)

type AuthService struct {
	db         *sql.DB
	maxUsers   int
	users      map[string]*UserSession
	loginHooks []LoginHook
	mu         sync.Mutex
	stopCh     chan struct{}
}

func NewAuthService(db *sql.DB, maxUsers int) serviceiface.Service {
	return &AuthService{
		db:       db,
		maxUsers: maxUsers,
		users:    make(map[string]*UserSession),
		stopCh:   make(chan struct{}),
	}
}

func (a *AuthService) Name() string { return "auth" }

func (a *AuthService) Start() error {
	go a.sessionCleaner()
	return nil
}

func (a *AuthService) Stop() error {
	close(a.stopCh)
	return nil
}

// OnLogin registers a hook fired after each successful login.
func (a *AuthService) OnLogin(h LoginHook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loginHooks = append(a.loginHooks, h)
}

func (a *AuthService) Login(username, password, clientIP, prevSessionID string) (*UserSession, error) {
	a.mu.Lock()

	for _, session := range a.users {
		if session.Email == username && session.IsLoggedIn {
			session.LastLoginTime = time.Now().Format(time.RFC3339)
			session.ClientIP = clientIP
			a.mu.Unlock()
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("User %s re-logged in, returning existing session", username))
			}
			return session, nil
		}
	}

	if len(a.users) >= a.maxUsers {
		a.mu.Unlock()
		return nil, errors.New("maximum concurrent users reached")
	}

	var (
		userID, name, email string
		roleName            sql.NullString
	)
	query := `
    SELECT
        u.id AS user_id,
        u.employee_name,
        u.email,
        r.name AS role_name
    FROM users u
    LEFT JOIN user_roles ur ON u.id = ur.user_id
    LEFT JOIN roles r ON ur.role_id = r.id
    WHERE u.email = $1 AND u.password = $2
    `
	err := a.db.QueryRow(query, username, password).Scan(&userID, &name, &email, &roleName)
	if err != nil {
		a.mu.Unlock()
		return nil, errors.New("invalid credentials or user not found")
	}

	session := &UserSession{
		SessionID:     uuid.New().String(),
		UserID:        userID,
		Name:          name,
		Email:         email,
		Role:          NormalizeRole(roleName.String),
		LastLoginTime: time.Now().Format(time.RFC3339),
		ClientIP:      clientIP,
		IsLoggedIn:    true,
	}
	a.users[session.SessionID] = session
	hooks := append([]LoginHook(nil), a.loginHooks...)
	a.mu.Unlock()

	for _, h := range hooks {
		h(prevSessionID, session.SessionID)
	}

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("User logged in: %s (role %s)", username, session.Role))
	}
	return session, nil
}

func (a *AuthService) Logout(sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, exists := a.users[sessionID]
	if !exists {
		return errors.New("session not found")
	}
	delete(a.users, sessionID)

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("User logged out: " + session.UserID)
	}
	return nil
}

// NormalizeRole maps whatever the roles table carries onto the three roles
// the dashboard understands.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdmin, "administrator":
		return RoleAdmin
	case RoleOperador, "operator":
		return RoleOperador
	default:
		return RoleLectura
	}
}

var globalAuthService *AuthService

// SetGlobalAuthService sets the global AuthService instance
func SetGlobalAuthService(svc *AuthService) {
	globalAuthService = svc
}

// GetActiveSessions returns active sessions from the global AuthService
func GetActiveSessions() []*UserSession {
	if globalAuthService == nil {
		return nil
	}
	return globalAuthService.GetActiveSessions()
}

// SessionByID resolves one active session from the global AuthService.
func SessionByID(sessionID string) (*UserSession, bool) {
	if globalAuthService == nil {
		return nil, false
	}
	globalAuthService.mu.Lock()
	defer globalAuthService.mu.Unlock()
	s, ok := globalAuthService.users[sessionID]
	return s, ok
}

func (a *AuthService) GetActiveSessions() []*UserSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	sessions := make([]*UserSession, 0, len(a.users))
	for _, s := range a.users {
		sessions = append(sessions, s)
	}
	return sessions
}

func (a *AuthService) sessionCleaner() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			a.expireStale(8 * time.Hour)
		}
	}
}

func (a *AuthService) expireStale(maxAge time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	for id, s := range a.users {
		last, err := time.Parse(time.RFC3339, s.LastLoginTime)
		if err != nil || last.Before(cutoff) {
			delete(a.users, id)
		}
	}
}
