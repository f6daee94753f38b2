package admin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const sessionCookieName = "admin_session"

const defaultSessionTimeout = 24 * time.Hour

// Session is one logged-in admin browser.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore holds admin sessions in memory. Sessions do not survive a
// restart; the admin logs in again.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	timeout  time.Duration
}

// NewSessionStore creates a session store. A zero timeout selects the
// 24-hour default.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout == 0 {
		timeout = defaultSessionTimeout
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
	}
}

// CreateSession mints a session with a 64-hex-char random ID.
func (s *SessionStore) CreateSession(ctx context.Context) (*Session, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		ID:        hex.EncodeToString(b),
		CreatedAt: now,
		ExpiresAt: now.Add(s.timeout),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session, nil
}

// GetSession looks up a live session. Expired sessions are deleted on
// sight and reported as absent.
func (s *SessionStore) GetSession(ctx context.Context, id string) (*Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(session.ExpiresAt) {
		s.DeleteSession(ctx, id)
		return nil, false
	}
	return session, true
}

// DeleteSession removes a session.
func (s *SessionStore) DeleteSession(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Cleanup reaps expired sessions.
func (s *SessionStore) Cleanup(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}

type sessionIDKey struct{}

// WithSessionID stores the session ID in the context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// GetSessionID retrieves the session ID from the context.
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(string)
	return id, ok
}

// HandleLogin checks the submitted password against the configured bcrypt
// hash and, on a match, issues a session cookie and redirects to the
// dashboard.
// POST /admin/login
// Form data: password=<value>
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	if len(h.passwordHash) == 0 {
		h.logger.Error("admin password hash not configured")
		http.Error(w, "Server configuration error", http.StatusInternalServerError)
		return
	}

	password := r.FormValue("password")
	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(password)); err != nil {
		h.logger.Warn("failed login attempt", "remote_addr", r.RemoteAddr)
		http.Error(w, "Invalid password", http.StatusUnauthorized)
		return
	}

	session, err := h.sessionStore.CreateSession(r.Context())
	if err != nil {
		h.logger.Error("failed to create session", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/admin",
		MaxAge:   int(h.sessionStore.timeout.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("admin login successful", "session_id", session.ID)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// HandleLogout deletes the session behind the cookie and clears it. The
// route sits outside SessionMiddleware so the cookie is read directly;
// logging out with an already-dead session still clears the cookie.
// POST /admin/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		h.sessionStore.DeleteSession(r.Context(), cookie.Value)
		h.logger.Info("admin logout", "session_id", cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
	})

	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte("Logged out"))
	if err != nil {
		// Nothing useful to do once the response started
		_ = err
	}
}

// SessionMiddleware gates a route group on a live session cookie.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		session, ok := h.sessionStore.GetSession(r.Context(), cookie.Value)
		if !ok {
			http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
			return
		}

		ctx := WithSessionID(r.Context(), session.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
