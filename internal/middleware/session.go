package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	defaultSessionCookieName = "FIREWORKS_WEB_SESSION"
	defaultSessionLifetime   = 30 * 24 * time.Hour
)

// ErrInvalidSessionConfig indicates missing or malformed cookie keys.
var ErrInvalidSessionConfig = errors.New("session: invalid config")

// SessionData is what the visitor cookie carries: an opaque id naming the
// in-memory visitor state and the CSRF token. Nothing else leaves the server.
type SessionData struct {
	ID        string    `json:"id,omitempty"`
	CSRFToken string    `json:"csrf"`
	CreatedAt time.Time `json:"createdAt"`

	dirty bool
}

// MarkDirty flags the session for writing before the response is sent.
func (s *SessionData) MarkDirty() { s.dirty = true }

// SetID binds the session to a visitor id.
func (s *SessionData) SetID(id string) {
	if s.ID != id {
		s.ID = id
		s.dirty = true
	}
}

// SessionConfig controls cookie encoding.
type SessionConfig struct {
	CookieName string
	HashKey    []byte
	BlockKey   []byte
	Secure     bool
	Lifetime   time.Duration
	Now        func() time.Time
}

// SessionManager encodes the visitor cookie with securecookie.
type SessionManager struct {
	cfg   SessionConfig
	codec *securecookie.SecureCookie
}

// NewSessionManager validates cfg. An empty hash key yields a random
// process-local key, which is fine because visitor state is in memory too.
func NewSessionManager(cfg SessionConfig) (*SessionManager, error) {
	if len(cfg.HashKey) == 0 {
		cfg.HashKey = securecookie.GenerateRandomKey(32)
		if cfg.HashKey == nil {
			return nil, fmt.Errorf("%w: unable to generate hash key", ErrInvalidSessionConfig)
		}
	}
	if len(cfg.HashKey) < 32 {
		return nil, fmt.Errorf("%w: hash key must be at least 32 bytes", ErrInvalidSessionConfig)
	}
	switch len(cfg.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrInvalidSessionConfig)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultSessionCookieName
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaultSessionLifetime
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.Lifetime.Seconds()))
	return &SessionManager{cfg: cfg, codec: codec}, nil
}

// CookieName returns the configured cookie name.
func (m *SessionManager) CookieName() string { return m.cfg.CookieName }

// Load decodes the request cookie. A missing or tampered cookie yields a fresh
// session marked dirty.
func (m *SessionManager) Load(r *http.Request) *SessionData {
	if c, err := r.Cookie(m.cfg.CookieName); err == nil && c.Value != "" {
		var sd SessionData
		if err := m.codec.Decode(m.cfg.CookieName, c.Value, &sd); err == nil && sd.CSRFToken != "" {
			return &sd
		}
	}
	return &SessionData{
		CSRFToken: newCSRFToken(),
		CreatedAt: m.cfg.Now().UTC(),
		dirty:     true,
	}
}

// Save writes the cookie.
func (m *SessionManager) Save(w http.ResponseWriter, sd *SessionData) error {
	encoded, err := m.codec.Encode(m.cfg.CookieName, sd)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  m.cfg.Now().Add(m.cfg.Lifetime),
		MaxAge:   int(m.cfg.Lifetime.Seconds()),
	})
	sd.dirty = false
	return nil
}

// Session loads the cookie into the request context and writes it back before
// the first byte of the response when it changed.
func Session(m *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sd := m.Load(r)
			rw := NewResponseRecorder(w)
			rw.SetBeforeWrite(func(w http.ResponseWriter) {
				if sd.dirty {
					_ = m.Save(w, sd)
				}
			})
			next.ServeHTTP(rw, r.WithContext(WithSession(r.Context(), sd)))
			if !rw.Wrote() && sd.dirty {
				_ = m.Save(w, sd)
			}
		})
	}
}

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
