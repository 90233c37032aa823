package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

type apiKeyIDKey struct{}

type AuthConfig struct {
	// Keys are the accepted shared secrets.  No keys, no authentication.
	Keys []string
	// SkipPaths and everything below them are served without a key.
	SkipPaths []string
}

// DefaultAuthConfig leaves the probes and the scrape endpoint open.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{SkipPaths: []string{"/healthz", "/readyz", "/metrics"}}
}

// AuthMiddleware admits requests presenting a configured API key as
// "Authorization: Bearer <key>" or in X-API-Key.  Only key digests are kept.
type AuthMiddleware struct {
	digests [][sha256.Size]byte
	skip    []string
	logger  logging.Logger
}

func NewAuthMiddleware(cfg AuthConfig, logger logging.Logger) *AuthMiddleware {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	m := &AuthMiddleware{skip: cfg.SkipPaths, logger: logger}
	for _, k := range cfg.Keys {
		if k = strings.TrimSpace(k); k != "" {
			m.digests = append(m.digests, sha256.Sum256([]byte(k)))
		}
	}
	return m
}

func (m *AuthMiddleware) Enabled() bool { return len(m.digests) > 0 }

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || m.skipped(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		key := presentedKey(r)
		if key == "" {
			unauthorized(w, "authentication required")
			return
		}
		id, ok := m.identify(key)
		if !ok {
			m.logger.Warn("API key rejected", logging.String("path", r.URL.Path))
			unauthorized(w, "invalid API key")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), apiKeyIDKey{}, id)))
	})
}

// identify checks key against every digest in constant time.  The id is the
// first four digest bytes in hex, safe to log.
func (m *AuthMiddleware) identify(key string) (string, bool) {
	sum := sha256.Sum256([]byte(key))
	hit := 0
	for _, d := range m.digests {
		hit |= subtle.ConstantTimeCompare(sum[:], d[:])
	}
	if hit == 0 {
		return "", false
	}
	return hex.EncodeToString(sum[:4]), true
}

func (m *AuthMiddleware) skipped(path string) bool {
	for _, p := range m.skip {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// presentedKey prefers a bearer token over X-API-Key.
func presentedKey(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

// ContextGetAPIKeyID is the id of the key that admitted the request, or ""
// on unauthenticated paths.
func ContextGetAPIKeyID(ctx context.Context) string {
	id, _ := ctx.Value(apiKeyIDKey{}).(string)
	return id
}

func unauthorized(w http.ResponseWriter, message string) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("WWW-Authenticate", `Bearer realm="printshop"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"code":"` + string(errors.ErrCodeUnauthorized) + `","message":"` + message + `"}`))
}

//Personal.AI order the ending
