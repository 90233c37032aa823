package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig controls which browser origins may call the customizer API.
// The storefront and the admin dashboard are typically served from different
// hosts than the API.
type CORSConfig struct {
	// AllowedOrigins lists exact origins.  "*" admits any origin; with
	// AllowWildcard, "*.example.com" admits every subdomain of example.com.
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds; 0 omits the header.
	MaxAge        int
	AllowWildcard bool
}

// DefaultCORSConfig admits no origin until AllowedOrigins is filled in.  The
// exposed headers are the ones the texture and rate limit paths set.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type", "If-None-Match",
			"X-API-Key", "X-Request-ID",
		},
		ExposedHeaders: []string{
			"ETag", "Location", "Retry-After",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-Request-ID",
			"X-Texture-Key", "X-Texture-URL", "X-Texture-Wrap",
		},
		MaxAge: 86400,
	}
}

// originPolicy is the compiled form of a CORSConfig.
type originPolicy struct {
	any         bool
	exact       map[string]struct{}
	suffixes    []string
	credentials bool

	methods string
	headers string
	exposed string
	maxAge  string
}

func compileOriginPolicy(cfg CORSConfig) *originPolicy {
	p := &originPolicy{
		exact:       make(map[string]struct{}, len(cfg.AllowedOrigins)),
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(cfg.AllowedMethods, ", "),
		headers:     strings.Join(cfg.AllowedHeaders, ", "),
		exposed:     strings.Join(cfg.ExposedHeaders, ", "),
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	for _, o := range cfg.AllowedOrigins {
		o = strings.ToLower(strings.TrimSpace(o))
		switch {
		case o == "*":
			p.any = true
		case cfg.AllowWildcard && strings.HasPrefix(o, "*."):
			p.suffixes = append(p.suffixes, o[1:])
		case o != "":
			p.exact[o] = struct{}{}
		}
	}
	return p
}

func (p *originPolicy) admits(origin string) bool {
	if p.any {
		return true
	}
	origin = strings.ToLower(origin)
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, s := range p.suffixes {
		if strings.HasSuffix(origin, s) {
			return true
		}
	}
	return false
}

// allowOrigin is the value of Access-Control-Allow-Origin.  Browsers reject
// "*" on credentialed requests, so the request origin is echoed instead.
func (p *originPolicy) allowOrigin(origin string) string {
	if p.any && !p.credentials {
		return "*"
	}
	return origin
}

func (p *originPolicy) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || !p.admits(origin) {
			// Not a cross-origin browser call, or one the browser will
			// block on its own once no CORS headers come back.
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Add("Vary", "Origin")
		h.Add("Vary", "Access-Control-Request-Method")
		h.Add("Vary", "Access-Control-Request-Headers")
		h.Set("Access-Control-Allow-Origin", p.allowOrigin(origin))
		if p.credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", p.methods)
			h.Set("Access-Control-Allow-Headers", p.headers)
			if p.maxAge != "" {
				h.Set("Access-Control-Max-Age", p.maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if p.exposed != "" {
			h.Set("Access-Control-Expose-Headers", p.exposed)
		}
		next.ServeHTTP(w, r)
	})
}

// CORS returns a middleware enforcing cfg.  Preflight requests from admitted
// origins are answered with 204 and never reach the router.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	return compileOriginPolicy(cfg).wrap
}

// CORSMiddleware adapts CORS to RouterConfig.
type CORSMiddleware struct {
	policy *originPolicy
}

// NewCORSMiddleware compiles cfg once for the lifetime of the router.
func NewCORSMiddleware(cfg CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{policy: compileOriginPolicy(cfg)}
}

// Handler wraps next.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return m.policy.wrap(next)
}

//Personal.AI order the ending
