package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy decides which browser origins may call the API.
type CORSPolicy struct {
	origins  map[string]struct{}
	wildcard bool
	methods  string
	headers  string
	maxAge   string
}

// NewCORSPolicy normalises the configured origins. A "*" entry admits any
// origin; trailing slashes are ignored.
func NewCORSPolicy(origins []string) *CORSPolicy {
	p := &CORSPolicy{
		origins: make(map[string]struct{}, len(origins)),
		methods: strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}, ", "),
		headers: "Content-Type, X-Request-ID",
		maxAge:  strconv.Itoa(int((10 * time.Minute).Seconds())),
	}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			p.wildcard = true
		default:
			p.origins[strings.ToLower(o)] = struct{}{}
		}
	}
	return p
}

// Allows reports whether origin may read responses.
func (p *CORSPolicy) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.wildcard {
		return true
	}
	_, ok := p.origins[strings.ToLower(origin)]
	return ok
}

func (p *CORSPolicy) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		allowed := p.Allows(origin)
		if allowed {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Expose-Headers", "X-Request-ID")
		}

		preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
		if !preflight {
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		h := w.Header()
		h.Set("Access-Control-Allow-Methods", p.methods)
		h.Set("Access-Control-Allow-Headers", p.headers)
		h.Set("Access-Control-Max-Age", p.maxAge)
		w.WriteHeader(http.StatusNoContent)
	})
}

// CORS is the router-facing constructor for NewCORSPolicy(origins).Handler.
func CORS(origins []string) func(http.Handler) http.Handler {
	return NewCORSPolicy(origins).Handler
}
