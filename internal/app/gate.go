package app

import (
	"crypto/subtle"
	"fincsops/config"
	"net/http"
	"strings"
)

const gateRealm = "FincsOps"

// Paths served without credentials: build artifacts and liveness probes.
// File-like paths match exactly so lookalikes like /healthz-admin stay gated.
var (
	gateExemptPaths    = []string{"/favicon.ico", "/healthz"}
	gateExemptPrefixes = []string{"/static/"}
)

// Gate enforces the shared operator credential pair on every request.
// With no pair configured it is a no-op - the local/dev escape hatch.
// Stateless: no sessions, no cookies, every request re-authenticates.
type Gate struct {
	username string
	password string
}

func NewGate(cfg *config.Config) *Gate {
	if !cfg.Gate.Enabled() {
		return &Gate{}
	}
	return &Gate{
		username: cfg.Gate.Username,
		password: cfg.Gate.Password,
	}
}

// Enabled reports whether a credential pair is configured.
func (g *Gate) Enabled() bool {
	return g.username != "" && g.password != ""
}

// Middleware wraps a handler with the credential check.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Enabled() || exemptPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok {
			unauthorized(w)
			return
		}

		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(g.username)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(g.password)) == 1
		if !userMatch || !passMatch {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func exemptPath(path string) bool {
	for _, p := range gateExemptPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range gateExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+gateRealm+`"`)
	http.Error(w, "Auth required", http.StatusUnauthorized)
}
