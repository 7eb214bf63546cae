// Package guard keeps unauthenticated visitors out of the admin pages.
//
// Every request to a protected prefix must carry a session cookie accepted
// by the configured policy. Anything else is sent to the login page with the
// original path in the redirect query parameter. Missing, malformed and
// mismatched cookies all look the same from the outside; the cause is only
// logged and counted.
package guard

import (
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AngelCh415/collabhub/internal/session"
	"github.com/AngelCh415/collabhub/internal/utils"
)

type Config struct {
	LoginPath  string
	CookieName string
	Policy     session.Policy
	Protected  []string
	Exclude    []string
}

type Decision struct {
	Allow     bool
	Protected bool
	Location  string

	// Cause is the internal reason for a redirect, nil on pass-through.
	Cause   error
	Session *session.Session
}

type Guard struct {
	cfg       Config
	protected [][]string
	log       *slog.Logger
	decisions *prometheus.CounterVec
}

// New builds a guard. decisions may be nil; when set it must have the
// labels outcome and cause.
func New(cfg Config, log *slog.Logger, decisions *prometheus.CounterVec) *Guard {
	g := &Guard{cfg: cfg, log: log, decisions: decisions}
	for _, p := range cfg.Protected {
		if p = strings.TrimSpace(p); p != "" {
			g.protected = append(g.protected, segments(p))
		}
	}
	return g
}

// Protected reports whether p falls under a protected prefix, comparing
// whole path segments so /dashboard does not cover /dashboard-public.
func (g *Guard) Protected(p string) bool {
	if g.Excluded(p) {
		return false
	}
	segs := segments(p)
	for _, prefix := range g.protected {
		if hasSegmentPrefix(segs, prefix) {
			return true
		}
	}
	return false
}

// Excluded reports whether p is a static asset that skips the guard.
func (g *Guard) Excluded(p string) bool {
	for _, pat := range g.cfg.Exclude {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		if base, ok := strings.CutSuffix(pat, "/**"); ok {
			if hasSegmentPrefix(segments(p), segments(base)) {
				return true
			}
			continue
		}
		if ok, err := path.Match(pat, p); err == nil && ok {
			return true
		}
	}
	return false
}

// Decide inspects r without touching it. A valid session is returned even
// for unprotected paths so handlers can use it.
func (g *Guard) Decide(r *http.Request) Decision {
	p := r.URL.Path
	if g.Excluded(p) {
		return Decision{Allow: true}
	}
	s, err := session.Resolve(r, g.cfg.CookieName, g.cfg.Policy)
	if !g.Protected(p) {
		if err != nil {
			return Decision{Allow: true}
		}
		return Decision{Allow: true, Session: &s}
	}
	if err != nil {
		return Decision{Protected: true, Location: g.loginURL(p), Cause: err}
	}
	return Decision{Allow: true, Protected: true, Session: &s}
}

func (g *Guard) loginURL(original string) string {
	return g.cfg.LoginPath + "?" + url.Values{"redirect": {original}}.Encode()
}

func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Decide(r)
		if d.Protected {
			g.record(r, d)
		}
		if !d.Allow {
			http.Redirect(w, r, d.Location, http.StatusFound)
			return
		}
		if d.Session != nil {
			r = r.WithContext(session.WithSession(r.Context(), *d.Session))
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Guard) record(r *http.Request, d Decision) {
	outcome := "allow"
	if !d.Allow {
		outcome = "redirect"
	}
	cause := session.Cause(d.Cause)
	if g.decisions != nil {
		g.decisions.WithLabelValues(outcome, cause).Inc()
	}
	if g.log != nil && !d.Allow {
		g.log.Info("guard redirect",
			slog.String("path", r.URL.Path),
			slog.String("cause", cause),
			slog.String("rid", utils.RID(r.Context())))
	}
}

func segments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasSegmentPrefix(segs, prefix []string) bool {
	if len(prefix) > len(segs) {
		return false
	}
	for i := range prefix {
		if segs[i] != prefix[i] {
			return false
		}
	}
	return true
}
