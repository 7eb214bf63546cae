// Package session decodes the admin credential cookie set by the login page.
//
// The cookie value is URL-encoded JSON such as {"user":"admin"} or
// {"role":"reviewer"}. It is client-held and never written by this package.
package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

var (
	ErrMissing           = errors.New("session cookie missing")
	ErrMalformedEncoding = errors.New("session cookie is not url-encoded")
	ErrMalformedJSON     = errors.New("session cookie is not json")
	ErrMismatch          = errors.New("session identity not accepted")
)

type Session struct {
	Subject string `json:"user,omitempty"`
	Role    string `json:"role,omitempty"`
}

// Cause maps a resolve error to a short label for logs and metrics.
func Cause(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrMissing):
		return "missing"
	case errors.Is(err, ErrMalformedEncoding):
		return "bad_encoding"
	case errors.Is(err, ErrMalformedJSON):
		return "bad_json"
	case errors.Is(err, ErrMismatch):
		return "mismatch"
	}
	return "unknown"
}

// Policy decides which identities may pass. A session passes when its role
// is in Roles or, for older cookies without a role, its user equals AdminUser.
type Policy struct {
	AdminUser string
	Roles     []string
}

func (p Policy) Check(s Session) error {
	if s.Role != "" {
		for _, r := range p.Roles {
			if s.Role == r {
				return nil
			}
		}
	}
	if p.AdminUser != "" && s.Subject == p.AdminUser {
		return nil
	}
	return ErrMismatch
}

// Decode URL-decodes and parses a raw cookie value. Valid JSON of the wrong
// shape (an array, a number, a role that is not a string) is a mismatch.
func Decode(raw string) (Session, error) {
	if raw == "" {
		return Session{}, ErrMissing
	}
	dec, err := url.PathUnescape(raw)
	if err != nil {
		return Session{}, ErrMalformedEncoding
	}
	if !utf8.ValidString(dec) {
		return Session{}, ErrMalformedEncoding
	}
	dec = strings.TrimSpace(dec)
	if !gjson.Valid(dec) {
		return Session{}, ErrMalformedJSON
	}
	doc := gjson.Parse(dec)
	if !doc.IsObject() {
		return Session{}, ErrMismatch
	}
	// keys are matched exactly; {"USER":"admin"} carries no identity
	user, ok := stringField(doc, "user")
	if !ok {
		return Session{}, ErrMismatch
	}
	role, ok := stringField(doc, "role")
	if !ok {
		return Session{}, ErrMismatch
	}
	return Session{Subject: user, Role: role}, nil
}

func stringField(doc gjson.Result, key string) (string, bool) {
	v := doc.Get(key)
	switch v.Type {
	case gjson.String:
		return v.Str, true
	case gjson.Null:
		return "", true
	}
	return "", !v.Exists()
}

// Resolve reads cookie name from r, decodes it and applies p.
func Resolve(r *http.Request, name string, p Policy) (Session, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return Session{}, ErrMissing
	}
	s, err := Decode(c.Value)
	if err != nil {
		return Session{}, err
	}
	if err := p.Check(s); err != nil {
		return Session{}, err
	}
	return s, nil
}

type ctxKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
