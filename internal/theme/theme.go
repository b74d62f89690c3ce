// Package theme resolves and persists the light/dark preference.
package theme

import (
	"net/http"
	"strings"
	"time"
)

// Preference is the colour scheme of the shell.
type Preference string

const (
	Light Preference = "light"
	Dark  Preference = "dark"
)

// CookieName stores the preference between visits.
const CookieName = "theme"

// ClientHintHeader carries the browser's preferred colour scheme.
const ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"

const cookieMaxAge = 365 * 24 * time.Hour

// Parse converts a stored value into a Preference.
func Parse(s string) (Preference, bool) {
	switch Preference(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// Toggle returns the other preference.
func (p Preference) Toggle() Preference {
	if p == Dark {
		return Light
	}
	return Dark
}

// IsDark reports whether p is the dark scheme.
func (p Preference) IsDark() bool { return p == Dark }

func (p Preference) String() string { return string(p) }

// FromRequest resolves the initial preference: the stored cookie, then
// the client hint, then def. An invalid def falls back to Light.
func FromRequest(r *http.Request, def Preference) Preference {
	if c, err := r.Cookie(CookieName); err == nil {
		if p, ok := Parse(c.Value); ok {
			return p
		}
	}
	if p, ok := Parse(strings.Trim(r.Header.Get(ClientHintHeader), `"`)); ok {
		return p
	}
	if p, ok := Parse(string(def)); ok {
		return p
	}
	return Light
}

// Cookie returns the cookie that persists p.
func Cookie(p Preference, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    p.String(),
		Path:     "/",
		MaxAge:   int(cookieMaxAge / time.Second),
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
