package handlers

import (
	"net/http"
	"ssipfix/internal/config"
	"ssipfix/internal/models"
	"ssipfix/internal/service"
	"time"
)

const (
	SessionCookieName          = "session_id"
	RememberSecretCookieName   = "remember_token"
	RememberSelectorCookieName = "remember_selector"
)

func secureCookies(r *http.Request, cfg *config.Config) bool {
	return r.TLS != nil || (cfg != nil && cfg.Server.CookieSecure)
}

func newCookie(r *http.Request, cfg *config.Config, name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secureCookies(r, cfg),
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSessionCookie writes a browser-session cookie; server-side expiry is enforced by the store.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, cfg *config.Config, session *models.Session) {
	http.SetCookie(w, newCookie(r, cfg, SessionCookieName, session.SessionID))
}

func SetRememberCookies(w http.ResponseWriter, r *http.Request, cfg *config.Config, token *service.IssuedToken) {
	maxAge := int(time.Until(token.ExpiresAt).Seconds())

	selector := newCookie(r, cfg, RememberSelectorCookieName, token.Selector)
	selector.Expires = token.ExpiresAt
	selector.MaxAge = maxAge
	http.SetCookie(w, selector)

	secret := newCookie(r, cfg, RememberSecretCookieName, token.Secret)
	secret.Expires = token.ExpiresAt
	secret.MaxAge = maxAge
	http.SetCookie(w, secret)
}

func clearCookie(w http.ResponseWriter, r *http.Request, cfg *config.Config, name string) {
	c := newCookie(r, cfg, name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

func ClearSessionCookie(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	clearCookie(w, r, cfg, SessionCookieName)
}

func ClearRememberCookies(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	clearCookie(w, r, cfg, RememberSelectorCookieName)
	clearCookie(w, r, cfg, RememberSecretCookieName)
}

// ReadCredentials collects the identity cookies of a request. Missing cookies stay empty.
func ReadCredentials(r *http.Request) service.Credentials {
	var creds service.Credentials
	if c, err := r.Cookie(SessionCookieName); err == nil {
		creds.SessionID = c.Value
	}
	if c, err := r.Cookie(RememberSelectorCookieName); err == nil {
		creds.RememberSelector = c.Value
	}
	if c, err := r.Cookie(RememberSecretCookieName); err == nil {
		creds.RememberSecret = c.Value
	}
	return creds
}
