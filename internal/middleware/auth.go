package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const SessionCookieName = "raciones_session"

const sessionMaxAge = 7 * 24 * time.Hour

// sessionSubject is the only identity the dashboard knows: whoever holds the
// shared password.
const sessionSubject = "dashboard"

func sign(value, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

func CreateSessionCookie(secret string, now time.Time) *http.Cookie {
	value := fmt.Sprintf("%s|%d", sessionSubject, now.Unix())
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value + "|" + sign(value, secret),
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionMaxAge.Seconds()),
	}
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

func ValidateSessionCookie(cookie *http.Cookie, secret string, now time.Time) error {
	if cookie == nil {
		return fmt.Errorf("no session cookie")
	}

	parts := strings.Split(cookie.Value, "|")
	if len(parts) != 3 {
		return fmt.Errorf("invalid session format")
	}

	value := parts[0] + "|" + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(sign(value, secret))) {
		return fmt.Errorf("invalid session signature")
	}
	if parts[0] != sessionSubject {
		return fmt.Errorf("invalid session subject")
	}

	issued, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session timestamp")
	}
	if now.Sub(time.Unix(issued, 0)) > sessionMaxAge {
		return fmt.Errorf("session expired")
	}
	return nil
}

// RequireAuth redirects to /login unless the request carries a valid
// session. When enabled is false every request passes through.
func RequireAuth(next http.HandlerFunc, secret string, enabled bool) http.HandlerFunc {
	if !enabled {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || ValidateSessionCookie(cookie, secret, time.Now()) != nil {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}
