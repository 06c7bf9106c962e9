package handlers

import (
	"net/http"
	"time"

	"raciones-dashboard/internal/config"
	"raciones-dashboard/internal/middleware"

	"golang.org/x/crypto/bcrypt"
)

// AuthHandler guards the dashboard with one shared password. There are no
// user accounts.
type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// LoginForm renders the login page, or redirects home when the password is
// disabled or the session is already valid.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.AuthEnabled() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if middleware.ValidateSessionCookie(cookie, h.cfg.SessionSecret, time.Now()) == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}

	renderTemplate(w, r, "login.html", map[string]interface{}{
		"Title": "Ingresar - Raciones",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.cfg.AuthEnabled() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	password := r.FormValue("password")
	if password == "" {
		renderTemplate(w, r, "login.html", map[string]interface{}{
			"Title": "Ingresar - Raciones",
			"Error": "Ingrese la contraseña",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.DashboardPasswordHash), []byte(password)); err != nil {
		h.cfg.Debugf("login rejected from %s", r.RemoteAddr)
		renderTemplate(w, r, "login.html", map[string]interface{}{
			"Title": "Ingresar - Raciones",
			"Error": "Contraseña incorrecta",
		})
		return
	}

	http.SetCookie(w, middleware.CreateSessionCookie(h.cfg.SessionSecret, time.Now()))
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears the session cookie and redirects to login.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, middleware.ClearSessionCookie())
	http.Redirect(w, r, "/login", http.StatusFound)
}
