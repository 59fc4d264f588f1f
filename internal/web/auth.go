package web

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anakovac/homesale/internal/auth"
	"github.com/anakovac/homesale/internal/store"
)

type loginPayload struct {
	PageData
	Sent bool
}

// LoginPage handles GET /admin/login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &loginPayload{PageData: PageData{Title: "Sign in"}})
}

// LoginSubmit handles POST /admin/login. It emails a sign-in link when the
// address is allowlisted, and renders the same "sent" page either way so the
// form does not reveal which addresses are admins.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	if email == "" {
		s.Templates.Render(w, "login.html", &loginPayload{PageData: PageData{
			Title: "Sign in",
			Error: "Enter your email address.",
		}})
		return
	}

	if s.Allowlist.Contains(email) {
		token, err := store.CreateLoginToken(r.Context(), s.DB, email)
		if err != nil {
			slog.Error("failed to create login token", "error", err)
		} else {
			confirmURL := s.SiteURL + "/auth/confirm?token=" + url.QueryEscape(token)
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := s.Mailer.SendLoginLink(ctx, email, confirmURL); err != nil {
					slog.Error("failed to send login link", "email", email, "error", err)
				}
			}()
			slog.Info("login link requested", "email", email)
		}
	} else {
		slog.Warn("login requested for unknown email", "email", email)
	}

	s.Templates.Render(w, "login.html", &loginPayload{
		PageData: PageData{Title: "Sign in"},
		Sent:     true,
	})
}

// LoginConfirm handles GET /auth/confirm. A valid single-use token from the
// emailed link becomes a JWT session cookie.
func (s *Server) LoginConfirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	email, err := store.ConsumeLoginToken(r.Context(), s.DB, token)
	if err != nil || !s.Allowlist.Contains(email) {
		s.Templates.Render(w, "login.html", &loginPayload{PageData: PageData{
			Title: "Sign in",
			Error: "That sign-in link is invalid or has expired. Request a new one.",
		}})
		return
	}

	jwtToken, err := auth.GenerateToken(s.JWTSecret, email)
	if err != nil {
		slog.Error("failed to generate session token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    jwtToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})

	slog.Info("admin signed in", "email", email)
	http.Redirect(w, r, "/admin/items", http.StatusSeeOther)
}

// Logout handles POST /admin/logout. The session's JTI goes on the
// revocation list so the cookie cannot be replayed.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil && claims.ID != "" {
			expiresAt := time.Now().Add(auth.TokenExpiry)
			if claims.ExpiresAt != nil {
				expiresAt = claims.ExpiresAt.Time
			}
			if err := store.RevokeToken(r.Context(), s.DB, claims.ID, expiresAt); err != nil {
				slog.Error("failed to revoke token", "error", err)
			}
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
