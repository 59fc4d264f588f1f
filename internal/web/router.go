package web

import (
	"database/sql"
	"net/http"

	"github.com/anakovac/homesale/internal/auth"
	"github.com/anakovac/homesale/internal/mailer"
	"github.com/anakovac/homesale/internal/media"
	"github.com/anakovac/homesale/internal/reserve"
	webembed "github.com/anakovac/homesale/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string, allowlist *auth.Allowlist, m *mailer.Service, mediaStore *media.Store, siteURL string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
		Allowlist: allowlist,
		Mailer:    m,
		Reserve:   reserve.NewService(db, m),
		Media:     mediaStore,
		SiteURL:   siteURL,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db, allowlist)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public catalog.
	mux.HandleFunc("GET /{$}", s.CatalogPage)
	mux.HandleFunc("GET /items", s.CatalogPage)
	mux.HandleFunc("GET /items/{id}", s.ItemDetailPage)
	mux.HandleFunc("POST /items/{id}/reserve", s.ReserveSubmit)

	// Login flow.
	mux.HandleFunc("GET /admin/login", s.LoginPage)
	mux.HandleFunc("POST /admin/login", s.LoginSubmit)
	mux.HandleFunc("GET /auth/confirm", s.LoginConfirm)
	mux.HandleFunc("POST /admin/logout", s.Logout)

	// Admin area.
	mux.Handle("GET /admin", http.RedirectHandler("/admin/items", http.StatusSeeOther))
	mux.Handle("GET /admin/items", cookieAuth(http.HandlerFunc(s.AdminItemsPage)))
	mux.Handle("POST /admin/items", cookieAuth(http.HandlerFunc(s.AdminItemCreate)))
	mux.Handle("GET /admin/items/{id}", cookieAuth(http.HandlerFunc(s.AdminItemDetailPage)))
	mux.Handle("POST /admin/items/{id}", cookieAuth(http.HandlerFunc(s.AdminItemUpdate)))
	mux.Handle("POST /admin/items/{id}/status", cookieAuth(http.HandlerFunc(s.AdminItemStatus)))
	mux.Handle("POST /admin/items/{id}/images", cookieAuth(http.HandlerFunc(s.AdminItemImageUpload)))
	mux.Handle("POST /admin/items/{id}/images/{imageID}/move", cookieAuth(http.HandlerFunc(s.AdminItemImageMove)))

	mux.Handle("GET /admin/import", cookieAuth(http.HandlerFunc(s.AdminImportPage)))
	mux.Handle("POST /admin/import", cookieAuth(http.HandlerFunc(s.AdminImportSubmit)))

	mux.Handle("GET /admin/reservations", cookieAuth(http.HandlerFunc(s.AdminReservationsPage)))
	mux.Handle("POST /admin/reservations/{id}/confirm", cookieAuth(http.HandlerFunc(s.AdminReservationConfirm)))
	mux.Handle("POST /admin/reservations/{id}/cancel", cookieAuth(http.HandlerFunc(s.AdminReservationCancel)))
	mux.Handle("POST /admin/reservations/{id}/sold", cookieAuth(http.HandlerFunc(s.AdminReservationMarkSold)))

	return mux, nil
}
