package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anakovac/homesale/internal/auth"
	"github.com/anakovac/homesale/internal/mailer"
	"github.com/anakovac/homesale/internal/media"
	"github.com/anakovac/homesale/internal/reserve"
	webembed "github.com/anakovac/homesale/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"price": func(p decimal.Decimal) string {
			return "€" + p.StringFixed(2)
		},
		"priceValue": func(p decimal.Decimal) string {
			return p.StringFixed(2)
		},
		"categoryName": func(category string) string {
			words := strings.Split(category, "_")
			for i, w := range words {
				if w != "" {
					words[i] = strings.ToUpper(w[:1]) + w[1:]
				}
			}
			return strings.Join(words, " ")
		},
		"conditionName": func(condition string) string {
			switch condition {
			case "new":
				return "New"
			case "like_new":
				return "Like new"
			case "good":
				return "Good"
			case "fair":
				return "Fair"
			case "parts":
				return "For parts"
			default:
				return condition
			}
		},
		"statusName": func(status string) string {
			switch status {
			case "available":
				return "Available"
			case "reserved":
				return "Reserved"
			case "sold":
				return "Sold"
			case "pending":
				return "Pending"
			case "confirmed":
				return "Confirmed"
			case "cancelled":
				return "Cancelled"
			default:
				return status
			}
		},
		"pickupTime": func(t *time.Time) string {
			if t == nil {
				return "No preference"
			}
			return t.Format("Mon, 2 Jan 2006 at 15:04")
		},
		"shortDate": func(t time.Time) string {
			return t.Format("2 Jan 2006")
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	// Read layout.
	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"items.html",
		"item_detail.html",
		"login.html",
		"admin_items.html",
		"admin_item_detail.html",
		"admin_import.html",
		"admin_reservations.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	User    *auth.Claims
	Error   string
	Success string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	JWTSecret string
	Allowlist *auth.Allowlist
	Mailer    *mailer.Service
	Reserve   *reserve.Service
	Media     *media.Store
	SiteURL   string
}
