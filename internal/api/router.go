package api

import (
	"database/sql"
	"net/http"

	"github.com/anakovac/homesale/internal/mailer"
	"github.com/anakovac/homesale/internal/reserve"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, m *mailer.Service) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{DB: db}
	reservationsHandler := &ReservationsHandler{Reserve: reserve.NewService(db, m)}

	// Public catalog reads.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)

	// Public reservation submission.
	mux.HandleFunc("POST /api/reservations", reservationsHandler.Create)

	return mux
}
