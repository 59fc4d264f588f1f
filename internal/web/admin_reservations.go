package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/anakovac/homesale/internal/model"
	"github.com/anakovac/homesale/internal/store"
)

// AdminReservationsPage handles GET /admin/reservations.
func (s *Server) AdminReservationsPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	status := r.URL.Query().Get("status")
	switch status {
	case model.ReservationStatusPending, model.ReservationStatusConfirmed, model.ReservationStatusCancelled:
	default:
		status = ""
	}

	reservations, err := store.ListReservations(r.Context(), s.DB, status)
	if err != nil {
		slog.Error("failed to list reservations", "error", err)
	}

	s.Templates.Render(w, "admin_reservations.html", &struct {
		PageData
		Reservations []model.Reservation
		Status       string
	}{
		PageData: PageData{
			Title:   "Reservations",
			User:    claims,
			Error:   r.URL.Query().Get("error"),
			Success: r.URL.Query().Get("success"),
		},
		Reservations: reservations,
		Status:       status,
	})
}

// AdminReservationConfirm handles POST /admin/reservations/{id}/confirm.
func (s *Server) AdminReservationConfirm(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	if err := store.ConfirmReservation(r.Context(), s.DB, id); err != nil {
		s.redirectReservationError(w, r, id, "confirm", err)
		return
	}

	slog.Info("reservation confirmed", "admin", claims.Email, "reservation_id", id)
	http.Redirect(w, r, "/admin/reservations?success="+url.QueryEscape("Reservation confirmed."), http.StatusSeeOther)
}

// AdminReservationCancel handles POST /admin/reservations/{id}/cancel. The
// reserved item goes back on the catalog.
func (s *Server) AdminReservationCancel(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	if err := store.CancelReservation(r.Context(), s.DB, id); err != nil {
		s.redirectReservationError(w, r, id, "cancel", err)
		return
	}

	slog.Info("reservation cancelled", "admin", claims.Email, "reservation_id", id)
	http.Redirect(w, r, "/admin/reservations?success="+url.QueryEscape("Reservation cancelled and item relisted."), http.StatusSeeOther)
}

// AdminReservationMarkSold handles POST /admin/reservations/{id}/sold: the
// pickup happened, so the reservation is confirmed and the item is sold.
func (s *Server) AdminReservationMarkSold(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	reservation, err := store.GetReservation(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get reservation", "reservation_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if reservation == nil {
		http.NotFound(w, r)
		return
	}

	if reservation.Status == model.ReservationStatusPending {
		if err := store.ConfirmReservation(r.Context(), s.DB, id); err != nil {
			s.redirectReservationError(w, r, id, "confirm", err)
			return
		}
	}

	err = store.SetItemStatus(r.Context(), s.DB, reservation.ItemID, model.ItemStatusSold)
	if err != nil && !errors.Is(err, store.ErrInvalidTransition) {
		slog.Error("failed to mark item sold", "item_id", reservation.ItemID, "error", err)
		http.Redirect(w, r, "/admin/reservations?error="+url.QueryEscape("failed to mark the item sold"), http.StatusSeeOther)
		return
	}
	if errors.Is(err, store.ErrInvalidTransition) {
		// Already sold; nothing left to do.
		slog.Warn("item already sold", "item_id", reservation.ItemID, "reservation_id", id)
	}

	slog.Info("reservation completed", "admin", claims.Email, "reservation_id", id, "item_id", reservation.ItemID)
	http.Redirect(w, r, "/admin/reservations?success="+url.QueryEscape("Item marked as sold."), http.StatusSeeOther)
}

func (s *Server) redirectReservationError(w http.ResponseWriter, r *http.Request, id, action string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	msg := "failed to " + action + " the reservation"
	if errors.Is(err, store.ErrInvalidTransition) {
		msg = "the reservation can no longer be " + action + "ed"
	} else {
		slog.Error("failed to update reservation", "reservation_id", id, "action", action, "error", err)
	}
	http.Redirect(w, r, "/admin/reservations?error="+url.QueryEscape(msg), http.StatusSeeOther)
}
