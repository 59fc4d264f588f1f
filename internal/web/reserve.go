package web

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/anakovac/homesale/internal/reserve"
	"github.com/anakovac/homesale/internal/store"
)

// ReserveSubmit handles POST /items/{id}/reserve.
func (s *Server) ReserveSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result := s.Reserve.Submit(r.Context(), reserve.Request{
		ItemID:            id,
		Name:              r.FormValue("name"),
		Email:             r.FormValue("email"),
		Phone:             r.FormValue("phone"),
		Message:           r.FormValue("message"),
		PreferredPickupAt: r.FormValue("preferred_pickup_at"),
		Website:           r.FormValue("website"),
	})

	switch result.Status {
	case reserve.StatusOK:
		http.Redirect(w, r, "/items/"+id+"?reserved=1", http.StatusSeeOther)
	case reserve.StatusInvalid:
		s.renderReserveErrors(w, r, id, result)
	default:
		http.Redirect(w, r, "/items/"+id+"?error="+url.QueryEscape(result.Message), http.StatusSeeOther)
	}
}

// renderReserveErrors re-renders the detail page with per-field messages and
// the submitted values so the buyer does not retype the form.
func (s *Server) renderReserveErrors(w http.ResponseWriter, r *http.Request, id string, result reserve.Result) {
	item, err := store.GetItem(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.NotFound(w, r)
		return
	}

	images, err := store.ListItemImages(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to list item images", "error", err)
	}

	data := s.itemDetailData(item, images)
	data.Error = result.Message
	data.FieldErrors = result.FieldErrors
	data.Form = map[string]string{
		"name":                r.FormValue("name"),
		"email":               r.FormValue("email"),
		"phone":               r.FormValue("phone"),
		"message":             r.FormValue("message"),
		"preferred_pickup_at": r.FormValue("preferred_pickup_at"),
	}

	s.Templates.Render(w, "item_detail.html", data)
}
