package web

import (
	"log/slog"
	"net/http"

	"github.com/anakovac/homesale/internal/model"
	"github.com/anakovac/homesale/internal/store"
)

// CatalogPage handles GET / and GET /items.
func (s *Server) CatalogPage(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != model.ItemStatusAvailable && status != model.ItemStatusReserved && status != model.ItemStatusSold {
		status = ""
	}
	category := r.URL.Query().Get("category")
	if !model.ValidCategory(category) {
		category = ""
	}

	items, err := store.ListItems(r.Context(), s.DB, status, category)
	if err != nil {
		slog.Error("failed to list items", "error", err)
	}
	covers, err := store.CoverImages(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to load cover images", "error", err)
	}

	s.Templates.Render(w, "items.html", &struct {
		PageData
		Items      []model.Item
		Covers     map[string]string
		Categories []string
		Category   string
		Status     string
	}{
		PageData:   PageData{Title: "Home Sale"},
		Items:      items,
		Covers:     covers,
		Categories: model.Categories,
		Category:   category,
		Status:     status,
	})
}

// ItemDetailPage handles GET /items/{id}.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

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
	if r.URL.Query().Get("reserved") != "" {
		data.Success = "Your reservation has been submitted. We'll be in touch soon to confirm the pickup details."
	}
	data.Error = r.URL.Query().Get("error")

	s.Templates.Render(w, "item_detail.html", data)
}

// itemDetailData builds the template payload shared by the detail page and
// the reservation form re-render.
type itemDetailPayload struct {
	PageData
	Item        *model.Item
	Images      []model.ItemImage
	FieldErrors map[string]string
	Form        map[string]string
}

func (s *Server) itemDetailData(item *model.Item, images []model.ItemImage) *itemDetailPayload {
	return &itemDetailPayload{
		PageData: PageData{Title: item.Title},
		Item:     item,
		Images:   images,
	}
}
