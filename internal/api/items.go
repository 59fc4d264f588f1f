package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/anakovac/homesale/internal/model"
	"github.com/anakovac/homesale/internal/store"
)

// ItemsHandler handles the public item read endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

// List handles GET /api/items. Status and category query parameters filter
// the catalog; unknown values are ignored.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case model.ItemStatusAvailable, model.ItemStatusReserved, model.ItemStatusSold:
	default:
		status = ""
	}
	category := r.URL.Query().Get("category")
	if !model.ValidCategory(category) {
		category = ""
	}

	items, err := store.ListItems(r.Context(), h.DB, status, category)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

type itemDetailResponse struct {
	model.Item
	Images []model.ItemImage `json:"images"`
}

// Get handles GET /api/items/{id}, returning the item with its images in
// display order.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	images, err := store.ListItemImages(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to list item images", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if images == nil {
		images = []model.ItemImage{}
	}

	jsonResponse(w, http.StatusOK, itemDetailResponse{Item: *item, Images: images})
}
