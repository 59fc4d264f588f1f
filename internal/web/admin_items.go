package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/anakovac/homesale/internal/imaging"
	"github.com/anakovac/homesale/internal/model"
	"github.com/anakovac/homesale/internal/store"
)

// AdminItemsPage handles GET /admin/items.
func (s *Server) AdminItemsPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	items, err := store.ListItems(r.Context(), s.DB, "", "")
	if err != nil {
		slog.Error("failed to list items", "error", err)
	}
	covers, err := store.CoverImages(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to load cover images", "error", err)
	}

	s.Templates.Render(w, "admin_items.html", &struct {
		PageData
		Items      []model.Item
		Covers     map[string]string
		Categories []string
		Conditions []string
	}{
		PageData: PageData{
			Title:   "Manage items",
			User:    claims,
			Error:   r.URL.Query().Get("error"),
			Success: r.URL.Query().Get("success"),
		},
		Items:      items,
		Covers:     covers,
		Categories: model.Categories,
		Conditions: model.Conditions,
	})
}

// itemForm reads and validates the shared create/edit form fields.
func itemForm(r *http.Request) (title, description string, price decimal.Decimal, category, condition, pickupArea string, err error) {
	title = strings.TrimSpace(r.FormValue("title"))
	description = strings.TrimSpace(r.FormValue("description"))
	category = r.FormValue("category")
	condition = r.FormValue("condition")
	pickupArea = strings.TrimSpace(r.FormValue("pickup_area"))

	if title == "" {
		err = errors.New("title is required")
		return
	}
	price, err = decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
	if err != nil || price.IsNegative() {
		err = errors.New("price must be a non-negative number")
		return
	}
	if !model.ValidCategory(category) {
		err = errors.New("unknown category")
		return
	}
	if !model.ValidCondition(condition) {
		err = errors.New("unknown condition")
		return
	}
	return
}

// AdminItemCreate handles POST /admin/items.
func (s *Server) AdminItemCreate(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	title, description, price, category, condition, pickupArea, err := itemForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/items?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	item, err := store.CreateItem(r.Context(), s.DB, title, description, price, category, condition, pickupArea)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		http.Redirect(w, r, "/admin/items?error="+url.QueryEscape("failed to create item"), http.StatusSeeOther)
		return
	}

	slog.Info("item created", "admin", claims.Email, "item_id", item.ID, "title", title)
	http.Redirect(w, r, "/admin/items/"+item.ID+"?success="+url.QueryEscape("Item created."), http.StatusSeeOther)
}

// AdminItemDetailPage handles GET /admin/items/{id}.
func (s *Server) AdminItemDetailPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
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

	s.Templates.Render(w, "admin_item_detail.html", &struct {
		PageData
		Item       *model.Item
		Images     []model.ItemImage
		Categories []string
		Conditions []string
	}{
		PageData: PageData{
			Title:   item.Title,
			User:    claims,
			Error:   r.URL.Query().Get("error"),
			Success: r.URL.Query().Get("success"),
		},
		Item:       item,
		Images:     images,
		Categories: model.Categories,
		Conditions: model.Conditions,
	})
}

// AdminItemUpdate handles POST /admin/items/{id}.
func (s *Server) AdminItemUpdate(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	title, description, price, category, condition, pickupArea, err := itemForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/items/"+id+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	if err := store.UpdateItem(r.Context(), s.DB, id, title, description, price, category, condition, pickupArea); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to update item", "item_id", id, "error", err)
		http.Redirect(w, r, "/admin/items/"+id+"?error="+url.QueryEscape("failed to update item"), http.StatusSeeOther)
		return
	}

	slog.Info("item updated", "admin", claims.Email, "item_id", id, "title", title)
	http.Redirect(w, r, "/admin/items/"+id+"?success="+url.QueryEscape("Item updated."), http.StatusSeeOther)
}

// AdminItemStatus handles POST /admin/items/{id}/status. The form either
// posts an explicit target status or "toggle" to flip sold/available.
func (s *Server) AdminItemStatus(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")
	status := r.FormValue("status")

	var err error
	if status == "toggle" {
		status, err = store.ToggleSold(r.Context(), s.DB, id)
	} else {
		err = store.SetItemStatus(r.Context(), s.DB, id, status)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		msg := "failed to change status"
		if errors.Is(err, store.ErrInvalidTransition) {
			msg = "that status change is not allowed"
		} else {
			slog.Error("failed to set item status", "item_id", id, "error", err)
		}
		http.Redirect(w, r, "/admin/items/"+id+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
		return
	}

	slog.Info("item status changed", "admin", claims.Email, "item_id", id, "status", status)
	http.Redirect(w, r, "/admin/items/"+id+"?success="+url.QueryEscape("Status updated."), http.StatusSeeOther)
}

// AdminItemImageUpload handles POST /admin/items/{id}/images. The form may
// carry several files; each is validated, downscaled, and appended to the
// item's gallery in upload order.
func (s *Server) AdminItemImageUpload(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
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

	r.Body = http.MaxBytesReader(w, r.Body, 4*imaging.MaxUploadBytes)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		http.Redirect(w, r, "/admin/items/"+id+"?error="+url.QueryEscape("upload too large"), http.StatusSeeOther)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		http.Redirect(w, r, "/admin/items/"+id+"?error="+url.QueryEscape("select at least one image"), http.StatusSeeOther)
		return
	}

	saved := 0
	var failures []string
	for _, header := range files {
		if header.Size > imaging.MaxUploadBytes {
			failures = append(failures, fmt.Sprintf("%s: file too large", header.Filename))
			continue
		}

		file, err := header.Open()
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: unreadable upload", header.Filename))
			continue
		}

		result, err := imaging.Process(file)
		file.Close()
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", header.Filename, err))
			continue
		}

		imageURL, err := s.Media.SaveItemImage(id, result.Data, result.Ext())
		if err != nil {
			slog.Error("failed to store image file", "item_id", id, "error", err)
			failures = append(failures, fmt.Sprintf("%s: failed to store", header.Filename))
			continue
		}
		if _, err := store.AddItemImage(r.Context(), s.DB, id, imageURL); err != nil {
			slog.Error("failed to record image", "item_id", id, "error", err)
			failures = append(failures, fmt.Sprintf("%s: failed to save", header.Filename))
			continue
		}
		saved++
	}

	slog.Info("item images uploaded", "admin", claims.Email, "item_id", id, "saved", saved, "failed", len(failures))

	if len(failures) > 0 {
		msg := fmt.Sprintf("Saved %d image(s); skipped: %s", saved, strings.Join(failures, "; "))
		http.Redirect(w, r, "/admin/items/"+id+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/items/"+id+"?success="+url.QueryEscape(fmt.Sprintf("Saved %d image(s).", saved)), http.StatusSeeOther)
}

// AdminItemImageMove handles POST /admin/items/{id}/images/{imageID}/move.
func (s *Server) AdminItemImageMove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	imageID := r.PathValue("imageID")
	direction := r.FormValue("direction")

	if direction != "up" && direction != "down" {
		http.Error(w, "invalid direction", http.StatusBadRequest)
		return
	}

	if err := store.MoveItemImage(r.Context(), s.DB, id, imageID, direction); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to move image", "item_id", id, "image_id", imageID, "error", err)
		http.Redirect(w, r, "/admin/items/"+id+"?error="+url.QueryEscape("failed to reorder images"), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/admin/items/"+id, http.StatusSeeOther)
}
