package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/anakovac/homesale/internal/model"
	"github.com/anakovac/homesale/internal/store"
)

// importRow is one entry of the bulk import payload.
type importRow struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Condition   string          `json:"condition"`
	PickupArea  string          `json:"pickup_area"`
}

// ImportRowResult reports the outcome of one imported row.
type ImportRowResult struct {
	Row   int
	Title string
	Error string
}

type importPayload struct {
	PageData
	Payload  string
	Results  []ImportRowResult
	Imported int
	Failed   int
}

// AdminImportPage handles GET /admin/import.
func (s *Server) AdminImportPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	s.Templates.Render(w, "admin_import.html", &importPayload{
		PageData: PageData{Title: "Import items", User: claims},
	})
}

// AdminImportSubmit handles POST /admin/import. The payload is a JSON array
// of items; valid rows are inserted, invalid rows are reported per row, and
// one bad row does not block the rest.
func (s *Server) AdminImportSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	payload := r.FormValue("payload")

	render := func(data *importPayload) {
		data.User = claims
		data.Title = "Import items"
		data.Payload = payload
		s.Templates.Render(w, "admin_import.html", data)
	}

	var rows []importRow
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		render(&importPayload{PageData: PageData{Error: "The payload is not a valid JSON array of items."}})
		return
	}
	if len(rows) == 0 {
		render(&importPayload{PageData: PageData{Error: "The payload contains no items."}})
		return
	}

	var results []ImportRowResult
	imported := 0
	for i, row := range rows {
		result := ImportRowResult{Row: i + 1, Title: row.Title}

		if msg := validateImportRow(row); msg != "" {
			result.Error = msg
		} else if _, err := store.CreateItem(r.Context(), s.DB,
			strings.TrimSpace(row.Title), strings.TrimSpace(row.Description),
			row.Price, row.Category, row.Condition, strings.TrimSpace(row.PickupArea)); err != nil {
			slog.Error("failed to import item", "row", i+1, "error", err)
			result.Error = "failed to save"
		} else {
			imported++
		}
		results = append(results, result)
	}

	slog.Info("items imported", "admin", claims.Email, "imported", imported, "failed", len(rows)-imported)

	data := &importPayload{
		Results:  results,
		Imported: imported,
		Failed:   len(rows) - imported,
	}
	switch {
	case imported == len(rows):
		data.Success = fmt.Sprintf("Imported all %d item(s).", imported)
	case imported > 0:
		data.Error = fmt.Sprintf("Imported %d of %d item(s); see the rows below.", imported, len(rows))
	default:
		data.Error = "No items were imported; see the rows below."
	}
	render(data)
}

func validateImportRow(row importRow) string {
	if strings.TrimSpace(row.Title) == "" {
		return "title is required"
	}
	if row.Price.IsNegative() {
		return "price must be non-negative"
	}
	if !model.ValidCategory(row.Category) {
		return fmt.Sprintf("unknown category %q", row.Category)
	}
	if !model.ValidCondition(row.Condition) {
		return fmt.Sprintf("unknown condition %q", row.Condition)
	}
	return ""
}
