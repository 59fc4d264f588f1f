package api

import (
	"net/http"

	"github.com/anakovac/homesale/internal/reserve"
)

// ReservationsHandler handles the public reservation endpoint.
type ReservationsHandler struct {
	Reserve *reserve.Service
}

type createReservationRequest struct {
	ItemID            string `json:"item_id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Message           string `json:"message"`
	PreferredPickupAt string `json:"preferred_pickup_at"`
	Website           string `json:"website"`
}

type createReservationResponse struct {
	Message     string            `json:"message"`
	Error       string            `json:"error,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// Create handles POST /api/reservations. The response body always carries a
// safe, displayable message; store detail never leaves the server.
func (h *ReservationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.Reserve.Submit(r.Context(), reserve.Request{
		ItemID:            req.ItemID,
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Message:           req.Message,
		PreferredPickupAt: req.PreferredPickupAt,
		Website:           req.Website,
	})

	switch result.Status {
	case reserve.StatusOK:
		jsonResponse(w, http.StatusCreated, createReservationResponse{Message: result.Message})
	case reserve.StatusInvalid:
		jsonResponse(w, http.StatusBadRequest, createReservationResponse{
			Error:       result.Message,
			FieldErrors: result.FieldErrors,
		})
	case reserve.StatusRateLimited:
		jsonResponse(w, http.StatusTooManyRequests, createReservationResponse{Error: result.Message})
	case reserve.StatusUnavailable:
		jsonResponse(w, http.StatusConflict, createReservationResponse{Error: result.Message})
	default:
		jsonResponse(w, http.StatusInternalServerError, createReservationResponse{Error: result.Message})
	}
}
