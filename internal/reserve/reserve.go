// Package reserve implements the reservation submission flow shared by the
// HTML form and the JSON API: validation, spam filtering, rate limiting,
// the atomic item claim, and the follow-up emails.
package reserve

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anakovac/homesale/internal/mailer"
	"github.com/anakovac/homesale/internal/model"
	"github.com/anakovac/homesale/internal/store"
)

// Submissions from one email address beyond this count within RateWindow
// are rejected.
const (
	RateLimit  = 3
	RateWindow = time.Hour
)

const (
	maxNameLen    = 100
	maxEmailLen   = 200
	maxPhoneLen   = 50
	maxMessageLen = 1000
)

// Status classifies the outcome of a submission.
type Status int

const (
	StatusOK Status = iota
	StatusInvalid
	StatusRateLimited
	StatusUnavailable
	StatusError
)

// Request carries the raw form or JSON fields of a reservation submission.
// Website is the honeypot field and must stay empty for real buyers.
type Request struct {
	ItemID            string
	Name              string
	Email             string
	Phone             string
	Message           string
	PreferredPickupAt string
	Website           string
}

// Result is what both surfaces render. Message is always safe to show to
// the buyer. Reservation is set only when Status is StatusOK and the
// submission actually created one.
type Result struct {
	Status      Status
	Message     string
	FieldErrors map[string]string
	Reservation *model.Reservation
}

// Service runs reservation submissions against the database and dispatches
// notification emails through the mailer.
type Service struct {
	db     *sql.DB
	mailer *mailer.Service
}

func NewService(db *sql.DB, m *mailer.Service) *Service {
	return &Service{db: db, mailer: m}
}

// Submit validates and executes one reservation request. Honeypot hits
// return a success-shaped result without touching the database, so bots
// cannot tell they were filtered.
func (s *Service) Submit(ctx context.Context, req Request) Result {
	// The honeypot wins over everything else: a bot probing with junk in
	// the other fields must not learn which of them failed validation.
	if strings.TrimSpace(req.Website) != "" {
		slog.Info("honeypot triggered, dropping reservation", "item_id", req.ItemID)
		return Result{Status: StatusOK, Message: successMessage}
	}

	fieldErrors, email, pickup := validate(req)
	if len(fieldErrors) > 0 {
		return Result{
			Status:      StatusInvalid,
			Message:     "Please fix the highlighted fields.",
			FieldErrors: fieldErrors,
		}
	}

	count, err := store.CountRecentByEmail(ctx, s.db, email, RateWindow)
	if err != nil {
		slog.Error("failed to count recent reservations", "error", err)
		return errorResult()
	}
	if count >= RateLimit {
		slog.Warn("reservation rate limit hit", "email", email)
		return Result{
			Status:  StatusRateLimited,
			Message: "Too many reservation requests. Please try again later.",
		}
	}

	reservation, err := store.CreateReservation(ctx, s.db, req.ItemID,
		strings.TrimSpace(req.Name), email, strings.TrimSpace(req.Phone),
		strings.TrimSpace(req.Message), pickup)
	if errors.Is(err, store.ErrItemUnavailable) {
		return Result{
			Status:  StatusUnavailable,
			Message: "Sorry, this item is no longer available for reservation.",
		}
	}
	if err != nil {
		slog.Error("failed to create reservation", "item_id", req.ItemID, "error", err)
		return errorResult()
	}

	slog.Info("reservation created",
		"reservation_id", reservation.ID,
		"item_id", reservation.ItemID,
		"email", reservation.CustomerEmail,
	)

	// Email delivery must not hold up the response. The request context
	// dies with the HTTP request, so the sends get their own deadline.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.mailer.SendReservationEmails(sendCtx, mailer.ReservationEmail{
			ItemTitle:         reservation.ItemTitle,
			BuyerName:         reservation.CustomerName,
			BuyerEmail:        reservation.CustomerEmail,
			BuyerPhone:        reservation.CustomerPhone,
			Message:           reservation.Message,
			PreferredPickupAt: reservation.PreferredPickupAt,
		})
	}()

	return Result{
		Status:      StatusOK,
		Message:     successMessage,
		Reservation: reservation,
	}
}

const successMessage = "Your reservation has been submitted. " +
	"We'll be in touch soon to confirm the pickup details."

func errorResult() Result {
	return Result{Status: StatusError, Message: "Something went wrong. Please try again."}
}

// validate checks every field and collects per-field messages. It returns
// the normalized email and the parsed pickup time alongside the errors.
func validate(req Request) (map[string]string, string, *time.Time) {
	fieldErrors := make(map[string]string)

	if uuid.Validate(req.ItemID) != nil {
		fieldErrors["item_id"] = "Invalid item."
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		fieldErrors["name"] = "Name is required."
	} else if len(name) > maxNameLen {
		fieldErrors["name"] = "Name is too long."
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		fieldErrors["email"] = "Email is required."
	} else if len(email) > maxEmailLen {
		fieldErrors["email"] = "Email is too long."
	} else if _, err := mail.ParseAddress(email); err != nil {
		fieldErrors["email"] = "Enter a valid email address."
	}

	if len(strings.TrimSpace(req.Phone)) > maxPhoneLen {
		fieldErrors["phone"] = "Phone number is too long."
	}
	if len(strings.TrimSpace(req.Message)) > maxMessageLen {
		fieldErrors["message"] = "Message is too long."
	}

	var pickup *time.Time
	if raw := strings.TrimSpace(req.PreferredPickupAt); raw != "" {
		t, err := parsePickupTime(raw)
		if err != nil {
			fieldErrors["preferred_pickup_at"] = "Enter a valid pickup time."
		} else {
			pickup = &t
		}
	}

	if len(fieldErrors) > 0 {
		return fieldErrors, "", nil
	}
	return nil, email, pickup
}

// parsePickupTime accepts RFC 3339 or the value of an HTML
// datetime-local input.
func parsePickupTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04", raw, time.Local)
}
