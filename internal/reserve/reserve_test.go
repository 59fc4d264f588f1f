package reserve

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anakovac/homesale/internal/db"
	"github.com/anakovac/homesale/internal/mailer"
	"github.com/anakovac/homesale/internal/model"
	"github.com/anakovac/homesale/internal/store"
)

type recordingSender struct {
	mu    sync.Mutex
	sends []string
	done  chan struct{}
}

func newRecordingSender() *recordingSender {
	return &recordingSender{done: make(chan struct{}, 16)}
}

func (r *recordingSender) Send(_ context.Context, to []string, subject, _ string) error {
	r.mu.Lock()
	r.sends = append(r.sends, to[0])
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingSender) waitFor(t *testing.T, n int) []string {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for email %d of %d", i+1, n)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sends...)
}

func newTestService(t *testing.T) (*Service, *sql.DB, *recordingSender) {
	t.Helper()
	database := db.NewTestDB(t)
	sender := newRecordingSender()
	m := mailer.NewService(sender, []string{"admin@example.com"}, "http://localhost:8080")
	return NewService(database, m), database, sender
}

func availableItem(t *testing.T, database *sql.DB) *model.Item {
	t.Helper()
	item, err := store.CreateItem(context.Background(), database,
		"Bookshelf", "Five shelves", decimal.NewFromInt(40),
		"furniture", model.ConditionGood, "Trnovo")
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	return item
}

func validRequest(itemID string) Request {
	return Request{
		ItemID: itemID,
		Name:   "Ana Kovač",
		Email:  "Ana@Example.com",
		Phone:  "+386 40 123 456",
	}
}

func TestSubmitCreatesReservationAndSendsEmails(t *testing.T) {
	svc, database, sender := newTestService(t)
	item := availableItem(t, database)

	result := svc.Submit(context.Background(), validRequest(item.ID))
	if result.Status != StatusOK {
		t.Fatalf("expected StatusOK, got %d (%s)", result.Status, result.Message)
	}
	if result.Reservation == nil {
		t.Fatal("expected a reservation in the result")
	}
	if result.Reservation.CustomerEmail != "ana@example.com" {
		t.Errorf("expected normalized email, got %q", result.Reservation.CustomerEmail)
	}

	got, err := store.GetItem(context.Background(), database, item.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if got.Status != model.ItemStatusReserved {
		t.Errorf("expected item to be reserved, got %q", got.Status)
	}

	recipients := sender.waitFor(t, 2)
	seen := map[string]bool{}
	for _, r := range recipients {
		seen[r] = true
	}
	if !seen["admin@example.com"] || !seen["ana@example.com"] {
		t.Errorf("expected admin and buyer emails, got %v", recipients)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, database, _ := newTestService(t)
	item := availableItem(t, database)

	tests := []struct {
		name   string
		modify func(*Request)
		field  string
	}{
		{"bad item id", func(r *Request) { r.ItemID = "not-a-uuid" }, "item_id"},
		{"missing name", func(r *Request) { r.Name = "  " }, "name"},
		{"long name", func(r *Request) { r.Name = strings.Repeat("a", 101) }, "name"},
		{"missing email", func(r *Request) { r.Email = "" }, "email"},
		{"invalid email", func(r *Request) { r.Email = "not-an-email" }, "email"},
		{"long email", func(r *Request) { r.Email = strings.Repeat("a", 195) + "@b.com" }, "email"},
		{"long phone", func(r *Request) { r.Phone = strings.Repeat("1", 51) }, "phone"},
		{"long message", func(r *Request) { r.Message = strings.Repeat("m", 1001) }, "message"},
		{"bad pickup time", func(r *Request) { r.PreferredPickupAt = "tomorrow-ish" }, "preferred_pickup_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(item.ID)
			tt.modify(&req)

			result := svc.Submit(context.Background(), req)
			if result.Status != StatusInvalid {
				t.Fatalf("expected StatusInvalid, got %d", result.Status)
			}
			if _, ok := result.FieldErrors[tt.field]; !ok {
				t.Errorf("expected error on field %q, got %v", tt.field, result.FieldErrors)
			}
		})
	}

	// Nothing above should have claimed the item.
	got, err := store.GetItem(context.Background(), database, item.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if got.Status != model.ItemStatusAvailable {
		t.Errorf("expected item to stay available, got %q", got.Status)
	}
}

func TestSubmitPickupTimeFormats(t *testing.T) {
	svc, database, _ := newTestService(t)

	for _, raw := range []string{"2026-09-05T14:30:00Z", "2026-09-05T14:30"} {
		item := availableItem(t, database)
		req := validRequest(item.ID)
		req.PreferredPickupAt = raw

		result := svc.Submit(context.Background(), req)
		if result.Status != StatusOK {
			t.Fatalf("pickup %q: expected StatusOK, got %d (%v)", raw, result.Status, result.FieldErrors)
		}
		if result.Reservation.PreferredPickupAt == nil {
			t.Errorf("pickup %q: expected a parsed pickup time", raw)
		}
	}
}

func TestSubmitHoneypot(t *testing.T) {
	svc, database, sender := newTestService(t)
	item := availableItem(t, database)

	req := validRequest(item.ID)
	req.Website = "https://spam.example.com"

	result := svc.Submit(context.Background(), req)
	if result.Status != StatusOK {
		t.Fatalf("honeypot response must look like success, got %d", result.Status)
	}
	if result.Reservation != nil {
		t.Error("honeypot submission must not create a reservation")
	}

	got, err := store.GetItem(context.Background(), database, item.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if got.Status != model.ItemStatusAvailable {
		t.Errorf("expected item to stay available, got %q", got.Status)
	}

	reservations, err := store.ListReservations(context.Background(), database, "")
	if err != nil {
		t.Fatalf("failed to list reservations: %v", err)
	}
	if len(reservations) != 0 {
		t.Errorf("expected no reservations, got %d", len(reservations))
	}

	select {
	case <-sender.done:
		t.Error("honeypot submission must not send email")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubmitHoneypotWinsOverInvalidFields(t *testing.T) {
	svc, database, _ := newTestService(t)
	item := availableItem(t, database)

	req := Request{
		ItemID:  item.ID,
		Email:   "not-an-email",
		Website: "https://spam.example.com",
	}

	result := svc.Submit(context.Background(), req)
	if result.Status != StatusOK {
		t.Fatalf("honeypot must mask invalid fields, got %d (%v)", result.Status, result.FieldErrors)
	}
	if len(result.FieldErrors) != 0 {
		t.Errorf("honeypot response must not carry field errors, got %v", result.FieldErrors)
	}
	if result.Reservation != nil {
		t.Error("honeypot submission must not create a reservation")
	}

	reservations, err := store.ListReservations(context.Background(), database, "")
	if err != nil {
		t.Fatalf("failed to list reservations: %v", err)
	}
	if len(reservations) != 0 {
		t.Errorf("expected no reservations, got %d", len(reservations))
	}
}

func TestSubmitRateLimit(t *testing.T) {
	svc, database, _ := newTestService(t)

	for i := 0; i < RateLimit; i++ {
		item := availableItem(t, database)
		result := svc.Submit(context.Background(), validRequest(item.ID))
		if result.Status != StatusOK {
			t.Fatalf("submission %d: expected StatusOK, got %d", i+1, result.Status)
		}
	}

	item := availableItem(t, database)
	result := svc.Submit(context.Background(), validRequest(item.ID))
	if result.Status != StatusRateLimited {
		t.Fatalf("expected StatusRateLimited, got %d", result.Status)
	}

	got, err := store.GetItem(context.Background(), database, item.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if got.Status != model.ItemStatusAvailable {
		t.Errorf("rate-limited submission must not claim the item, got %q", got.Status)
	}
}

func TestSubmitUnavailableItem(t *testing.T) {
	svc, database, _ := newTestService(t)
	item := availableItem(t, database)

	if err := store.SetItemStatus(context.Background(), database, item.ID, model.ItemStatusSold); err != nil {
		t.Fatalf("failed to mark item sold: %v", err)
	}

	result := svc.Submit(context.Background(), validRequest(item.ID))
	if result.Status != StatusUnavailable {
		t.Fatalf("expected StatusUnavailable, got %d", result.Status)
	}
	if !strings.Contains(result.Message, "no longer available") {
		t.Errorf("unexpected message %q", result.Message)
	}
}
