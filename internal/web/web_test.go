package web

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anakovac/homesale/internal/auth"
	"github.com/anakovac/homesale/internal/db"
	"github.com/anakovac/homesale/internal/mailer"
	"github.com/anakovac/homesale/internal/media"
	"github.com/anakovac/homesale/internal/model"
	"github.com/anakovac/homesale/internal/store"
)

const adminEmail = "admin@example.com"

// mailCapture records outgoing email and signals each send, so tests can
// wait for the fire-and-forget goroutines.
type mailCapture struct {
	mu   sync.Mutex
	sent []capturedMail
	ch   chan struct{}
}

type capturedMail struct {
	to      string
	subject string
	html    string
}

func newMailCapture() *mailCapture {
	return &mailCapture{ch: make(chan struct{}, 16)}
}

func (c *mailCapture) Send(_ context.Context, to []string, subject, html string) error {
	c.mu.Lock()
	c.sent = append(c.sent, capturedMail{to: to[0], subject: subject, html: html})
	c.mu.Unlock()
	c.ch <- struct{}{}
	return nil
}

func (c *mailCapture) waitForMail(t *testing.T) capturedMail {
	t.Helper()
	select {
	case <-c.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for email")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent[len(c.sent)-1]
}

func setupWebServer(t *testing.T) (*httptest.Server, *sql.DB, *mailCapture) {
	t.Helper()
	database := db.NewTestDB(t)

	capture := newMailCapture()
	m := mailer.NewService(capture, []string{adminEmail}, "http://example.test")

	mediaStore, err := media.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to set up media store: %v", err)
	}

	allowlist := auth.NewAllowlist([]string{adminEmail})
	router, err := NewRouter(database, "test-secret", allowlist, m, mediaStore, "http://example.test")
	if err != nil {
		t.Fatalf("failed to set up router: %v", err)
	}

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, database, capture
}

// noRedirectClient returns the response of the first request without
// following redirects.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// loggedInClient drives the full magic-link flow and returns a client whose
// cookie jar holds an admin session.
func loggedInClient(t *testing.T, server *httptest.Server, capture *mailCapture) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	resp, err := client.PostForm(server.URL+"/admin/login", url.Values{"email": {adminEmail}})
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	resp.Body.Close()

	mail := capture.waitForMail(t)
	token := extractLoginToken(t, mail.html)

	resp, err = client.Get(server.URL + "/auth/confirm?token=" + url.QueryEscape(token))
	if err != nil {
		t.Fatalf("confirm request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Manage items") {
		t.Fatalf("expected to land on the admin items page, got %d", resp.StatusCode)
	}
	return client
}

var tokenPattern = regexp.MustCompile(`token=([^"&]+)`)

func extractLoginToken(t *testing.T, html string) string {
	t.Helper()
	match := tokenPattern.FindStringSubmatch(html)
	if match == nil {
		t.Fatalf("no token link in email: %s", html)
	}
	token, err := url.QueryUnescape(match[1])
	if err != nil {
		t.Fatalf("failed to unescape token: %v", err)
	}
	return token
}

func seedItem(t *testing.T, database *sql.DB, title string) *model.Item {
	t.Helper()
	item, err := store.CreateItem(context.Background(), database, title, "",
		decimal.NewFromInt(50), "furniture", model.ConditionGood, "Center")
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	return item
}

func TestCatalogPages(t *testing.T) {
	server, database, _ := setupWebServer(t)
	item := seedItem(t, database, "Walnut desk")

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Walnut desk") {
		t.Errorf("expected catalog to list the item, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/items/" + item.ID)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Reserve this item") {
		t.Errorf("expected a detail page with the reservation form, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/items/00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown item, got %d", resp.StatusCode)
	}
}

func TestReserveFormFlow(t *testing.T) {
	server, database, _ := setupWebServer(t)
	item := seedItem(t, database, "Armchair")

	client := noRedirectClient()
	resp, err := client.PostForm(server.URL+"/items/"+item.ID+"/reserve", url.Values{
		"name":  {"Ana"},
		"email": {"ana@example.com"},
	})
	if err != nil {
		t.Fatalf("reserve request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "reserved=1") {
		t.Errorf("expected success redirect, got %q", loc)
	}

	got, err := store.GetItem(context.Background(), database, item.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if got.Status != model.ItemStatusReserved {
		t.Errorf("expected item reserved, got %q", got.Status)
	}

	// The success page shows the confirmation banner.
	pageResp, err := http.Get(server.URL + "/items/" + item.ID + "?reserved=1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(pageResp.Body)
	pageResp.Body.Close()
	if !strings.Contains(string(body), "Your reservation has been submitted") {
		t.Error("expected success banner on the detail page")
	}
}

func TestReserveFormValidation(t *testing.T) {
	server, database, _ := setupWebServer(t)
	item := seedItem(t, database, "Mirror")

	resp, err := http.PostForm(server.URL+"/items/"+item.ID+"/reserve", url.Values{
		"name":  {""},
		"email": {"not-an-email"},
		"phone": {"123"},
	})
	if err != nil {
		t.Fatalf("reserve request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	// The form re-renders with per-field messages and keeps what was typed.
	if !strings.Contains(string(body), "Name is required.") ||
		!strings.Contains(string(body), "Enter a valid email address.") {
		t.Error("expected field error messages in the re-rendered form")
	}
	if !strings.Contains(string(body), `value="123"`) {
		t.Error("expected the submitted phone value to be kept")
	}

	got, err := store.GetItem(context.Background(), database, item.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if got.Status != model.ItemStatusAvailable {
		t.Errorf("invalid submission must not claim the item, got %q", got.Status)
	}
}

func TestReserveFormHoneypot(t *testing.T) {
	server, database, _ := setupWebServer(t)
	item := seedItem(t, database, "Bike")

	client := noRedirectClient()
	resp, err := client.PostForm(server.URL+"/items/"+item.ID+"/reserve", url.Values{
		"name":    {"Bot"},
		"email":   {"bot@example.com"},
		"website": {"https://spam.example.com"},
	})
	if err != nil {
		t.Fatalf("reserve request failed: %v", err)
	}
	resp.Body.Close()

	// Indistinguishable from a real success.
	if resp.StatusCode != http.StatusSeeOther || !strings.Contains(resp.Header.Get("Location"), "reserved=1") {
		t.Errorf("honeypot response must look like success, got %d %q",
			resp.StatusCode, resp.Header.Get("Location"))
	}

	got, err := store.GetItem(context.Background(), database, item.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if got.Status != model.ItemStatusAvailable {
		t.Errorf("honeypot must not claim the item, got %q", got.Status)
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	server, _, _ := setupWebServer(t)

	client := noRedirectClient()
	for _, path := range []string{"/admin/items", "/admin/reservations", "/admin/import"} {
		resp, err := client.Get(server.URL + path)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/login" {
			t.Errorf("%s: expected redirect to login, got %d %q",
				path, resp.StatusCode, resp.Header.Get("Location"))
		}
	}
}

func TestMagicLinkLogin(t *testing.T) {
	server, _, capture := setupWebServer(t)

	client := loggedInClient(t, server, capture)

	// The session cookie now opens the admin area.
	resp, err := client.Get(server.URL + "/admin/reservations")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with a session, got %d", resp.StatusCode)
	}
}

func TestMagicLinkSingleUse(t *testing.T) {
	server, _, capture := setupWebServer(t)

	resp, err := http.PostForm(server.URL+"/admin/login", url.Values{"email": {adminEmail}})
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	resp.Body.Close()

	mail := capture.waitForMail(t)
	token := extractLoginToken(t, mail.html)

	confirmURL := server.URL + "/auth/confirm?token=" + url.QueryEscape(token)
	resp, err = http.Get(confirmURL)
	if err != nil {
		t.Fatalf("confirm request failed: %v", err)
	}
	resp.Body.Close()

	// Second use of the same link must fail.
	resp, err = http.Get(confirmURL)
	if err != nil {
		t.Fatalf("confirm request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "invalid or has expired") {
		t.Error("expected the reused link to be rejected")
	}
}

func TestLoginDoesNotRevealAllowlist(t *testing.T) {
	server, _, capture := setupWebServer(t)

	resp, err := http.PostForm(server.URL+"/admin/login", url.Values{"email": {"nobody@example.com"}})
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	// Same "sent" page as for a real admin, and no email goes out.
	if !strings.Contains(string(body), "sign-in link is on its way") {
		t.Error("expected the neutral sent page for unknown addresses")
	}
	select {
	case <-capture.ch:
		t.Error("no email should be sent for unknown addresses")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	server, _, capture := setupWebServer(t)
	client := loggedInClient(t, server, capture)

	resp, err := client.PostForm(server.URL+"/admin/logout", nil)
	if err != nil {
		t.Fatalf("logout request failed: %v", err)
	}
	resp.Body.Close()

	check := noRedirectClient()
	check.Jar = client.Jar
	resp, err = check.Get(server.URL + "/admin/items")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected the revoked session to be rejected, got %d", resp.StatusCode)
	}
}

func TestAdminItemLifecycle(t *testing.T) {
	server, database, capture := setupWebServer(t)
	client := loggedInClient(t, server, capture)

	// Create.
	resp, err := client.PostForm(server.URL+"/admin/items", url.Values{
		"title":     {"Garden bench"},
		"price":     {"75.50"},
		"category":  {"outdoor"},
		"condition": {"fair"},
	})
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	resp.Body.Close()

	items, err := store.ListItems(context.Background(), database, "", "")
	if err != nil {
		t.Fatalf("failed to list items: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Garden bench" {
		t.Fatalf("expected the created item, got %+v", items)
	}
	item := items[0]
	if !item.Price.Equal(decimal.RequireFromString("75.50")) {
		t.Errorf("expected price 75.50, got %s", item.Price)
	}

	// Edit.
	resp, err = client.PostForm(server.URL+"/admin/items/"+item.ID, url.Values{
		"title":     {"Garden bench (repainted)"},
		"price":     {"80"},
		"category":  {"outdoor"},
		"condition": {"good"},
	})
	if err != nil {
		t.Fatalf("update request failed: %v", err)
	}
	resp.Body.Close()

	got, err := store.GetItem(context.Background(), database, item.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if got.Title != "Garden bench (repainted)" || got.Condition != model.ConditionGood {
		t.Errorf("expected updated fields, got %+v", got)
	}

	// Mark sold, then relist.
	for _, want := range []string{model.ItemStatusSold, model.ItemStatusAvailable} {
		resp, err = client.PostForm(server.URL+"/admin/items/"+item.ID+"/status",
			url.Values{"status": {"toggle"}})
		if err != nil {
			t.Fatalf("status request failed: %v", err)
		}
		resp.Body.Close()

		got, err = store.GetItem(context.Background(), database, item.ID)
		if err != nil {
			t.Fatalf("failed to get item: %v", err)
		}
		if got.Status != want {
			t.Errorf("expected status %q, got %q", want, got.Status)
		}
	}
}

func TestAdminReservationActions(t *testing.T) {
	server, database, capture := setupWebServer(t)
	client := loggedInClient(t, server, capture)
	ctx := context.Background()

	// Confirm, then mark sold.
	item := seedItem(t, database, "Dresser")
	reservation, err := store.CreateReservation(ctx, database, item.ID, "Ana", "ana@example.com", "", "", nil)
	if err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}

	resp, err := client.PostForm(server.URL+"/admin/reservations/"+reservation.ID+"/confirm", nil)
	if err != nil {
		t.Fatalf("confirm request failed: %v", err)
	}
	resp.Body.Close()

	got, err := store.GetReservation(ctx, database, reservation.ID)
	if err != nil {
		t.Fatalf("failed to get reservation: %v", err)
	}
	if got.Status != model.ReservationStatusConfirmed {
		t.Errorf("expected confirmed reservation, got %q", got.Status)
	}

	resp, err = client.PostForm(server.URL+"/admin/reservations/"+reservation.ID+"/sold", nil)
	if err != nil {
		t.Fatalf("sold request failed: %v", err)
	}
	resp.Body.Close()

	gotItem, err := store.GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if gotItem.Status != model.ItemStatusSold {
		t.Errorf("expected sold item, got %q", gotItem.Status)
	}

	// Cancelling a pending reservation relists the item.
	item2 := seedItem(t, database, "Nightstand")
	reservation2, err := store.CreateReservation(ctx, database, item2.ID, "Bob", "bob@example.com", "", "", nil)
	if err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}

	resp, err = client.PostForm(server.URL+"/admin/reservations/"+reservation2.ID+"/cancel", nil)
	if err != nil {
		t.Fatalf("cancel request failed: %v", err)
	}
	resp.Body.Close()

	got2, err := store.GetReservation(ctx, database, reservation2.ID)
	if err != nil {
		t.Fatalf("failed to get reservation: %v", err)
	}
	if got2.Status != model.ReservationStatusCancelled {
		t.Errorf("expected cancelled reservation, got %q", got2.Status)
	}
	gotItem2, err := store.GetItem(ctx, database, item2.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if gotItem2.Status != model.ItemStatusAvailable {
		t.Errorf("expected relisted item, got %q", gotItem2.Status)
	}
}

func TestAdminImport(t *testing.T) {
	server, database, capture := setupWebServer(t)
	client := loggedInClient(t, server, capture)

	payload := `[
		{"title": "Desk lamp", "price": "12.50", "category": "decor", "condition": "good"},
		{"title": "", "price": "5", "category": "books", "condition": "fair"},
		{"title": "Toolbox", "price": "20", "category": "tools", "condition": "bad_value"}
	]`

	resp, err := client.PostForm(server.URL+"/admin/import", url.Values{"payload": {payload}})
	if err != nil {
		t.Fatalf("import request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !strings.Contains(string(body), "Imported 1 of 3") {
		t.Error("expected a partial import summary")
	}
	if !strings.Contains(string(body), "title is required") ||
		!strings.Contains(string(body), "unknown condition") {
		t.Error("expected per-row error details")
	}

	items, err := store.ListItems(context.Background(), database, "", "")
	if err != nil {
		t.Fatalf("failed to list items: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Desk lamp" {
		t.Errorf("expected only the valid row to be imported, got %+v", items)
	}
}
