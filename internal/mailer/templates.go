package mailer

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

var emailFuncs = template.FuncMap{
	"pickupTime": func(t *time.Time) string {
		if t == nil {
			return "no preference"
		}
		return t.Format("Mon, Jan 2 2006 at 15:04")
	},
}

var adminTemplate = template.Must(template.New("admin").Funcs(emailFuncs).Parse(`<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;color:#1c1917;">
  <h2>New reservation</h2>
  <p>Someone wants to pick up <strong>{{.Data.ItemTitle}}</strong>.</p>
  <table cellpadding="4">
    <tr><td>Name</td><td><strong>{{.Data.BuyerName}}</strong></td></tr>
    <tr><td>Email</td><td><a href="mailto:{{.Data.BuyerEmail}}">{{.Data.BuyerEmail}}</a></td></tr>
    <tr><td>Phone</td><td>{{if .Data.BuyerPhone}}{{.Data.BuyerPhone}}{{else}}&mdash;{{end}}</td></tr>
    <tr><td>Pickup</td><td>{{pickupTime .Data.PreferredPickupAt}}</td></tr>
  </table>
  {{if .Data.Message}}<p>Message: <em>&quot;{{.Data.Message}}&quot;</em></p>{{end}}
  <p><a href="{{.SiteURL}}/admin/reservations">View in admin</a></p>
</body>
</html>`))

var buyerTemplate = template.Must(template.New("buyer").Funcs(emailFuncs).Parse(`<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;color:#1c1917;">
  <h2>Reservation received</h2>
  <p>Hi <strong>{{.Data.BuyerName}}</strong>,</p>
  <p>Your reservation request for <strong>{{.Data.ItemTitle}}</strong> has been
  submitted. We'll review it and reach out at {{.Data.BuyerEmail}} to confirm
  the pickup details.</p>
  <p>Preferred pickup: {{pickupTime .Data.PreferredPickupAt}}</p>
  <ul>
    <li>We'll review your request shortly.</li>
    <li>You'll receive a confirmation once we approve it.</li>
    <li>We'll agree on a pickup time that works for both of us.</li>
  </ul>
  <p>Questions? Just reply to this email.</p>
</body>
</html>`))

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;color:#1c1917;">
  <h2>Sign in to Home Sale</h2>
  <p>Click the link below to sign in to the admin area. The link works once
  and expires in 15 minutes.</p>
  <p><a href="{{.ConfirmURL}}">Sign in</a></p>
  <p>If you didn't request this, you can ignore this email.</p>
</body>
</html>`))

func renderReservationEmails(data ReservationEmail, siteURL string) (adminHTML, buyerHTML string, err error) {
	payload := struct {
		Data    ReservationEmail
		SiteURL string
	}{data, siteURL}

	var admin, buyer strings.Builder
	if err := adminTemplate.Execute(&admin, payload); err != nil {
		return "", "", fmt.Errorf("rendering admin email: %w", err)
	}
	if err := buyerTemplate.Execute(&buyer, payload); err != nil {
		return "", "", fmt.Errorf("rendering buyer email: %w", err)
	}
	return admin.String(), buyer.String(), nil
}

func renderLoginEmail(confirmURL string) (string, error) {
	var out strings.Builder
	err := loginTemplate.Execute(&out, struct{ ConfirmURL string }{confirmURL})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
