// Package mailer sends the transactional emails: reservation notifications
// and admin magic links. Delivery is best-effort; reservation email failures
// are logged and never surface to the buyer.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mail "github.com/wneessen/go-mail"
)

// Sender delivers a single HTML email.
type Sender interface {
	Send(ctx context.Context, to []string, subject, html string) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender creates a sender for the given relay. Credentials are
// optional; without a username the connection is unauthenticated.
func NewSMTPSender(host string, port int, username, password, from string) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: from}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to []string, subject, html string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("setting recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

// NoopSender drops all mail. Used when SMTP is not configured so the rest
// of the application behaves normally.
type NoopSender struct{}

func (NoopSender) Send(_ context.Context, to []string, subject, _ string) error {
	slog.Warn("email not configured, dropping message", "to", to, "subject", subject)
	return nil
}

// Service builds and dispatches the application's emails.
type Service struct {
	sender      Sender
	adminEmails []string
	siteURL     string
}

// NewService wires a sender with the admin recipient list and the site base
// URL used inside email bodies.
func NewService(sender Sender, adminEmails []string, siteURL string) *Service {
	return &Service{sender: sender, adminEmails: adminEmails, siteURL: siteURL}
}

// ReservationEmail carries everything the reservation emails need.
type ReservationEmail struct {
	ItemTitle         string
	BuyerName         string
	BuyerEmail        string
	BuyerPhone        string
	Message           string
	PreferredPickupAt *time.Time
}

// SendReservationEmails dispatches the admin notification and the buyer
// confirmation in parallel. Each failure is logged on its own; neither can
// affect the already-committed reservation, so nothing is returned.
func (s *Service) SendReservationEmails(ctx context.Context, data ReservationEmail) {
	adminHTML, buyerHTML, err := renderReservationEmails(data, s.siteURL)
	if err != nil {
		slog.Error("failed to render reservation emails", "item", data.ItemTitle, "error", err)
		return
	}

	var wg sync.WaitGroup
	send := func(label string, to []string, subject, html string) {
		defer wg.Done()
		if err := s.sender.Send(ctx, to, subject, html); err != nil {
			slog.Error("failed to send reservation email",
				"kind", label, "item", data.ItemTitle, "error", err)
		}
	}

	wg.Add(2)
	go send("admin notification", s.adminEmails, "New reservation: "+data.ItemTitle, adminHTML)
	go send("buyer confirmation", []string{data.BuyerEmail}, "Your reservation for "+data.ItemTitle, buyerHTML)
	wg.Wait()
}

// SendLoginLink emails a magic sign-in link to an admin.
func (s *Service) SendLoginLink(ctx context.Context, email, confirmURL string) error {
	html, err := renderLoginEmail(confirmURL)
	if err != nil {
		return fmt.Errorf("rendering login email: %w", err)
	}
	if err := s.sender.Send(ctx, []string{email}, "Your Home Sale sign-in link", html); err != nil {
		return fmt.Errorf("sending login email: %w", err)
	}
	return nil
}
