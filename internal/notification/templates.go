package notification

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
)

// Template names.
const (
	ReservationPendingGuest   = "reservation_pending_guest"
	ReservationPendingHost    = "reservation_pending_host"
	ReservationConfirmedGuest = "reservation_confirmed_guest"
	ReservationConfirmedHost  = "reservation_confirmed_host"
)

// BookingEmail is the data every booking template renders from.
type BookingEmail struct {
	RecipientName string
	BookingNumber string
	ListingTitle  string
	City          string
	CheckIn       string
	CheckOut      string
	Nights        int
	GuestCount    int
	Total         int64
	Currency      string
	BookingURL    string
}

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var templateSources = map[string][2]string{
	ReservationPendingGuest: {
		"Your reservation request {{.BookingNumber}} is pending",
		`Hello {{.RecipientName}},

Your reservation at "{{.ListingTitle}}" in {{.City}} is pending payment.

Dates: {{.CheckIn}} to {{.CheckOut}} ({{.Nights}} nights, {{.GuestCount}} guests)
Total: {{amount .Total}} {{.Currency}}

Complete your payment here: {{.BookingURL}}
`,
	},
	ReservationPendingHost: {
		"New reservation request {{.BookingNumber}} for {{.ListingTitle}}",
		`Hello {{.RecipientName}},

A guest has requested "{{.ListingTitle}}".

Dates: {{.CheckIn}} to {{.CheckOut}} ({{.Nights}} nights, {{.GuestCount}} guests)
Total: {{amount .Total}} {{.Currency}}

Review the booking: {{.BookingURL}}
`,
	},
	ReservationConfirmedGuest: {
		"Reservation {{.BookingNumber}} confirmed",
		`Hello {{.RecipientName}},

Your payment was received and your stay at "{{.ListingTitle}}" in {{.City}} is confirmed.

Dates: {{.CheckIn}} to {{.CheckOut}}
Paid: {{amount .Total}} {{.Currency}}

Booking details: {{.BookingURL}}
`,
	},
	ReservationConfirmedHost: {
		"Reservation {{.BookingNumber}} confirmed for {{.ListingTitle}}",
		`Hello {{.RecipientName}},

The reservation of "{{.ListingTitle}}" from {{.CheckIn}} to {{.CheckOut}} has been paid and is confirmed.

Booking details: {{.BookingURL}}
`,
	},
}

// Notifier renders booking templates and hands them to a Sender.
type Notifier struct {
	sender    Sender
	templates map[string]emailTemplate
}

// NewNotifier parses all templates.
func NewNotifier(sender Sender) (*Notifier, error) {
	funcs := template.FuncMap{"amount": FormatAmount}
	parsed := make(map[string]emailTemplate, len(templateSources))
	for name, src := range templateSources {
		subject, err := template.New(name + "_subject").Funcs(funcs).Parse(src[0])
		if err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", name, err)
		}
		body, err := template.New(name + "_body").Funcs(funcs).Parse(src[1])
		if err != nil {
			return nil, fmt.Errorf("parse %s body: %w", name, err)
		}
		parsed[name] = emailTemplate{subject: subject, body: body}
	}
	return &Notifier{sender: sender, templates: parsed}, nil
}

// Render produces the subject and plain-text body for a template.
func (n *Notifier) Render(name string, data BookingEmail) (string, string, error) {
	tpl, ok := n.templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := tpl.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", name, err)
	}
	return subject.String(), body.String(), nil
}

// Send renders the named template and sends it to one address.
func (n *Notifier) Send(ctx context.Context, name, to string, data BookingEmail) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient has no email address")
	}
	subject, body, err := n.Render(name, data)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Email{To: []string{to}, Subject: subject, TextBody: body})
}

// FormatAmount groups thousands with spaces: 85500 -> "85 500".
func FormatAmount(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
