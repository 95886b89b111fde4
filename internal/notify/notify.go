// Package notify renders and delivers the email notices sent to item owners
// when another user contacts them or claims one of their items.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campusfound/campusfound/internal/model"
)

// ErrNotConfigured is returned by every send when no mail transport is set up.
var ErrNotConfigured = errors.New("email service is not configured")

// ClaimNextSteps are listed in every claim notice.
var ClaimNextSteps = []string{
	"Review the claimant's information and message carefully",
	"Contact them to verify ownership and arrange item handover",
	"Update the claim status on CampusFound after verification",
}

// Message is a rendered email ready for a Mailer.
type Message struct {
	To      string
	Bcc     []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// Notice describes one owner notification: who is told, who triggered it,
// which item it is about and the free-text message.
type Notice struct {
	Owner   model.Contact
	Sender  model.Contact
	Item    model.Item
	Message string
}

// Dispatcher turns notices into messages and hands them to a Mailer.
type Dispatcher struct {
	mailer            Mailer
	recipientOverride string
	monitorAddress    string
	clientURL         string
	templates         *templates
}

// NewDispatcher creates a dispatcher. A nil mailer yields a disabled
// dispatcher whose sends all fail with ErrNotConfigured.
func NewDispatcher(cfg Config, mailer Mailer) (*Dispatcher, error) {
	ts, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		mailer:            mailer,
		recipientOverride: cfg.RecipientOverride,
		monitorAddress:    cfg.MonitorAddress,
		clientURL:         strings.TrimRight(cfg.clientURL(), "/"),
		templates:         ts,
	}, nil
}

// Enabled reports whether a transport is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.mailer != nil
}

type noticeData struct {
	Notice
	ItemURL   string
	NextSteps []string
}

// SendContactNotice tells an item owner that someone wants to get in touch.
func (d *Dispatcher) SendContactNotice(ctx context.Context, n Notice) error {
	return d.sendNotice(ctx, "contact",
		fmt.Sprintf(`CampusFound: Someone contacted you about "%s"`, n.Item.Title), n)
}

// SendClaimNotice tells an item owner that a claim was submitted.
func (d *Dispatcher) SendClaimNotice(ctx context.Context, n Notice) error {
	return d.sendNotice(ctx, "claim",
		fmt.Sprintf(`CampusFound: New Claim for "%s"`, n.Item.Title), n)
}

func (d *Dispatcher) sendNotice(ctx context.Context, page, subject string, n Notice) error {
	if !d.Enabled() {
		return ErrNotConfigured
	}
	if n.Owner.Email == "" {
		return errors.New("owner has no email address")
	}

	text, html, err := d.templates.render(page, noticeData{
		Notice:    n,
		ItemURL:   d.ItemURL(n.Item.ID),
		NextSteps: ClaimNextSteps,
	})
	if err != nil {
		return err
	}

	msg := &Message{
		To:      d.Recipient(n.Owner.Email),
		ReplyTo: n.Sender.Email,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}
	if d.monitorAddress != "" {
		msg.Bcc = []string{d.monitorAddress}
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending %s notice: %w", page, err)
	}
	return nil
}

// SendTest sends a configuration test message straight to the given address.
func (d *Dispatcher) SendTest(ctx context.Context, to string) error {
	if !d.Enabled() {
		return ErrNotConfigured
	}
	if to == "" {
		return errors.New("test recipient required")
	}

	now := time.Now()
	text, html, err := d.templates.render("test", struct{ SentAt time.Time }{now})
	if err != nil {
		return err
	}

	msg := &Message{
		To:      to,
		Subject: "CampusFound Email Test - " + now.Format("2006-01-02 15:04:05"),
		Text:    text,
		HTML:    html,
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending test email: %w", err)
	}
	return nil
}

// Recipient returns where a notice for owner is actually delivered.
func (d *Dispatcher) Recipient(owner string) string {
	if d.recipientOverride != "" {
		return d.recipientOverride
	}
	return owner
}

// ItemURL links to the item's page in the web client.
func (d *Dispatcher) ItemURL(id int64) string {
	return fmt.Sprintf("%s/items/%d", d.clientURL, id)
}
