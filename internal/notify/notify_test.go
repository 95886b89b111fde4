package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/campusfound/campusfound/internal/model"
)

type fakeMailer struct {
	sent []*Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg *Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func testNotice() Notice {
	return Notice{
		Owner:  model.Contact{Name: "Alice", Email: "alice@campus.edu"},
		Sender: model.Contact{Name: "Bob", Email: "bob@campus.edu", Phone: "555-0101", StudentID: "S1234"},
		Item: model.Item{
			ID:          42,
			Title:       "Blue Backpack",
			Category:    "Bags",
			Type:        model.ItemTypeFound,
			Description: "Navy blue with a keychain",
			Location:    "Library",
		},
		Message: "I think this is mine",
	}
}

func newTestDispatcher(t *testing.T, cfg Config, m Mailer) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(cfg, m)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

func TestDisabledDispatcher(t *testing.T) {
	d := newTestDispatcher(t, Config{}, nil)
	if d.Enabled() {
		t.Fatal("dispatcher without mailer should be disabled")
	}

	ctx := context.Background()
	if err := d.SendContactNotice(ctx, testNotice()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("contact: expected ErrNotConfigured, got %v", err)
	}
	if err := d.SendClaimNotice(ctx, testNotice()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("claim: expected ErrNotConfigured, got %v", err)
	}
	if err := d.SendTest(ctx, "x@campus.edu"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("test: expected ErrNotConfigured, got %v", err)
	}
}

func TestContactNotice(t *testing.T) {
	m := &fakeMailer{}
	d := newTestDispatcher(t, Config{ClientURL: "https://found.example.edu/", MonitorAddress: "monitor@campus.edu"}, m)

	if err := d.SendContactNotice(context.Background(), testNotice()); err != nil {
		t.Fatalf("SendContactNotice: %v", err)
	}
	if len(m.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(m.sent))
	}

	msg := m.sent[0]
	if msg.Subject != `CampusFound: Someone contacted you about "Blue Backpack"` {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if msg.To != "alice@campus.edu" {
		t.Errorf("expected owner as recipient, got %q", msg.To)
	}
	if msg.ReplyTo != "bob@campus.edu" {
		t.Errorf("expected sender as reply-to, got %q", msg.ReplyTo)
	}
	if len(msg.Bcc) != 1 || msg.Bcc[0] != "monitor@campus.edu" {
		t.Errorf("expected monitor bcc, got %v", msg.Bcc)
	}

	for _, want := range []string{"https://found.example.edu/items/42", "I think this is mine", "S1234", "FOUND"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("text body missing %q:\n%s", want, msg.Text)
		}
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("html body missing %q", want)
		}
	}
	if !strings.Contains(msg.Text, "- Student ID: S1234") {
		t.Errorf("text body missing student ID line:\n%s", msg.Text)
	}
}

func TestClaimNotice(t *testing.T) {
	m := &fakeMailer{}
	d := newTestDispatcher(t, Config{}, m)

	if err := d.SendClaimNotice(context.Background(), testNotice()); err != nil {
		t.Fatalf("SendClaimNotice: %v", err)
	}

	msg := m.sent[0]
	if msg.Subject != `CampusFound: New Claim for "Blue Backpack"` {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if len(msg.Bcc) != 0 {
		t.Errorf("expected no bcc without monitor address, got %v", msg.Bcc)
	}
	if !strings.Contains(msg.Text, DefaultClientURL+"/items/42") {
		t.Errorf("expected default client URL link:\n%s", msg.Text)
	}
	for i, step := range ClaimNextSteps {
		if !strings.Contains(msg.Text, step) {
			t.Errorf("text body missing step %d", i+1)
		}
	}
	if !strings.Contains(msg.Text, "3. "+ClaimNextSteps[2]) {
		t.Errorf("steps should be numbered:\n%s", msg.Text)
	}
	if !strings.Contains(msg.HTML, "mailto:bob@campus.edu") {
		t.Error("html body missing reply-to-claimant link")
	}
}

func TestHTMLIsEscaped(t *testing.T) {
	m := &fakeMailer{}
	d := newTestDispatcher(t, Config{}, m)

	n := testNotice()
	n.Message = "<script>alert(1)</script>"
	if err := d.SendContactNotice(context.Background(), n); err != nil {
		t.Fatalf("SendContactNotice: %v", err)
	}
	if strings.Contains(m.sent[0].HTML, "<script>") {
		t.Error("message should be escaped in html body")
	}
}

func TestRecipientOverride(t *testing.T) {
	m := &fakeMailer{}
	d := newTestDispatcher(t, Config{RecipientOverride: "qa@campus.edu"}, m)

	if err := d.SendClaimNotice(context.Background(), testNotice()); err != nil {
		t.Fatalf("SendClaimNotice: %v", err)
	}
	if m.sent[0].To != "qa@campus.edu" {
		t.Errorf("expected override recipient, got %q", m.sent[0].To)
	}
}

func TestOwnerWithoutEmail(t *testing.T) {
	m := &fakeMailer{}
	d := newTestDispatcher(t, Config{}, m)

	n := testNotice()
	n.Owner.Email = ""
	if err := d.SendContactNotice(context.Background(), n); err == nil {
		t.Error("expected error for owner without email")
	}
	if len(m.sent) != 0 {
		t.Error("nothing should be sent")
	}
}

func TestTransportFailure(t *testing.T) {
	cause := errors.New("connection refused")
	d := newTestDispatcher(t, Config{}, &fakeMailer{err: cause})

	err := d.SendClaimNotice(context.Background(), testNotice())
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped transport error, got %v", err)
	}
}

func TestSendTest(t *testing.T) {
	m := &fakeMailer{}
	d := newTestDispatcher(t, Config{RecipientOverride: "qa@campus.edu", MonitorAddress: "monitor@campus.edu"}, m)

	if err := d.SendTest(context.Background(), "admin@campus.edu"); err != nil {
		t.Fatalf("SendTest: %v", err)
	}
	msg := m.sent[0]
	if msg.To != "admin@campus.edu" {
		t.Errorf("test mail goes to the given address, got %q", msg.To)
	}
	if !strings.HasPrefix(msg.Subject, "CampusFound Email Test - ") {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if len(msg.Bcc) != 0 {
		t.Error("test mail should not be copied to the monitor")
	}
}
