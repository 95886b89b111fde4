package notify

import (
	"errors"
	"testing"
)

func TestNewSMTPMailerNotConfigured(t *testing.T) {
	cases := []Config{
		{},
		{Username: "sender@gmail.com"},
		{Password: "secret"},
	}
	for _, cfg := range cases {
		if _, err := NewSMTPMailer(cfg); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("%+v: expected ErrNotConfigured, got %v", cfg, err)
		}
	}
}

func TestNewSMTPMailerProviders(t *testing.T) {
	tests := []struct {
		service string
		want    string
	}{
		{"", "smtp.gmail.com:587"},
		{"gmail", "smtp.gmail.com:587"},
		{"Outlook", "smtp-mail.outlook.com:587"},
		{"hotmail", "smtp-mail.outlook.com:587"},
		{"yahoo", "smtp.mail.yahoo.com:465"},
		{"icloud", "smtp.mail.me.com:587"},
		{"zoho", "smtp.zoho.com:465"},
	}
	for _, tt := range tests {
		m, err := NewSMTPMailer(Config{Service: tt.service, Username: "sender@example.com", Password: "secret"})
		if err != nil {
			t.Errorf("%q: %v", tt.service, err)
			continue
		}
		if m.Addr() != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.service, tt.want, m.Addr())
		}
	}
}

func TestNewSMTPMailerExplicitHost(t *testing.T) {
	m, err := NewSMTPMailer(Config{Host: "mail.campus.edu", Port: 2525, Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("NewSMTPMailer: %v", err)
	}
	if m.Addr() != "mail.campus.edu:2525" {
		t.Errorf("unexpected address %s", m.Addr())
	}
}

func TestNewSMTPMailerUnknownService(t *testing.T) {
	_, err := NewSMTPMailer(Config{Service: "carrier-pigeon", Username: "u", Password: "p"})
	if err == nil {
		t.Fatal("expected error for unknown service")
	}
	if errors.Is(err, ErrNotConfigured) {
		t.Error("unknown service is a configuration error, not a missing one")
	}
}
