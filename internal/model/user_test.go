package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleUser, true},
		{RoleUser, RoleAdmin, false},
		{RoleUser, RoleUser, true},
		// Unknown roles fail-closed.
		{"unknown", RoleUser, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleUser, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"  Alice@Campus.EDU ", "alice@campus.edu", false},
		{"bob@campus.edu", "bob@campus.edu", false},
		{"", "", true},
		{"not-an-email", "", true},
		{"Bob <bob@campus.edu>", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeEmail(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeEmail(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestImageRefs(t *testing.T) {
	u := &User{ID: 7}
	if u.ImageRef() != "" {
		t.Errorf("expected no image ref, got %q", u.ImageRef())
	}
	u.ImageMime = "image/jpeg"
	if got := u.ImageRef(); got != "/api/users/7/image" {
		t.Errorf("unexpected user image ref %q", got)
	}

	item := &Item{ID: 3, ImageMime: "image/jpeg"}
	item.SetImageRef()
	if item.Image != "/api/items/3/image" {
		t.Errorf("unexpected item image ref %q", item.Image)
	}
}
