package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// User is a registered campus account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	StudentID    string    `json:"studentId,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	ImageMime    string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin: 2,
		RoleUser:  1,
	}
	return levels[role] >= levels[minimum] && levels[minimum] > 0
}

// ImageRef returns the URL of the user's profile image, or "" if none is set.
func (u *User) ImageRef() string {
	if u.ImageMime == "" {
		return ""
	}
	return imageURL("users", u.ID)
}

// Contact returns the details shared with another user in a notice.
func (u *User) Contact() Contact {
	return Contact{
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		StudentID: u.StudentID,
	}
}

// Contact is the subset of a profile exchanged between users when one of
// them contacts or claims an item of the other.
type Contact struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	StudentID string `json:"studentId,omitempty"`
}

// PublicProfile is what an item owner sees about a claimant.
type PublicProfile struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	StudentID string `json:"studentId,omitempty"`
}

// ValidatePassword checks the password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// NormalizeEmail trims and lowercases an address and checks that it parses.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("email required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errors.New("invalid email address")
	}
	return email, nil
}
