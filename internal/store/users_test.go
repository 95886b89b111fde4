package store

import (
	"context"
	"errors"
	"testing"

	"github.com/campusfound/campusfound/internal/db"
	"github.com/campusfound/campusfound/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, &model.User{
		Name:         "Alice",
		Email:        "alice@campus.edu",
		PasswordHash: "hash123",
		StudentID:    "S1001",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Role != model.RoleUser {
		t.Errorf("expected default role 'user', got %q", user.Role)
	}
	if user.StudentID != "S1001" {
		t.Errorf("expected student id S1001, got %q", user.StudentID)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "alice@campus.edu" {
		t.Errorf("expected email 'alice@campus.edu', got %q", got.Email)
	}

	missing, err := GetUser(ctx, database, 999)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestGetUserByEmailIgnoresCase(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, &model.User{Name: "Bob", Email: "bob@campus.edu", PasswordHash: "h"})

	user, err := GetUserByEmail(ctx, database, "BOB@campus.edu")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user == nil || user.Name != "Bob" {
		t.Fatalf("expected Bob, got %+v", user)
	}
}

func TestCreateUserDuplicates(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, &model.User{Name: "A", Email: "a@campus.edu", PasswordHash: "h", StudentID: "S1"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err = CreateUser(ctx, database, &model.User{Name: "A2", Email: "A@campus.edu", PasswordHash: "h"})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser for email, got %v", err)
	}

	_, err = CreateUser(ctx, database, &model.User{Name: "B", Email: "b@campus.edu", PasswordHash: "h", StudentID: "S1"})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser for student id, got %v", err)
	}

	// Empty student IDs are not unique.
	if _, err := CreateUser(ctx, database, &model.User{Name: "C", Email: "c@campus.edu", PasswordHash: "h"}); err != nil {
		t.Errorf("CreateUser without student id: %v", err)
	}
	if _, err := CreateUser(ctx, database, &model.User{Name: "D", Email: "d@campus.edu", PasswordHash: "h"}); err != nil {
		t.Errorf("second CreateUser without student id: %v", err)
	}
}

func TestUpdateUserProfileAndPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, &model.User{Name: "Old", Email: "u@campus.edu", PasswordHash: "oldhash", Phone: "111"})

	UpdateUserProfile(ctx, database, user.ID, "New", "")
	UpdateUserPassword(ctx, database, user.ID, "newhash")

	got, _ := GetUser(ctx, database, user.ID)
	if got.Name != "New" {
		t.Errorf("expected name 'New', got %q", got.Name)
	}
	if got.Phone != "" {
		t.Errorf("expected phone cleared, got %q", got.Phone)
	}
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}
}

func TestUserImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, &model.User{Name: "Pic", Email: "pic@campus.edu", PasswordHash: "h"})
	if user.ImageRef() != "" {
		t.Error("new user should have no image")
	}

	SetUserImage(ctx, database, user.ID, []byte("jpeg bytes"), "image/jpeg")

	data, mime, err := GetUserImage(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUserImage: %v", err)
	}
	if string(data) != "jpeg bytes" || mime != "image/jpeg" {
		t.Errorf("unexpected image %q (%s)", data, mime)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.ImageRef() == "" {
		t.Error("expected image ref after upload")
	}
}

func TestListUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, &model.User{Name: "A", Email: "a@campus.edu", PasswordHash: "h"})
	CreateUser(ctx, database, &model.User{Name: "B", Email: "b@campus.edu", PasswordHash: "h", Role: model.RoleAdmin})

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[1].Role != model.RoleAdmin {
		t.Errorf("expected second user to be admin, got %q", users[1].Role)
	}
}
