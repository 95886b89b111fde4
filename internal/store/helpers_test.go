package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/campusfound/campusfound/internal/model"
)

func mustCreateUser(t *testing.T, database *sql.DB, name string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, &model.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@campus.edu", strings.ToLower(name)),
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return u
}

func mustCreateItem(t *testing.T, database *sql.DB, owner *model.User, title, itemType string) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, &model.Item{
		Title:    title,
		Category: "Bags",
		Type:     itemType,
		Location: "Library",
		OwnerID:  owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateItem(%s): %v", title, err)
	}
	return item
}
