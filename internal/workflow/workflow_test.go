package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/campusfound/campusfound/internal/db"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/notify"
	"github.com/campusfound/campusfound/internal/store"
)

type fakeNotifier struct {
	contacts []notify.Notice
	claims   []notify.Notice
	err      error
}

func (f *fakeNotifier) SendContactNotice(_ context.Context, n notify.Notice) error {
	f.contacts = append(f.contacts, n)
	return f.err
}

func (f *fakeNotifier) SendClaimNotice(_ context.Context, n notify.Notice) error {
	f.claims = append(f.claims, n)
	return f.err
}

type fixture struct {
	db       *sql.DB
	svc      *Service
	notifier *fakeNotifier
	owner    *model.User
	claimant *model.User
	admin    *model.User
	item     *model.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	n := &fakeNotifier{}
	f := &fixture{
		db:       database,
		svc:      New(database, n),
		notifier: n,
	}
	f.owner = createUser(t, database, "Alice", model.RoleUser)
	f.claimant = createUser(t, database, "Bob", model.RoleUser)
	f.admin = createUser(t, database, "Admin", model.RoleAdmin)

	item, err := store.CreateItem(context.Background(), database, &model.Item{
		Title:    "Blue Backpack",
		Category: "Bags",
		Type:     model.ItemTypeFound,
		Location: "Library",
		OwnerID:  f.owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	f.item = item
	return f
}

func createUser(t *testing.T, database *sql.DB, name, role string) *model.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), database, &model.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@campus.edu", strings.ToLower(name)),
		PasswordHash: "hash",
		Phone:        "555-0100",
		Role:         role,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return u
}

func callerOf(u *model.User) Caller {
	return Caller{ID: u.ID, Role: u.Role}
}

func notificationLog(t *testing.T, f *fixture) []model.Notification {
	t.Helper()
	entries, err := store.ListNotifications(context.Background(), f.db, f.item.ID)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	return entries
}

func expectKind(t *testing.T, err error, kind model.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := model.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}
