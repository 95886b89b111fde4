package api

import (
	"database/sql"
	"net/http"

	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/notify"
	"github.com/campusfound/campusfound/internal/workflow"
)

// NewRouter creates the API router with all endpoints registered. A nil
// dispatcher disables outgoing mail.
func NewRouter(db *sql.DB, jwtSecret string, dispatcher *notify.Dispatcher) http.Handler {
	mux := http.NewServeMux()

	var notifier workflow.Notifier
	if dispatcher.Enabled() {
		notifier = dispatcher
	}
	svc := workflow.New(db, notifier)

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db, Workflow: svc}
	claimsHandler := &ClaimsHandler{Workflow: svc}
	notificationsHandler := &NotificationsHandler{DB: db, Dispatcher: dispatcher}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public: account creation and login.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Own account.
	mux.Handle("GET /api/auth/me", authed(authHandler.Me))
	mux.Handle("PUT /api/auth/profile", authed(authHandler.UpdateProfile))
	mux.Handle("PUT /api/auth/profile/image", authed(authHandler.UploadImage))
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	// Users.
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.HandleFunc("GET /api/users/{id}/image", usersHandler.GetImage)

	// Items: browsing is public, writes are owner or admin.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.Handle("POST /api/items", authed(itemsHandler.Create))
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.Handle("PUT /api/items/{id}", authed(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", authed(itemsHandler.Delete))
	mux.Handle("PUT /api/items/{id}/image", authed(itemsHandler.UploadImage))
	mux.HandleFunc("GET /api/items/{id}/image", itemsHandler.GetImage)
	mux.Handle("POST /api/items/{id}/contact", authed(itemsHandler.Contact))
	mux.Handle("GET /api/user/items", authed(itemsHandler.Mine))

	// Claims.
	mux.Handle("POST /api/claims", authed(claimsHandler.Create))
	mux.Handle("GET /api/claims/my", authed(claimsHandler.Mine))
	mux.Handle("GET /api/claims/item/{itemId}", authed(claimsHandler.ListForItem))
	mux.Handle("PUT /api/claims/{id}", authed(claimsHandler.UpdateStatus))

	// Notifications.
	mux.Handle("POST /api/notifications/test", authed(notificationsHandler.Test))
	mux.Handle("GET /api/notifications", admin(notificationsHandler.List))

	return mux
}
