package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/campusfound/campusfound/internal/api"
	"github.com/campusfound/campusfound/internal/config"
	"github.com/campusfound/campusfound/internal/db"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/notify"
	"github.com/campusfound/campusfound/internal/store"
)

// tokenPurgeInterval is how often expired revoked tokens are removed.
const tokenPurgeInterval = time.Hour

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a.cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("addr", "a", "", "listen address, overrides --port (e.g. 127.0.0.1:8080)")
	flags.IntP("port", "p", 5000, "listen port")
	flags.StringP("db", "d", "campusfound.sqlite3", "SQLite database path")
	flags.StringP("log", "l", "", "log file path (default: no file, stdout/stderr only)")
	flags.String("admin-name", "Admin", "admin display name on first run")
	flags.String("admin-email", "admin@campusfound.local", "admin login email on first run")

	err := bindFlags(a.v, flags, map[string]string{
		"server.addr":        "addr",
		"server.port":        "port",
		"server.db":          "db",
		"server.log":         "log",
		"server.admin_name":  "admin-name",
		"server.admin_email": "admin-email",
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	closeLog, err := setupLogger(cfg.Server.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	dbPath := cfg.Server.DB

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		database, password, err := initDatabase(dbPath, cfg.Server.AdminName, cfg.Server.AdminEmail)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(dbPath, cfg.Server.AdminEmail, password)
		fmt.Println()
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		return err
	}
	slog.Info("database ready", "path", dbPath)

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading JWT secret: %w", err)
	}

	dispatcher, err := newDispatcher(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           api.LoggingMiddleware(api.NewRouter(database, jwtSecret, dispatcher)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})

	// Graceful shutdown on SIGINT/SIGTERM or when the listener fails.
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		purgeRevokedTokens(gctx, database, tokenPurgeInterval)
		return nil
	})

	err = g.Wait()
	slog.Info("server stopped, closing database")
	return err
}

// bindFlags binds each config key to the named flag.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s to %s: %w", name, key, err)
		}
	}
	return nil
}

// newDispatcher builds the mail dispatcher. Missing credentials disable
// mail instead of failing startup.
func newDispatcher(cfg *config.Config) (*notify.Dispatcher, error) {
	ncfg := cfg.Notify()

	var mailer notify.Mailer
	smtp, err := notify.NewSMTPMailer(ncfg)
	switch {
	case errors.Is(err, notify.ErrNotConfigured):
		slog.Warn("email credentials not configured, notifications disabled")
	case err != nil:
		return nil, fmt.Errorf("configuring mail: %w", err)
	default:
		mailer = smtp
		slog.Info("email notifications enabled", "server", smtp.Addr(), "sender", ncfg.Username)
		if ncfg.MonitorAddress == "" {
			slog.Warn("mail.monitor_address not set, notices are sent without an oversight copy")
		}
	}

	return notify.NewDispatcher(ncfg, mailer)
}

// purgeRevokedTokens removes expired entries from the revocation list until
// ctx is done.
func purgeRevokedTokens(ctx context.Context, database *sql.DB, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		n, err := store.PurgeExpiredTokens(ctx, database, time.Now())
		if err != nil && ctx.Err() == nil {
			slog.Error("failed to purge revoked tokens", "error", err)
		} else if n > 0 {
			slog.Info("purged revoked tokens", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// initDatabase creates a new database, ensures the schema, and creates the admin user.
func initDatabase(path, adminName, adminEmail string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.EnsureSchema(database); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fail(fmt.Errorf("hashing password: %w", err))
	}

	email, err := model.NormalizeEmail(adminEmail)
	if err != nil {
		return fail(fmt.Errorf("admin email: %w", err))
	}

	_, err = store.CreateUser(context.Background(), database, &model.User{
		Name:         adminName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	})
	if err != nil {
		return fail(fmt.Errorf("creating admin user: %w", err))
	}

	return database, password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, email, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
