package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/campusfound/campusfound/internal/auth"
	"github.com/campusfound/campusfound/internal/imaging"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/store"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type registerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	StudentID string `json:"studentId"`
	Phone     string `json:"phone"`
}

func (req *registerRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		return model.ValidationError("name required")
	}
	email, err := model.NormalizeEmail(req.Email)
	if err != nil {
		return model.ValidationError(err.Error())
	}
	req.Email = email
	if err := model.ValidatePassword(req.Password); err != nil {
		return model.ValidationError(err.Error())
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *loginRequest) validate() error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return model.ValidationError("email and password required")
	}
	return nil
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (req *updateProfileRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		return model.ValidationError("name required")
	}
	return nil
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (req *changePasswordRequest) validate() error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return model.ValidationError("current and new password required")
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		return model.ValidationError(err.Error())
	}
	return nil
}

var errInvalidCredentials = model.NewError(model.KindUnauthorized, "Invalid credentials", nil)

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		StudentID:    req.StudentID,
		Role:         model.RoleUser,
	})
	if errors.Is(err, store.ErrDuplicateUser) {
		writeError(w, r, model.NewError(model.KindConflict, "User already exists with this email or student ID", err))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	jsonSuccess(w, http.StatusCreated, map[string]any{"user": user, "token": token})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, r, errInvalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		writeError(w, r, errInvalidCredentials)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "role", user.Role)
	jsonSuccess(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

// currentUser loads the authenticated account. A valid token whose account
// is gone is answered with 401.
func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) *model.User {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return nil
	}
	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return nil
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "user not found")
		return nil
	}
	return user
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}
	jsonSuccess(w, http.StatusOK, map[string]any{"user": user})
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}

	var req updateProfileRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := store.UpdateUserProfile(r.Context(), h.DB, user.ID, req.Name, req.Phone); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := store.GetUser(r.Context(), h.DB, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, map[string]any{"message": "Profile updated successfully", "user": updated})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}

	var req changePasswordRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, user.ID, string(hash)); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user changed own password", "user_id", user.ID)
	jsonSuccess(w, http.StatusOK, map[string]any{"message": "password updated"})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user logged out", "user_id", claims.UserID)
	jsonSuccess(w, http.StatusOK, map[string]any{"message": "logged out"})
}

// UploadImage handles PUT /api/auth/profile/image.
func (h *AuthHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}

	result, ok := readImageUpload(w, r, imaging.ProcessAvatar)
	if !ok {
		return
	}

	if err := store.SetUserImage(r.Context(), h.DB, user.ID, result.Data, result.MIME); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := store.GetUser(r.Context(), h.DB, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, map[string]any{"message": "image uploaded", "user": updated})
}
