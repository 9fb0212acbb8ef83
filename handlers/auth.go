// handlers/auth.go
package handlers

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"p9e.in/qac/config"
	"p9e.in/qac/middleware"
	"p9e.in/qac/models"
)

var knownRoles = []string{models.RoleSuperAdmin, models.RoleQAManager, models.RoleQAAnalyst}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (req registerReq) validate() error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" || strings.TrimSpace(req.Email) == "" {
		return errors.New("name, email and phone are required")
	}
	if len(req.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if req.Role != "" && !slices.Contains(knownRoles, req.Role) {
		return errors.New("unknown role")
	}
	return nil
}

func Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Role == "" {
		req.Role = models.RoleQAAnalyst
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "register", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error hashing password")
		return
	}
	u := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := db.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeError(w, http.StatusConflict, "email or phone already registered")
			return
		}
		writeDBError(w, "register", err)
		return
	}
	config.Log.Info("User registered", zap.String("user_id", u.ID.String()), zap.String("role", u.Role))
	w.WriteHeader(http.StatusCreated)
}

type loginReq struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
	Role  string    `json:"role"`
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "login", err)
		return
	}

	var u models.User
	if err := db.Where("phone = ? AND is_active = ?", req.Phone, true).First(&u).Error; err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		config.Log.Warn("Login failed", zap.String("user_id", u.ID.String()))
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := middleware.GenerateToken(u.ID.String(), u.Role, u.Name, u.Phone)
	if err != nil {
		config.Log.Error("token signing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "couldn't create token")
		return
	}
	writeJSON(w, http.StatusOK, loginResp{
		Token: token,
		User: userPayload{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Phone: u.Phone,
			Role:  u.Role,
		},
	})
}

// Profile returns the caller's identity from the token.
func Profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"userID":           claims.UserID,
		"name":             claims.Name,
		"phone":            claims.Phone,
		"role":             claims.Role,
		"canEditReference": (&models.User{Role: claims.Role}).CanEditReference(),
	})
}
