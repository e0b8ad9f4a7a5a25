package handlers

import (
	"errors"
	"net/http"
	"strings"

	"threadboard/internal/auth"
	apperrors "threadboard/internal/errors"
	"threadboard/internal/logging"
	"threadboard/internal/middleware"
	"threadboard/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db     *gorm.DB
	tokens *auth.TokenIssuer
}

func NewAuthHandler(gdb *gorm.DB, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{db: gdb, tokens: tokens}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// createUser 创建新用户的通用函数
func (h *AuthHandler) createUser(tx *gorm.DB, name, email, password string) (*models.User, error) {
	var taken int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
		return nil, apperrors.PersistenceFailure("failed to check email", err)
	}
	if taken > 0 {
		return nil, apperrors.Conflict("Email is already registered.")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.PersistenceFailure("failed to hash password", err)
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: hash,
	}
	if err := tx.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Email is already registered.")
		}
		return nil, apperrors.PersistenceFailure("failed to create user", err)
	}
	return &user, nil
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.createUser(h.db.WithContext(c.Request.Context()), strings.TrimSpace(req.Name), normalizeEmail(req.Email), req.Password)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	logging.FromContext(c.Request.Context()).Info("User registered", "user_id", user.ID)
	h.startSession(c, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	var user models.User
	err := h.db.WithContext(c.Request.Context()).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		apperrors.Respond(c, apperrors.PersistenceFailure("failed to load user", err))
		return
	}
	if err != nil || !auth.CheckPassword(user.Password, req.Password) {
		apperrors.Respond(c, apperrors.Unauthorized("Invalid email or password."))
		return
	}

	h.startSession(c, http.StatusOK, &user)
}

// Logout handles POST /api/auth/logout. Bearer tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apperrors.Respond(c, apperrors.PersistenceFailure("failed to clear session", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}

func (h *AuthHandler) startSession(c *gin.Context, status int, user *models.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		apperrors.Respond(c, apperrors.PersistenceFailure("failed to issue token", err))
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		apperrors.Respond(c, apperrors.PersistenceFailure("failed to save session", err))
		return
	}

	c.JSON(status, gin.H{"token": token, "user": user})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
