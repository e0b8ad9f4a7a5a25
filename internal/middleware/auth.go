package middleware

import (
	"errors"
	"strings"

	"threadboard/internal/auth"
	apperrors "threadboard/internal/errors"
	"threadboard/internal/logging"
	"threadboard/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CheckUserKey = "user"

// SessionUserKey is the session field holding the logged-in user id.
const SessionUserKey = "user_id"

// AuthRequired rejects anonymous requests. LoadUser must run first.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			apperrors.Respond(c, apperrors.Unauthorized("authentication required"))
			return
		}
		c.Next()
	}
}

// LoadUser resolves the caller from a bearer token or, failing that, the cookie session
// and stores the user under CheckUserKey. A bearer token that does not verify is a 401;
// a missing credential leaves the request anonymous.
func LoadUser(gdb *gorm.DB, tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := resolveUserID(c, tokens)
		if err != nil {
			apperrors.Respond(c, apperrors.Unauthorized("invalid or expired token"))
			return
		}

		if userID != 0 {
			var user models.User
			err := gdb.WithContext(c.Request.Context()).First(&user, userID).Error
			switch {
			case err == nil:
				c.Set(CheckUserKey, &user)
				ctx := logging.IntoContext(c.Request.Context(), logging.FromContext(c.Request.Context()).With("user_id", user.ID))
				c.Request = c.Request.WithContext(ctx)
			case errors.Is(err, gorm.ErrRecordNotFound):
				// 用户已被删除，清掉残留的 session
				session := sessions.Default(c)
				session.Delete(SessionUserKey)
				_ = session.Save()
			default:
				apperrors.Respond(c, apperrors.PersistenceFailure("failed to load user", err))
				return
			}
		}
		c.Next()
	}
}

func resolveUserID(c *gin.Context, tokens *auth.TokenIssuer) (uint, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			return 0, auth.ErrInvalidToken
		}
		return tokens.Parse(strings.TrimSpace(token))
	}

	session := sessions.Default(c)
	switch v := session.Get(SessionUserKey).(type) {
	case uint:
		return v, nil
	case int:
		return uint(v), nil
	}
	return 0, nil
}

// CurrentUser returns the user LoadUser attached, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(CheckUserKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentUserID is CurrentUser's id, or 0 when anonymous.
func CurrentUserID(c *gin.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}
