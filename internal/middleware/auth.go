package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CurrentUserKey is where Auth stores the authenticated user in the gin
// context. Handlers read it and pass the user on explicitly.
const CurrentUserKey = "currentUser"

// Auth validates the JWT and loads the current user into the context.
func Auth(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) query param ?token=xxx (downloads and other header-less cases)
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Session expired, please log in again.")
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load user.")
			}
			c.Abort()
			return
		}

		c.Set(CurrentUserKey, &user)
		c.Next()
	}
}

// RequireAdmin gates the admin console routes. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CurrentUserKey)
		user, cast := v.(*models.User)
		if !ok || !cast || user == nil || !user.IsAdmin {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "Forbidden.")
			c.Abort()
			return
		}
		c.Next()
	}
}
