package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/presence"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves register/login/logout. Login and logout also flip the
// user's presence so the contact list updates immediately.
type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	TokenTTL  time.Duration
	Presence  *presence.Tracker
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, ttlHours int, tracker *presence.Tracker) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		DB:        db,
		JWTSecret: jwtSecret,
		TokenTTL:  time.Duration(ttlHours) * time.Hour,
		Presence:  tracker,
	}
}

type registerReq struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required"`
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required"`
}

// Register creates the user plus their profile and returns an API token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body.")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	fields := map[string]string{}
	if err := util.ValidateEmail(req.Email); err != nil {
		fields["email"] = "A valid email address is required."
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		fields["password"] = err.Error()
	}
	if req.Password != req.PasswordConfirmation {
		fields["password_confirmation"] = "Password confirmation does not match."
	}
	if len(fields) > 0 {
		util.ValidationError(c, fields)
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to check email.")
		return
	}
	if count > 0 {
		util.ValidationError(c, map[string]string{"email": "The email has already been taken."})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to hash password.")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.Profile{
			UserID: user.ID,
			Prefix: fmt.Sprintf("user_%d", user.ID),
			Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(user.Name),
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create user.")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to issue token.")
		return
	}

	util.Created(c, util.Response{
		"message": "Registration successful",
		"user":    user,
		"token":   token,
	})
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials, issues a token and marks the user online.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body.")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.ValidationError(c, map[string]string{"email": "The provided credentials do not match our records."})
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load user.")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		util.ValidationError(c, map[string]string{"email": "The provided credentials do not match our records."})
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to issue token.")
		return
	}

	// mark online; presence failures never fail the login
	if _, err := h.Presence.Heartbeat(c.Request.Context(), user.ID, user.Name); err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("login presence update failed")
	}

	util.Success(c, util.Response{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// Logout marks the user offline. Tokens are stateless JWTs; the client
// discards its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	if _, err := h.Presence.SetStatus(c.Request.Context(), user.ID, user.Name, presence.StatusOffline); err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("logout presence update failed")
	}
	if err := h.DB.Model(&models.Profile{}).Where("user_id = ?", user.ID).Update("online_status", false).Error; err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("logout profile flag update failed")
	}

	util.Success(c, util.Response{
		"message": "Logout successful",
	})
}

// GetMe returns the current authenticated user.
func GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	util.Success(c, util.Response{
		"user": user,
	})
}
