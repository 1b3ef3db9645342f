package handler

import (
	"net/http"

	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler serves the admin console views not covered by the regular
// resources.
type AdminHandler struct {
	DB *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{DB: db}
}

// Users lists all accounts with profiles, paginated, newest first.
func (h *AdminHandler) Users(c *gin.Context) {
	page, size, offset := pagination(c, 20)

	var total int64
	if err := h.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to count users.")
		return
	}

	var users []models.User
	err := h.DB.Preload("Profile").
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&users).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load users.")
		return
	}

	util.Success(c, util.Response{
		"users":     users,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}
