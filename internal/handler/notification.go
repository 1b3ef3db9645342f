package handler

import (
	"net/http"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationHandler serves the per-user notification feed.
type NotificationHandler struct {
	DB *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{DB: db}
}

// List returns the current user's notifications, newest first, paginated.
func (h *NotificationHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	page, size, offset := pagination(c, 20)

	var total int64
	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ?", user.ID).
		Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load notifications.")
		return
	}

	var items []models.Notification
	err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&items).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load notifications.")
		return
	}

	util.Success(c, util.Response{
		"notifications": items,
		"total":         total,
		"page":          page,
		"page_size":     size,
	})
}

// UnreadCount returns how many notifications the user has not read yet.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var count int64
	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to count notifications.")
		return
	}

	util.Success(c, util.Response{
		"unread_count": count,
	})
}

// MarkRead marks one of the user's notifications as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid notification id.")
		return
	}

	now := time.Now()
	res := h.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, user.ID).
		Updates(map[string]interface{}{"read": true, "read_at": now})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to mark notification read.")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Notification not found.")
		return
	}

	util.Success(c, util.Response{
		"message": "Notification marked as read",
	})
}

// MarkAllRead marks every unread notification of the user as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	now := time.Now()
	res := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Updates(map[string]interface{}{"read": true, "read_at": now})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to mark notifications read.")
		return
	}

	util.Success(c, util.Response{
		"message": "All notifications marked as read",
		"updated": res.RowsAffected,
	})
}

// Delete removes one of the user's notifications.
func (h *NotificationHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid notification id.")
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Notification{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete notification.")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Notification not found.")
		return
	}

	util.Success(c, util.Response{
		"message": "Notification deleted",
	})
}
