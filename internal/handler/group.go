package handler

import (
	"net/http"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/events"
	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GroupHandler manages support groups and their messages.
type GroupHandler struct {
	DB          *gorm.DB
	Broadcaster events.Broadcaster
}

func NewGroupHandler(db *gorm.DB, b events.Broadcaster) *GroupHandler {
	return &GroupHandler{DB: db, Broadcaster: b}
}

type groupView struct {
	models.Group
	MemberCount int64 `json:"member_count"`
	Joined      bool  `json:"joined"`
	UnreadCount int64 `json:"unread_count"`
}

// List returns all groups with member counts and the viewer's membership.
func (h *GroupHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var groups []models.Group
	if err := h.DB.Preload("Owner").Order("created_at DESC").Find(&groups).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load groups.")
		return
	}

	views := make([]groupView, 0, len(groups))
	for i := range groups {
		views = append(views, h.view(user.ID, groups[i]))
	}

	util.Success(c, util.Response{
		"groups": views,
	})
}

type groupReq struct {
	Title string `json:"title" binding:"required,max=255"`
	Bio   string `json:"bio" binding:"max=500"`
	Icon  string `json:"icon" binding:"max=255"`
}

// Create makes a new group; the creator becomes owner and first member.
func (h *GroupHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var req groupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ValidationError(c, map[string]string{"title": "A group title is required."})
		return
	}

	group := models.Group{
		Title:   req.Title,
		Bio:     req.Bio,
		Icon:    req.Icon,
		OwnerID: user.ID,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupUser{GroupID: group.ID, UserID: user.ID}).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create group.")
		return
	}

	group.Owner = user
	util.Created(c, util.Response{
		"message": "Group created successfully",
		"group":   h.view(user.ID, group),
	})
}

// Show returns one group with its members.
func (h *GroupHandler) Show(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid group id.")
		return
	}

	var group models.Group
	err := h.DB.Preload("Owner").Preload("Users.Profile").First(&group, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Group not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load group.")
		}
		return
	}

	util.Success(c, util.Response{
		"group": h.view(user.ID, group),
	})
}

// Update edits a group. Only the owner may edit.
func (h *GroupHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid group id.")
		return
	}

	var group models.Group
	if err := h.DB.First(&group, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Group not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load group.")
		}
		return
	}
	if group.OwnerID != user.ID && !user.IsAdmin {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "Only the group owner can edit this group.")
		return
	}

	var req groupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ValidationError(c, map[string]string{"title": "A group title is required."})
		return
	}

	group.Title = req.Title
	group.Bio = req.Bio
	if req.Icon != "" {
		group.Icon = req.Icon
	}
	if err := h.DB.Save(&group).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update group.")
		return
	}

	util.Success(c, util.Response{
		"message": "Group updated successfully",
		"group":   h.view(user.ID, group),
	})
}

// Delete removes a group. Only the owner or an admin may delete.
func (h *GroupHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid group id.")
		return
	}

	var group models.Group
	if err := h.DB.First(&group, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Group not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load group.")
		}
		return
	}
	if group.OwnerID != user.ID && !user.IsAdmin {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "Only the group owner can delete this group.")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupUser{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete group.")
		return
	}

	util.Success(c, util.Response{
		"message": "Group deleted successfully",
	})
}

// Join adds the current user to a group. Joining twice is a no-op.
func (h *GroupHandler) Join(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid group id.")
		return
	}

	var group models.Group
	if err := h.DB.First(&group, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Group not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load group.")
		}
		return
	}

	var count int64
	h.DB.Model(&models.GroupUser{}).
		Where("group_id = ? AND user_id = ?", id, user.ID).
		Count(&count)
	if count == 0 {
		if err := h.DB.Create(&models.GroupUser{GroupID: id, UserID: user.ID}).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to join group.")
			return
		}
	}

	util.Success(c, util.Response{
		"message": "Joined group successfully",
	})
}

// Leave removes the current user from a group. The owner leaving dissolves
// the group entirely.
func (h *GroupHandler) Leave(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid group id.")
		return
	}

	var group models.Group
	if err := h.DB.First(&group, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Group not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load group.")
		}
		return
	}

	if group.OwnerID == user.ID {
		err := h.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("group_id = ?", id).Delete(&models.GroupUser{}).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id = ?", id).Delete(&models.GroupMessage{}).Error; err != nil {
				return err
			}
			return tx.Delete(&group).Error
		})
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to leave group.")
			return
		}
		util.Success(c, util.Response{
			"message": "Group deleted because the owner left",
		})
		return
	}

	if err := h.DB.Where("group_id = ? AND user_id = ?", id, user.ID).
		Delete(&models.GroupUser{}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to leave group.")
		return
	}

	util.Success(c, util.Response{
		"message": "Left group successfully",
	})
}

// Messages returns a group's message history. Members only.
func (h *GroupHandler) Messages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid group id.")
		return
	}
	if !h.isMember(id, user.ID) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "You are not a member of this group.")
		return
	}

	var msgs []models.GroupMessage
	err := h.DB.Preload("User").
		Where("group_id = ?", id).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load messages.")
		return
	}

	util.Success(c, util.Response{
		"messages": msgs,
	})
}

// SendMessage posts a message to a group. Members only. Broadcast delivery
// is best effort after the commit.
func (h *GroupHandler) SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid group id.")
		return
	}
	if !h.isMember(id, user.ID) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "You are not a member of this group.")
		return
	}

	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ValidationError(c, map[string]string{"message": "A message body is required."})
		return
	}

	msg := models.GroupMessage{
		GroupID: id,
		UserID:  user.ID,
		Message: req.Message,
	}
	if err := h.DB.Create(&msg).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to send message.")
		return
	}

	msg.User = user
	events.Emit(c.Request.Context(), h.Broadcaster, events.New(
		events.MessageSent,
		events.GroupChannel(id),
		map[string]interface{}{
			"message": msg,
		},
	))

	util.Created(c, util.Response{
		"message": msg,
	})
}

// DeleteMessage removes a group message. Only the sender may delete it.
func (h *GroupHandler) DeleteMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid group id.")
		return
	}
	messageID, ok := pathID(c, "messageID")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid message id.")
		return
	}

	var msg models.GroupMessage
	err := h.DB.Where("id = ? AND group_id = ?", messageID, groupID).First(&msg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Message not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load message.")
		}
		return
	}
	if msg.UserID != user.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "Only the sender can delete this message.")
		return
	}

	if err := h.DB.Delete(&msg).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete message.")
		return
	}

	util.Success(c, util.Response{
		"message": "Message deleted",
	})
}

// MarkRead stamps the member's read cursor for the group.
func (h *GroupHandler) MarkRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid group id.")
		return
	}

	now := time.Now()
	res := h.DB.Model(&models.GroupUser{}).
		Where("group_id = ? AND user_id = ?", id, user.ID).
		Update("last_read_at", now)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to mark group read.")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "You are not a member of this group.")
		return
	}

	util.Success(c, util.Response{
		"message": "Group marked as read",
		"read_at": now,
	})
}

func (h *GroupHandler) isMember(groupID, userID uint) bool {
	var count int64
	h.DB.Model(&models.GroupUser{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count)
	return count > 0
}

func (h *GroupHandler) view(viewerID uint, group models.Group) groupView {
	v := groupView{Group: group}

	h.DB.Model(&models.GroupUser{}).Where("group_id = ?", group.ID).Count(&v.MemberCount)

	var pivot models.GroupUser
	if err := h.DB.Where("group_id = ? AND user_id = ?", group.ID, viewerID).
		First(&pivot).Error; err == nil {
		v.Joined = true
		q := h.DB.Model(&models.GroupMessage{}).
			Where("group_id = ? AND user_id <> ?", group.ID, viewerID)
		if pivot.LastReadAt != nil {
			q = q.Where("created_at > ?", *pivot.LastReadAt)
		}
		q.Count(&v.UnreadCount)
	}

	return v
}
