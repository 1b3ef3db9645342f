package handler

import (
	"net/http"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ConversationHandler manages direct-message threads.
type ConversationHandler struct {
	DB *gorm.DB
}

func NewConversationHandler(db *gorm.DB) *ConversationHandler {
	return &ConversationHandler{DB: db}
}

// conversationView is the list/show shape: the thread plus per-viewer
// derived fields.
type conversationView struct {
	models.Conversation
	LastMessage *models.Message `json:"last_message"`
	UnreadCount int64           `json:"unread_count"`
}

// List returns the current user's conversations ordered by latest activity,
// each with participants, the last message and the viewer's unread count.
func (h *ConversationHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var convs []models.Conversation
	err := h.DB.Preload("Participants.Profile").
		Joins("JOIN conversation_user cu ON cu.conversation_id = conversations.id").
		Where("cu.user_id = ?", user.ID).
		Order("conversations.updated_at DESC").
		Find(&convs).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load conversations.")
		return
	}

	views := make([]conversationView, 0, len(convs))
	for i := range convs {
		views = append(views, h.view(user.ID, convs[i]))
	}

	util.Success(c, util.Response{
		"conversations": views,
	})
}

type conversationReq struct {
	UserID uint `json:"user_id" binding:"required"`
}

// Create starts a one-to-one conversation with another user, or returns the
// existing thread when one already connects the pair.
func (h *ConversationHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var req conversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body.")
		return
	}
	if req.UserID == user.ID {
		util.ValidationError(c, map[string]string{"user_id": "Cannot start a conversation with yourself."})
		return
	}

	var other models.User
	if err := h.DB.First(&other, req.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.ValidationError(c, map[string]string{"user_id": "The selected user does not exist."})
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load user.")
		}
		return
	}

	// reuse an existing one-to-one thread between the pair
	var existingID uint
	row := h.DB.Model(&models.ConversationUser{}).
		Select("conversation_id").
		Where("user_id IN ?", []uint{user.ID, req.UserID}).
		Group("conversation_id").
		Having("COUNT(DISTINCT user_id) = 2").
		Limit(1).
		Row()
	if row != nil {
		_ = row.Scan(&existingID)
	}
	if existingID != 0 {
		var conv models.Conversation
		if err := h.DB.Preload("Participants.Profile").First(&conv, existingID).Error; err == nil {
			util.Success(c, util.Response{
				"message":      "Conversation already exists",
				"conversation": h.view(user.ID, conv),
			})
			return
		}
	}

	var conv models.Conversation
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		pivots := []models.ConversationUser{
			{ConversationID: conv.ID, UserID: user.ID},
			{ConversationID: conv.ID, UserID: req.UserID},
		}
		return tx.Create(&pivots).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create conversation.")
		return
	}

	if err := h.DB.Preload("Participants.Profile").First(&conv, conv.ID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load conversation.")
		return
	}

	util.Created(c, util.Response{
		"message":      "Conversation created successfully",
		"conversation": h.view(user.ID, conv),
	})
}

// Show returns one conversation with its full message history. Only
// participants may view it.
func (h *ConversationHandler) Show(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid conversation id.")
		return
	}
	if !h.isParticipant(id, user.ID) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "You are not part of this conversation.")
		return
	}

	var conv models.Conversation
	err := h.DB.Preload("Participants.Profile").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC").Preload("User")
		}).
		First(&conv, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Conversation not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load conversation.")
		}
		return
	}

	util.Success(c, util.Response{
		"conversation": h.view(user.ID, conv),
	})
}

// Delete removes a conversation, its participant links and its messages.
// Any participant may delete the thread. AI exchanges linked to it keep
// their rows with the reference cleared.
func (h *ConversationHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid conversation id.")
		return
	}

	var conv models.Conversation
	if err := h.DB.First(&conv, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Conversation not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load conversation.")
		}
		return
	}
	if !h.isParticipant(id, user.ID) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "You are not part of this conversation.")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&models.ConversationUser{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.AIMessage{}).
			Where("conversation_id = ?", id).
			Update("conversation_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&conv).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete conversation.")
		return
	}

	util.Success(c, util.Response{
		"message": "Conversation deleted successfully",
	})
}

// MarkRead stamps the viewer's read cursor, zeroing their unread count.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid conversation id.")
		return
	}

	now := time.Now()
	res := h.DB.Model(&models.ConversationUser{}).
		Where("conversation_id = ? AND user_id = ?", id, user.ID).
		Update("last_read_at", now)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to mark conversation read.")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "You are not part of this conversation.")
		return
	}

	util.Success(c, util.Response{
		"message": "Conversation marked as read",
		"read_at": now,
	})
}

func (h *ConversationHandler) isParticipant(conversationID, userID uint) bool {
	var count int64
	h.DB.Model(&models.ConversationUser{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count)
	return count > 0
}

// view decorates a conversation with the viewer's last message and unread
// count. Derivation failures degrade to zero values rather than erroring.
func (h *ConversationHandler) view(viewerID uint, conv models.Conversation) conversationView {
	v := conversationView{Conversation: conv}

	var last models.Message
	if err := h.DB.Where("conversation_id = ?", conv.ID).
		Order("created_at DESC").
		First(&last).Error; err == nil {
		v.LastMessage = &last
	}

	var pivot models.ConversationUser
	if err := h.DB.Where("conversation_id = ? AND user_id = ?", conv.ID, viewerID).
		First(&pivot).Error; err == nil {
		q := h.DB.Model(&models.Message{}).
			Where("conversation_id = ? AND user_id <> ?", conv.ID, viewerID)
		if pivot.LastReadAt != nil {
			q = q.Where("created_at > ?", *pivot.LastReadAt)
		}
		q.Count(&v.UnreadCount)
	}

	return v
}
