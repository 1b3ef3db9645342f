package handler

import (
	"net/http"

	"github.com/flavian-jumba/peerly-BE/internal/events"
	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MessageHandler sends direct messages. After the message commits it
// broadcasts to the conversation channel and fans out notifications to the
// other participants; neither step can fail the send.
type MessageHandler struct {
	DB          *gorm.DB
	Broadcaster events.Broadcaster
}

func NewMessageHandler(db *gorm.DB, b events.Broadcaster) *MessageHandler {
	return &MessageHandler{DB: db, Broadcaster: b}
}

type messageReq struct {
	Message string `json:"message" binding:"required,max=5000"`
}

// Create posts a message to a conversation the current user participates in.
func (h *MessageHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	conversationID, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid conversation id.")
		return
	}

	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ValidationError(c, map[string]string{"message": "A message body is required."})
		return
	}

	var pivotCount int64
	if err := h.DB.Model(&models.ConversationUser{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, user.ID).
		Count(&pivotCount).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load conversation.")
		return
	}
	if pivotCount == 0 {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "You are not part of this conversation.")
		return
	}

	msg := models.Message{
		ConversationID: conversationID,
		UserID:         user.ID,
		Message:        req.Message,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		// bump the thread so conversation lists sort by latest activity
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", msg.CreatedAt).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to send message.")
		return
	}

	msg.User = user

	events.Emit(c.Request.Context(), h.Broadcaster, events.New(
		events.MessageSent,
		events.ConversationChannel(conversationID),
		map[string]interface{}{
			"message": msg,
		},
	))

	h.notifyParticipants(c, user, &msg)

	util.Created(c, util.Response{
		"message": msg,
	})
}

// List returns a conversation's messages in chronological order.
func (h *MessageHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	conversationID, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid conversation id.")
		return
	}

	var pivotCount int64
	if err := h.DB.Model(&models.ConversationUser{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, user.ID).
		Count(&pivotCount).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load conversation.")
		return
	}
	if pivotCount == 0 {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "You are not part of this conversation.")
		return
	}

	var msgs []models.Message
	err := h.DB.Preload("User").
		Where("conversation_id = ?", conversationID).
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

// Update edits a message's body. Only the sender may edit.
func (h *MessageHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	conversationID, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid conversation id.")
		return
	}
	messageID, ok := pathID(c, "messageID")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid message id.")
		return
	}

	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ValidationError(c, map[string]string{"message": "A message body is required."})
		return
	}

	var msg models.Message
	err := h.DB.Where("id = ? AND conversation_id = ?", messageID, conversationID).First(&msg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Message not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load message.")
		}
		return
	}
	if msg.UserID != user.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "Only the sender can edit this message.")
		return
	}

	msg.Message = req.Message
	if err := h.DB.Save(&msg).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update message.")
		return
	}

	msg.User = user
	util.Success(c, util.Response{
		"message": msg,
	})
}

// Delete removes a message. Only the sender may delete.
func (h *MessageHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	conversationID, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid conversation id.")
		return
	}
	messageID, ok := pathID(c, "messageID")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid message id.")
		return
	}

	var msg models.Message
	err := h.DB.Where("id = ? AND conversation_id = ?", messageID, conversationID).First(&msg).Error
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

// notifyParticipants writes a new_message notification for every other
// participant and broadcasts each on the recipient's private channel.
// Failures are logged; the message already committed.
func (h *MessageHandler) notifyParticipants(c *gin.Context, sender *models.User, msg *models.Message) {
	var pivots []models.ConversationUser
	if err := h.DB.Where("conversation_id = ? AND user_id <> ?", msg.ConversationID, sender.ID).
		Find(&pivots).Error; err != nil {
		log.Warn().Err(err).Uint("conversation_id", msg.ConversationID).Msg("message notification fan-out failed")
		return
	}

	for _, p := range pivots {
		n := models.Notification{
			UserID:  p.UserID,
			Type:    models.NotificationNewMessage,
			Title:   "New Message",
			Message: sender.Name + " sent you a message.",
		}
		if err := h.DB.Create(&n).Error; err != nil {
			log.Warn().Err(err).Uint("user_id", p.UserID).Msg("message notification write failed")
			continue
		}
		events.Emit(c.Request.Context(), h.Broadcaster, events.New(
			events.NotificationCreated,
			events.UserChannel(p.UserID),
			map[string]interface{}{
				"notification": n,
			},
		))
	}
}
