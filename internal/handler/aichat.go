package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flavian-jumba/peerly-BE/internal/ai"
	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AIChatHandler runs the AI companion: each request replays a rolling window
// of the user's past exchanges, optionally enriched with the therapist
// directory when the conversation suggests professional help.
type AIChatHandler struct {
	DB     *gorm.DB
	Client ai.Client
}

func NewAIChatHandler(db *gorm.DB, client ai.Client) *AIChatHandler {
	return &AIChatHandler{DB: db, Client: client}
}

// List returns the current user's exchange history, oldest first.
func (h *AIChatHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var msgs []models.AIMessage
	err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load chat history.")
		return
	}

	util.Success(c, util.Response{
		"messages": msgs,
	})
}

// Show returns one exchange. Owner only.
func (h *AIChatHandler) Show(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid message id.")
		return
	}

	var msg models.AIMessage
	err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&msg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Message not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load message.")
		}
		return
	}

	util.Success(c, util.Response{
		"message": msg,
	})
}

type aiChatReq struct {
	Prompt string `json:"prompt" binding:"required,max=5000"`
}

// Create sends a prompt to the companion and stores the exchange. The
// provider call happens before anything is written, so a failed call leaves
// no half-exchange behind.
func (h *AIChatHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	if h.Client == nil {
		util.Error(c, http.StatusServiceUnavailable, util.CodeUpstream, "AI chat is not available right now.")
		return
	}

	var req aiChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ValidationError(c, map[string]string{"prompt": "A prompt is required."})
		return
	}

	history, err := h.recentHistory(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load chat history.")
		return
	}

	system := ai.SystemPrompt
	var recommended []models.Therapist
	if ai.NeedsTherapistContext(req.Prompt, history) {
		if err := h.DB.Find(&recommended).Error; err != nil {
			log.Warn().Err(err).Msg("therapist directory load failed")
			recommended = nil
		} else {
			system += ai.TherapistContext(recommended)
		}
	}

	result, err := h.Client.Complete(c.Request.Context(), ai.BuildMessages(system, history, req.Prompt))
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrBusy):
			util.Error(c, http.StatusServiceUnavailable, util.CodeUpstream, "The AI assistant is busy right now. Please try again in a moment.")
		case errors.Is(err, ai.ErrNotConfigured):
			util.Error(c, http.StatusServiceUnavailable, util.CodeUpstream, "AI chat is not available right now.")
		default:
			log.Error().Err(err).Uint("user_id", user.ID).Msg("ai completion failed")
			util.Error(c, http.StatusBadGateway, util.CodeUpstream, "The AI assistant could not be reached.")
		}
		return
	}

	msg := models.AIMessage{
		UserID:   user.ID,
		Prompt:   req.Prompt,
		Response: result.Content,
		Meta:     providerMeta(result),
	}
	if err := h.DB.Create(&msg).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to store the exchange.")
		return
	}

	resp := util.Response{
		"message": msg,
	}
	if len(recommended) > 0 {
		resp["recommended_therapists"] = recommended
	}
	util.Created(c, resp)
}

// Delete removes one exchange from the user's history. Owner only.
func (h *AIChatHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid message id.")
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.AIMessage{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete message.")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Message not found.")
		return
	}

	util.Success(c, util.Response{
		"message": "Message deleted",
	})
}

// Clear wipes the user's whole companion history.
func (h *AIChatHandler) Clear(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	res := h.DB.Where("user_id = ?", user.ID).Delete(&models.AIMessage{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to clear chat history.")
		return
	}

	util.Success(c, util.Response{
		"message": "Chat history cleared",
		"deleted": res.RowsAffected,
	})
}

// recentHistory loads the last HistoryWindow exchanges, oldest first.
func (h *AIChatHandler) recentHistory(userID uint) ([]ai.Exchange, error) {
	var msgs []models.AIMessage
	err := h.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(ai.HistoryWindow).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}

	history := make([]ai.Exchange, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		history = append(history, ai.Exchange{
			Prompt:   msgs[i].Prompt,
			Response: msgs[i].Response,
		})
	}
	return history, nil
}

func providerMeta(r *ai.Result) datatypes.JSON {
	b, err := json.Marshal(map[string]interface{}{
		"model":             r.Model,
		"finish_reason":     r.FinishReason,
		"prompt_tokens":     r.PromptTokens,
		"completion_tokens": r.CompletionTokens,
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
