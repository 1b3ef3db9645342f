package handler

import (
	"net/http"

	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/presence"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProfileHandler serves the contact list and profile editing. The contact
// list shows only users who are live in the presence cache; the stored
// online_status flag is reconciled against the cache on every read.
type ProfileHandler struct {
	DB       *gorm.DB
	Presence *presence.Tracker
}

func NewProfileHandler(db *gorm.DB, tracker *presence.Tracker) *ProfileHandler {
	return &ProfileHandler{DB: db, Presence: tracker}
}

// profileView pairs a profile with the owner's per-viewer unread count.
type profileView struct {
	models.Profile
	UnreadCount int64 `json:"unread_count"`
}

// List returns the contact list: every other user who is currently online
// per the presence cache, with the viewer's unread message count for each.
func (h *ProfileHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var profiles []models.Profile
	err := h.DB.Preload("User").
		Where("user_id <> ?", user.ID).
		Find(&profiles).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load profiles.")
		return
	}

	ctx := c.Request.Context()
	views := make([]profileView, 0, len(profiles))
	for i := range profiles {
		p := profiles[i]
		// the cache, not the stored flag, decides who shows as online;
		// IsOnline heals a stale flag on a miss
		if !h.Presence.IsOnline(ctx, p.UserID) {
			continue
		}
		p.OnlineStatus = true
		views = append(views, profileView{
			Profile:     p,
			UnreadCount: h.unreadFrom(user.ID, p.UserID),
		})
	}

	util.Success(c, util.Response{
		"profiles": views,
	})
}

// Show returns one user's profile.
func (h *ProfileHandler) Show(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid user id.")
		return
	}

	var profile models.Profile
	err := h.DB.Preload("User").Where("user_id = ?", id).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Profile not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load profile.")
		}
		return
	}

	profile.OnlineStatus = h.Presence.IsOnline(c.Request.Context(), profile.UserID)

	util.Success(c, util.Response{
		"profile": profile,
	})
}

type profileReq struct {
	Prefix string `json:"prefix" binding:"max=255"`
	About  string `json:"about" binding:"max=500"`
	Avatar string `json:"avatar" binding:"max=255"`
}

// Update edits the current user's own profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var req profileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body.")
		return
	}

	var profile models.Profile
	if err := h.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Profile not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load profile.")
		}
		return
	}

	if req.Prefix != "" && req.Prefix != profile.Prefix {
		var count int64
		h.DB.Model(&models.Profile{}).
			Where("prefix = ? AND user_id <> ?", req.Prefix, user.ID).
			Count(&count)
		if count > 0 {
			util.ValidationError(c, map[string]string{"prefix": "The prefix has already been taken."})
			return
		}
		profile.Prefix = req.Prefix
	}
	if req.About != "" {
		profile.About = req.About
	}
	if req.Avatar != "" {
		profile.Avatar = req.Avatar
	}

	if err := h.DB.Save(&profile).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update profile.")
		return
	}

	util.Success(c, util.Response{
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

// unreadFrom counts messages from one sender that the viewer has not read,
// across their shared conversations.
func (h *ProfileHandler) unreadFrom(viewerID, senderID uint) int64 {
	var pivots []models.ConversationUser
	if err := h.DB.Where("user_id = ?", viewerID).Find(&pivots).Error; err != nil {
		return 0
	}

	var total int64
	for _, p := range pivots {
		q := h.DB.Model(&models.Message{}).
			Where("conversation_id = ? AND user_id = ?", p.ConversationID, senderID)
		if p.LastReadAt != nil {
			q = q.Where("created_at > ?", *p.LastReadAt)
		}
		var n int64
		q.Count(&n)
		total += n
	}
	return total
}
