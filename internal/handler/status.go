package handler

import (
	"net/http"

	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/presence"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatusHandler fronts the presence tracker: heartbeat, status writes and
// online lookups.
type StatusHandler struct {
	DB       *gorm.DB
	Presence *presence.Tracker
}

func NewStatusHandler(db *gorm.DB, tracker *presence.Tracker) *StatusHandler {
	return &StatusHandler{DB: db, Presence: tracker}
}

type statusReq struct {
	Status string `json:"status" binding:"required"`
}

// Set writes the current user's presence status and broadcasts the change.
func (h *StatusHandler) Set(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ValidationError(c, map[string]string{"status": "A status value is required."})
		return
	}
	if err := util.ValidateStatus(req.Status); err != nil {
		util.ValidationError(c, map[string]string{"status": err.Error()})
		return
	}

	rec, err := h.Presence.SetStatus(c.Request.Context(), user.ID, user.Name, req.Status)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update status.")
		return
	}

	util.Success(c, util.Response{
		"message": "Status updated",
		"status":  rec,
	})
}

// Heartbeat refreshes the caller's online TTL. Clients call this every
// minute or two while active.
func (h *StatusHandler) Heartbeat(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	rec, err := h.Presence.Heartbeat(c.Request.Context(), user.ID, user.Name)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to record heartbeat.")
		return
	}

	util.Success(c, util.Response{
		"message": "Heartbeat recorded",
		"status":  rec,
	})
}

// Get returns one user's presence record. An absent or expired cache entry
// reads as offline with a null last_seen.
func (h *StatusHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid user id.")
		return
	}

	var target models.User
	if err := h.DB.First(&target, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "User not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load user.")
		}
		return
	}

	rec := h.Presence.GetStatus(c.Request.Context(), target.ID, target.Name)

	util.Success(c, util.Response{
		"status": rec,
	})
}

// Online lists every user with a live presence record. Linear in total user
// count.
func (h *StatusHandler) Online(c *gin.Context) {
	var users []models.User
	if err := h.DB.Select("id", "name").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load users.")
		return
	}

	refs := make([]presence.UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, presence.UserRef{ID: u.ID, Name: u.Name})
	}

	online := h.Presence.ListOnline(c.Request.Context(), refs)

	util.Success(c, util.Response{
		"online_users": online,
		"count":        len(online),
	})
}
