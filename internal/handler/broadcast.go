package handler

import (
	"net/http"

	"github.com/flavian-jumba/peerly-BE/internal/events"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
)

// BroadcastHandler authorizes channel subscriptions for the realtime layer.
type BroadcastHandler struct {
	Authorizer *events.Authorizer
}

func NewBroadcastHandler(authorizer *events.Authorizer) *BroadcastHandler {
	return &BroadcastHandler{Authorizer: authorizer}
}

type broadcastAuthReq struct {
	ChannelName string `json:"channel_name" binding:"required"`
}

// Auth grants or denies a subscription to one channel for the current user.
func (h *BroadcastHandler) Auth(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var req broadcastAuthReq
	if err := c.ShouldBindJSON(&req); err != nil {
		// realtime clients also post form-encoded bodies
		req.ChannelName = c.PostForm("channel_name")
	}
	if req.ChannelName == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "A channel name is required.")
		return
	}

	allowed, err := h.Authorizer.CanSubscribe(c.Request.Context(), user.ID, req.ChannelName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to authorize channel.")
		return
	}
	if !allowed {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "You may not subscribe to this channel.")
		return
	}

	util.Success(c, util.Response{
		"channel": req.ChannelName,
		"allowed": true,
	})
}
