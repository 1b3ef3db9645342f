package events

import (
	"context"
	"strconv"
	"strings"

	"github.com/flavian-jumba/peerly-BE/internal/models"

	"gorm.io/gorm"
)

// Authorizer answers whether a user may subscribe to a channel. The rule is
// always "is this user the owner/participant of the referenced entity";
// nothing more granular exists.
type Authorizer struct {
	db *gorm.DB
}

func NewAuthorizer(db *gorm.DB) *Authorizer {
	return &Authorizer{db: db}
}

// CanSubscribe checks one channel for one authenticated user.
func (a *Authorizer) CanSubscribe(ctx context.Context, userID uint, channel string) (bool, error) {
	switch {
	case channel == ChannelUserStatus, channel == ChannelOnlineUsers:
		// any authenticated user
		return true, nil

	case strings.HasPrefix(channel, "user."):
		id, ok := channelID(channel, "user.")
		return ok && id == userID, nil

	case strings.HasPrefix(channel, "conversation-presence."):
		id, ok := channelID(channel, "conversation-presence.")
		if !ok {
			return false, nil
		}
		return a.isParticipant(ctx, userID, id)

	case strings.HasPrefix(channel, "conversation."):
		id, ok := channelID(channel, "conversation.")
		if !ok {
			return false, nil
		}
		return a.isParticipant(ctx, userID, id)

	case strings.HasPrefix(channel, "group."):
		id, ok := channelID(channel, "group.")
		if !ok {
			return false, nil
		}
		return a.isMember(ctx, userID, id)
	}

	return false, nil
}

func (a *Authorizer) isParticipant(ctx context.Context, userID, conversationID uint) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.ConversationUser{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *Authorizer) isMember(ctx context.Context, userID, groupID uint) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.GroupUser{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func channelID(channel, prefix string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimPrefix(channel, prefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}
