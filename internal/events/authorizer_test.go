package events

import (
	"context"
	"testing"

	"github.com/flavian-jumba/peerly-BE/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func authorizerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.SetupJoinTable(&models.Conversation{}, "Participants", &models.ConversationUser{}))
	require.NoError(t, db.SetupJoinTable(&models.User{}, "Conversations", &models.ConversationUser{}))
	require.NoError(t, db.SetupJoinTable(&models.Group{}, "Users", &models.GroupUser{}))
	require.NoError(t, db.SetupJoinTable(&models.User{}, "Groups", &models.GroupUser{}))
	require.NoError(t, db.AutoMigrate(&models.ConversationUser{}, &models.GroupUser{}))
	return db
}

func TestCanSubscribe(t *testing.T) {
	db := authorizerDB(t)
	require.NoError(t, db.Create(&models.ConversationUser{ConversationID: 5, UserID: 1}).Error)
	require.NoError(t, db.Create(&models.ConversationUser{ConversationID: 5, UserID: 2}).Error)
	require.NoError(t, db.Create(&models.GroupUser{GroupID: 9, UserID: 1}).Error)

	a := NewAuthorizer(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  uint
		channel string
		want    bool
	}{
		{"user-status open to all", 3, ChannelUserStatus, true},
		{"online-users open to all", 3, ChannelOnlineUsers, true},
		{"own private channel", 1, UserChannel(1), true},
		{"someone else's private channel", 1, UserChannel(2), false},
		{"participant joins conversation", 1, ConversationChannel(5), true},
		{"outsider denied conversation", 3, ConversationChannel(5), false},
		{"participant joins conversation presence", 2, ConversationPresenceChannel(5), true},
		{"outsider denied conversation presence", 3, ConversationPresenceChannel(5), false},
		{"member joins group channel", 1, GroupChannel(9), true},
		{"non-member denied group channel", 2, GroupChannel(9), false},
		{"unknown channel denied", 1, "internal-metrics", false},
		{"malformed id denied", 1, "conversation.abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.CanSubscribe(ctx, tt.userID, tt.channel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecorder_CollectsEvents(t *testing.T) {
	rec := &Recorder{}
	Emit(context.Background(), rec, New(MessageSent, ConversationChannel(1), map[string]interface{}{"x": 1}))
	Emit(context.Background(), rec, New(NotificationCreated, UserChannel(2), nil))

	evts := rec.Events()
	require.Len(t, evts, 2)
	assert.Equal(t, MessageSent, evts[0].Name)
	assert.Equal(t, "conversation.1", evts[0].Channel)
	assert.NotEmpty(t, evts[0].ID)
	assert.Equal(t, "user.2", evts[1].Channel)
}

func TestEmit_NilBroadcasterIsNoop(t *testing.T) {
	// must not panic
	Emit(context.Background(), nil, New(MessageSent, "conversation.1", nil))
}
