package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flavian-jumba/peerly-BE/internal/ai"
	"github.com/flavian-jumba/peerly-BE/internal/config"
	"github.com/flavian-jumba/peerly-BE/internal/database"
	"github.com/flavian-jumba/peerly-BE/internal/events"
	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/presence"
	"github.com/flavian-jumba/peerly-BE/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeAI struct {
	result *ai.Result
	err    error
}

func (f *fakeAI) Complete(context.Context, []ai.Message) (*ai.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type env struct {
	engine   *gin.Engine
	db       *gorm.DB
	recorder *events.Recorder
	ai       *fakeAI
}

func setup(t *testing.T) *env {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	recorder := &events.Recorder{}
	tracker := presence.NewTracker(presence.NewMemoryStore(), presence.NewGormProfileMirror(db), recorder)
	fake := &fakeAI{result: &ai.Result{
		Content:      "I hear you. How are you feeling right now?",
		FinishReason: "stop",
		Model:        "sonar",
	}}

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireHours = 1

	engine := router.SetupRouter(cfg, router.Deps{
		DB:          db,
		Presence:    tracker,
		Broadcaster: recorder,
		AIClient:    fake,
	})

	return &env{engine: engine, db: db, recorder: recorder, ai: fake}
}

func (e *env) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func register(t *testing.T, e *env, name, email string) (uint, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"name":                  name,
		"email":                 email,
		"password":              "password123",
		"password_confirmation": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decode(t, w)["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	return uint(user["id"].(float64)), data["token"].(string)
}

func TestRegisterAndLogin(t *testing.T) {
	e := setup(t)

	userID, token := register(t, e, "Amina", "amina@example.com")
	assert.NotZero(t, userID)
	assert.NotEmpty(t, token)

	// a profile was created alongside the account
	var profile models.Profile
	require.NoError(t, e.db.Where("user_id = ?", userID).First(&profile).Error)
	assert.Equal(t, fmt.Sprintf("user_%d", userID), profile.Prefix)

	// duplicate email is rejected with a field error
	w := e.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"name":                  "Other",
		"email":                 "amina@example.com",
		"password":              "password123",
		"password_confirmation": "password123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// login sets the user online
	w = e.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "amina@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, e.db.Where("user_id = ?", userID).First(&profile).Error)
	assert.True(t, profile.OnlineStatus)

	// wrong password is denied without leaking which field failed
	w = e.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "amina@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAuthRequired(t *testing.T) {
	e := setup(t)

	w := e.do(t, http.MethodGet, "/api/v1/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodGet, "/api/v1/appointments", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingConflictOverHTTP(t *testing.T) {
	e := setup(t)

	therapist := models.Therapist{Name: "Dr. Wanjiru", PhoneNumber: "+254700000001", Email: "wanjiru@example.com", Specialty: "Anxiety"}
	require.NoError(t, e.db.Create(&therapist).Error)

	_, tokenA := register(t, e, "Amina", "amina@example.com")
	_, tokenB := register(t, e, "Brian", "brian@example.com")

	// Amina books 10:00 for 60 minutes
	w := e.do(t, http.MethodPost, "/api/v1/appointments", tokenA, map[string]interface{}{
		"therapist_id":     therapist.ID,
		"appointment_at":   "2025-07-01T10:00:00",
		"duration_minutes": 60,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// the booking produced a notification
	var n int64
	e.db.Model(&models.Notification{}).Where("type = ?", models.NotificationAppointmentBooked).Count(&n)
	assert.EqualValues(t, 1, n)

	// Brian's 10:30 with the same therapist collides
	w = e.do(t, http.MethodPost, "/api/v1/appointments", tokenB, map[string]interface{}{
		"therapist_id":     therapist.ID,
		"appointment_at":   "2025-07-01T10:30:00",
		"duration_minutes": 30,
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "therapist already has an appointment")

	// nothing was written for the rejected attempt
	var count int64
	e.db.Model(&models.Appointment{}).Count(&count)
	assert.EqualValues(t, 1, count)

	// the adjacent 11:00 slot books fine
	w = e.do(t, http.MethodPost, "/api/v1/appointments", tokenB, map[string]interface{}{
		"therapist_id":     therapist.ID,
		"appointment_at":   "2025-07-01T11:00:00",
		"duration_minutes": 30,
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestReinstatingCancelledAppointmentRevalidates(t *testing.T) {
	e := setup(t)

	therapist := models.Therapist{Name: "Dr. Wanjiru", PhoneNumber: "+254700000001", Email: "wanjiru@example.com", Specialty: "Anxiety"}
	require.NoError(t, e.db.Create(&therapist).Error)

	_, tokenA := register(t, e, "Amina", "amina@example.com")
	_, tokenB := register(t, e, "Brian", "brian@example.com")

	// Amina books 10:00 then cancels, releasing the slot
	w := e.do(t, http.MethodPost, "/api/v1/appointments", tokenA, map[string]interface{}{
		"therapist_id":     therapist.ID,
		"appointment_at":   "2025-07-01T10:00:00",
		"duration_minutes": 60,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	apptA := decode(t, w)["data"].(map[string]interface{})["appointment"].(map[string]interface{})
	apptAID := uint(apptA["id"].(float64))

	w = e.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/appointments/%d", apptAID), tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Brian takes the freed slot
	w = e.do(t, http.MethodPost, "/api/v1/appointments", tokenB, map[string]interface{}{
		"therapist_id":     therapist.ID,
		"appointment_at":   "2025-07-01T10:00:00",
		"duration_minutes": 60,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// a status-only edit cannot quietly reclaim the rebooked slot
	w = e.do(t, http.MethodPut, fmt.Sprintf("/api/v1/appointments/%d", apptAID), tokenA, map[string]string{
		"status": "pending",
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	var active int64
	e.db.Model(&models.Appointment{}).
		Where("therapist_id = ? AND status != ?", therapist.ID, models.AppointmentCancelled).
		Count(&active)
	assert.EqualValues(t, 1, active)

	// with the slot free again, reinstatement succeeds
	require.NoError(t, e.db.Model(&models.Appointment{}).
		Where("therapist_id = ? AND status != ?", therapist.ID, models.AppointmentCancelled).
		Update("status", models.AppointmentCancelled).Error)

	w = e.do(t, http.MethodPut, fmt.Sprintf("/api/v1/appointments/%d", apptAID), tokenA, map[string]string{
		"status": "pending",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestMessagingBroadcastsAndNotifies(t *testing.T) {
	e := setup(t)

	_, tokenA := register(t, e, "Amina", "amina@example.com")
	brianID, _ := register(t, e, "Brian", "brian@example.com")

	w := e.do(t, http.MethodPost, "/api/v1/conversations", tokenA, map[string]interface{}{
		"user_id": brianID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	conv := decode(t, w)["data"].(map[string]interface{})["conversation"].(map[string]interface{})
	convID := uint(conv["id"].(float64))

	// creating the same pair again reuses the thread
	w = e.do(t, http.MethodPost, "/api/v1/conversations", tokenA, map[string]interface{}{
		"user_id": brianID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/conversations/%d/messages", convID), tokenA, map[string]string{
		"message": "hey, how was your week?",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// the send emitted message.sent on the conversation channel and a
	// notification on Brian's private channel
	var sawMessage, sawNotification bool
	for _, evt := range e.recorder.Events() {
		if evt.Name == events.MessageSent && evt.Channel == events.ConversationChannel(convID) {
			sawMessage = true
		}
		if evt.Name == events.NotificationCreated && evt.Channel == events.UserChannel(brianID) {
			sawNotification = true
		}
	}
	assert.True(t, sawMessage, "expected message.sent broadcast")
	assert.True(t, sawNotification, "expected notification.created broadcast")

	var n models.Notification
	require.NoError(t, e.db.Where("user_id = ?", brianID).First(&n).Error)
	assert.Equal(t, models.NotificationNewMessage, n.Type)
}

func TestMessageEditAndDelete(t *testing.T) {
	e := setup(t)

	_, tokenA := register(t, e, "Amina", "amina@example.com")
	brianID, tokenB := register(t, e, "Brian", "brian@example.com")

	w := e.do(t, http.MethodPost, "/api/v1/conversations", tokenA, map[string]interface{}{
		"user_id": brianID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	conv := decode(t, w)["data"].(map[string]interface{})["conversation"].(map[string]interface{})
	convID := uint(conv["id"].(float64))

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/conversations/%d/messages", convID), tokenA, map[string]string{
		"message": "first draft",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msg := decode(t, w)["data"].(map[string]interface{})["message"].(map[string]interface{})
	msgID := uint(msg["id"].(float64))

	// only the sender may edit
	w = e.do(t, http.MethodPut, fmt.Sprintf("/api/v1/conversations/%d/messages/%d", convID, msgID), tokenB, map[string]string{
		"message": "hijacked",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodPut, fmt.Sprintf("/api/v1/conversations/%d/messages/%d", convID, msgID), tokenA, map[string]string{
		"message": "second draft",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Message
	require.NoError(t, e.db.First(&stored, msgID).Error)
	assert.Equal(t, "second draft", stored.Message)

	// only the sender may delete
	w = e.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/conversations/%d/messages/%d", convID, msgID), tokenB, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/conversations/%d/messages/%d", convID, msgID), tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	e.db.Model(&models.Message{}).Where("id = ?", msgID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestConversationDelete(t *testing.T) {
	e := setup(t)

	_, tokenA := register(t, e, "Amina", "amina@example.com")
	brianID, _ := register(t, e, "Brian", "brian@example.com")
	_, tokenC := register(t, e, "Chebet", "chebet@example.com")

	w := e.do(t, http.MethodPost, "/api/v1/conversations", tokenA, map[string]interface{}{
		"user_id": brianID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	conv := decode(t, w)["data"].(map[string]interface{})["conversation"].(map[string]interface{})
	convID := uint(conv["id"].(float64))

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/conversations/%d/messages", convID), tokenA, map[string]string{
		"message": "soon to be gone",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// an outsider may not delete the thread
	w = e.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/conversations/%d", convID), tokenC, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/conversations/%d", convID), tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the thread, its participant links and its messages are all gone
	var convs, pivots, msgs int64
	e.db.Model(&models.Conversation{}).Where("id = ?", convID).Count(&convs)
	e.db.Model(&models.ConversationUser{}).Where("conversation_id = ?", convID).Count(&pivots)
	e.db.Model(&models.Message{}).Where("conversation_id = ?", convID).Count(&msgs)
	assert.EqualValues(t, 0, convs)
	assert.EqualValues(t, 0, pivots)
	assert.EqualValues(t, 0, msgs)
}

func TestPresenceEndpoints(t *testing.T) {
	e := setup(t)

	aminaID, tokenA := register(t, e, "Amina", "amina@example.com")
	brianID, tokenB := register(t, e, "Brian", "brian@example.com")
	_ = tokenB

	w := e.do(t, http.MethodPost, "/api/v1/heartbeat", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Amina shows online, Brian never heartbeat so reads offline with a
	// null last_seen
	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/user-status/%d", aminaID), tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode(t, w)["data"].(map[string]interface{})["status"].(map[string]interface{})
	assert.Equal(t, "online", status["status"])
	assert.NotNil(t, status["last_seen"])

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/user-status/%d", brianID), tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	status = decode(t, w)["data"].(map[string]interface{})["status"].(map[string]interface{})
	assert.Equal(t, "offline", status["status"])
	assert.Nil(t, status["last_seen"])

	w = e.do(t, http.MethodGet, "/api/v1/online-users", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	online := data["online_users"].([]interface{})
	require.Len(t, online, 1)
	first := online[0].(map[string]interface{})
	assert.EqualValues(t, aminaID, first["user_id"])
}

func TestAIChat(t *testing.T) {
	e := setup(t)

	_, token := register(t, e, "Amina", "amina@example.com")

	w := e.do(t, http.MethodPost, "/api/v1/ai-messages", token, map[string]string{
		"prompt": "I have been feeling low lately",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msg := decode(t, w)["data"].(map[string]interface{})["message"].(map[string]interface{})
	assert.Equal(t, "I hear you. How are you feeling right now?", msg["response"])

	// history lists the stored exchange
	w = e.do(t, http.MethodGet, "/api/v1/ai-messages", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	msgs := decode(t, w)["data"].(map[string]interface{})["messages"].([]interface{})
	assert.Len(t, msgs, 1)

	// a busy provider surfaces as 503 and stores nothing
	e.ai.err = ai.ErrBusy
	w = e.do(t, http.MethodPost, "/api/v1/ai-messages", token, map[string]string{
		"prompt": "are you there?",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var count int64
	e.db.Model(&models.AIMessage{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAdminGate(t *testing.T) {
	e := setup(t)

	userID, token := register(t, e, "Amina", "amina@example.com")

	w := e.do(t, http.MethodGet, "/api/v1/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", userID).Update("is_admin", true).Error)

	w = e.do(t, http.MethodGet, "/api/v1/admin/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/v1/admin/export/appointments.csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}
