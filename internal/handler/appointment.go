package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/events"
	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/scheduling"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AppointmentHandler manages bookings. All writes that could create an
// overlap go through the scheduling service, never straight to the DB.
type AppointmentHandler struct {
	DB          *gorm.DB
	Scheduler   *scheduling.Service
	Broadcaster events.Broadcaster
}

func NewAppointmentHandler(db *gorm.DB, scheduler *scheduling.Service, b events.Broadcaster) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Scheduler: scheduler, Broadcaster: b}
}

// List returns the current user's appointments, newest first, with the
// therapist preloaded.
func (h *AppointmentHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var appts []models.Appointment
	err := h.DB.Preload("Therapist").
		Where("user_id = ?", user.ID).
		Order("appointment_at DESC").
		Find(&appts).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load appointments.")
		return
	}

	util.Success(c, util.Response{
		"appointments": appts,
	})
}

type appointmentReq struct {
	TherapistID     uint   `json:"therapist_id" binding:"required"`
	AppointmentAt   string `json:"appointment_at" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	Notes           string `json:"notes"`
}

func (r *appointmentReq) validate() (time.Time, map[string]string) {
	fields := map[string]string{}

	at, err := util.ParseAppointmentTime(r.AppointmentAt)
	if err != nil {
		fields["appointment_at"] = "A valid appointment date and time is required."
	}
	if r.DurationMinutes != 0 &&
		(r.DurationMinutes < models.MinDurationMinutes || r.DurationMinutes > models.MaxDurationMinutes) {
		fields["duration_minutes"] = fmt.Sprintf("Duration must be between %d and %d minutes.",
			models.MinDurationMinutes, models.MaxDurationMinutes)
	}
	if len(fields) > 0 {
		return time.Time{}, fields
	}
	return at, nil
}

// Create books a new appointment for the current user. Overlaps on either
// the therapist's or the patient's calendar reject the booking with 409.
func (h *AppointmentHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var req appointmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body.")
		return
	}
	at, fields := req.validate()
	if fields != nil {
		util.ValidationError(c, fields)
		return
	}

	var therapist models.Therapist
	if err := h.DB.First(&therapist, req.TherapistID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.ValidationError(c, map[string]string{"therapist_id": "The selected therapist does not exist."})
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load therapist.")
		}
		return
	}

	appt := models.Appointment{
		UserID:          user.ID,
		TherapistID:     req.TherapistID,
		AppointmentAt:   at,
		DurationMinutes: req.DurationMinutes,
		Status:          models.AppointmentPending,
		Notes:           req.Notes,
		CreatedBy:       models.CreatedByUser,
	}

	conflict, err := h.Scheduler.Book(c.Request.Context(), &appt)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to book appointment.")
		return
	}
	if conflict != nil {
		util.ConflictError(c, "appointment_at", conflict.Message())
		return
	}

	h.notifyBooked(c, user, &therapist, &appt)

	appt.Therapist = &therapist
	util.Created(c, util.Response{
		"message":     "Appointment booked successfully",
		"appointment": appt,
	})
}

// Show returns one of the current user's appointments.
func (h *AppointmentHandler) Show(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid appointment id.")
		return
	}

	var appt models.Appointment
	err := h.DB.Preload("Therapist").
		Where("id = ? AND user_id = ?", id, user.ID).
		First(&appt).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Appointment not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load appointment.")
		}
		return
	}

	util.Success(c, util.Response{
		"appointment": appt,
	})
}

type appointmentUpdateReq struct {
	AppointmentAt   string  `json:"appointment_at"`
	DurationMinutes int     `json:"duration_minutes"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes"`
}

// Update edits an appointment. Changing the time or duration re-runs the
// conflict check with the appointment excluded from its own conflict set,
// and so does moving a cancelled appointment back to an active status.
func (h *AppointmentHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid appointment id.")
		return
	}

	var appt models.Appointment
	err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&appt).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Appointment not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load appointment.")
		}
		return
	}

	var req appointmentUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body.")
		return
	}

	fields := map[string]string{}
	rescheduled := false
	wasCancelled := appt.Status == models.AppointmentCancelled

	if req.AppointmentAt != "" {
		at, err := util.ParseAppointmentTime(req.AppointmentAt)
		if err != nil {
			fields["appointment_at"] = "A valid appointment date and time is required."
		} else if !at.Equal(appt.AppointmentAt) {
			appt.AppointmentAt = at
			rescheduled = true
		}
	}
	if req.DurationMinutes != 0 {
		if req.DurationMinutes < models.MinDurationMinutes || req.DurationMinutes > models.MaxDurationMinutes {
			fields["duration_minutes"] = fmt.Sprintf("Duration must be between %d and %d minutes.",
				models.MinDurationMinutes, models.MaxDurationMinutes)
		} else if req.DurationMinutes != appt.DurationMinutes {
			appt.DurationMinutes = req.DurationMinutes
			rescheduled = true
		}
	}
	if req.Status != "" {
		switch req.Status {
		case models.AppointmentPending, models.AppointmentConfirmed,
			models.AppointmentCancelled, models.AppointmentCompleted:
			appt.Status = req.Status
		default:
			fields["status"] = "Invalid appointment status."
		}
	}
	if req.Notes != nil {
		appt.Notes = *req.Notes
	}
	if len(fields) > 0 {
		util.ValidationError(c, fields)
		return
	}

	// reinstating a cancelled appointment re-claims its slot, which may have
	// been rebooked in the meantime, so it revalidates like a time change
	reinstated := wasCancelled && appt.Status != models.AppointmentCancelled

	// a cancelled appointment holds no slot, skip the conflict check
	if (rescheduled || reinstated) && appt.Status != models.AppointmentCancelled {
		conflict, err := h.Scheduler.Reschedule(c.Request.Context(), &appt)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update appointment.")
			return
		}
		if conflict != nil {
			util.ConflictError(c, "appointment_at", conflict.Message())
			return
		}
	} else {
		if err := h.DB.Save(&appt).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update appointment.")
			return
		}
	}

	util.Success(c, util.Response{
		"message":     "Appointment updated successfully",
		"appointment": appt,
	})
}

// Cancel marks an appointment cancelled, releasing its slot for others.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid appointment id.")
		return
	}

	var appt models.Appointment
	err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&appt).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Appointment not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load appointment.")
		}
		return
	}

	appt.Status = models.AppointmentCancelled
	if err := h.DB.Save(&appt).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to cancel appointment.")
		return
	}

	util.Success(c, util.Response{
		"message":     "Appointment cancelled successfully",
		"appointment": appt,
	})
}

// notifyBooked writes the confirmation notification and broadcasts it.
// Failures are logged; the booking already committed and must not fail.
func (h *AppointmentHandler) notifyBooked(c *gin.Context, user *models.User, therapist *models.Therapist, appt *models.Appointment) {
	n := models.Notification{
		UserID:  user.ID,
		Type:    models.NotificationAppointmentBooked,
		Title:   "Appointment Booked",
		Message: fmt.Sprintf("Your appointment with %s on %s has been booked.", therapist.Name, appt.AppointmentAt.Format("Jan 2, 2006 at 3:04 PM")),
	}
	if err := h.DB.Create(&n).Error; err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("appointment notification write failed")
		return
	}

	events.Emit(c.Request.Context(), h.Broadcaster, events.New(
		events.NotificationCreated,
		events.UserChannel(user.ID),
		map[string]interface{}{
			"notification": n,
		},
	))
}
