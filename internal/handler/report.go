package handler

import (
	"net/http"

	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReportHandler takes moderation reports from users; listing and resolving
// them is admin work.
type ReportHandler struct {
	DB *gorm.DB
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{DB: db}
}

type reportReq struct {
	ReportedUserID *uint  `json:"reported_user_id"`
	MessageID      *uint  `json:"message_id"`
	GroupID        *uint  `json:"group_id"`
	Reason         string `json:"reason" binding:"required,max=255"`
	Details        string `json:"details" binding:"max=1000"`
}

// Create files a report against a user, message or group.
func (h *ReportHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthenticated.")
		return
	}

	var req reportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ValidationError(c, map[string]string{"reason": "A reason is required."})
		return
	}
	if req.ReportedUserID == nil && req.MessageID == nil && req.GroupID == nil {
		util.ValidationError(c, map[string]string{"reported_user_id": "A report must target a user, a message or a group."})
		return
	}
	if req.ReportedUserID != nil {
		var count int64
		h.DB.Model(&models.User{}).Where("id = ?", *req.ReportedUserID).Count(&count)
		if count == 0 {
			util.ValidationError(c, map[string]string{"reported_user_id": "The reported user does not exist."})
			return
		}
	}

	report := models.Report{
		ReporterID:     user.ID,
		ReportedUserID: req.ReportedUserID,
		MessageID:      req.MessageID,
		GroupID:        req.GroupID,
		Reason:         req.Reason,
		Details:        req.Details,
	}
	if err := h.DB.Create(&report).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to file report.")
		return
	}

	util.Created(c, util.Response{
		"message": "Report submitted successfully",
		"report":  report,
	})
}

// List returns all reports for moderators, unresolved first. Admin only.
func (h *ReportHandler) List(c *gin.Context) {
	q := h.DB.Preload("Reporter").Preload("ReportedUser").
		Order("resolved ASC, created_at DESC")
	if r := c.Query("resolved"); r == "true" || r == "false" {
		q = q.Where("resolved = ?", r == "true")
	}

	var reports []models.Report
	if err := q.Find(&reports).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load reports.")
		return
	}

	util.Success(c, util.Response{
		"reports": reports,
	})
}

// Resolve marks a report handled. Admin only.
func (h *ReportHandler) Resolve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid report id.")
		return
	}

	res := h.DB.Model(&models.Report{}).
		Where("id = ?", id).
		Update("resolved", true)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to resolve report.")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Report not found.")
		return
	}

	util.Success(c, util.Response{
		"message": "Report resolved",
	})
}
