package handler

import (
	"net/http"

	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TherapistHandler manages the therapist directory. Reads are open to all
// authenticated users; writes sit behind the admin gate in the router.
type TherapistHandler struct {
	DB *gorm.DB
}

func NewTherapistHandler(db *gorm.DB) *TherapistHandler {
	return &TherapistHandler{DB: db}
}

// List returns all therapists, optionally filtered by specialty.
func (h *TherapistHandler) List(c *gin.Context) {
	q := h.DB.Order("name ASC")
	if s := c.Query("specialty"); s != "" {
		q = q.Where("specialty LIKE ?", "%"+s+"%")
	}

	var therapists []models.Therapist
	if err := q.Find(&therapists).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load therapists.")
		return
	}

	util.Success(c, util.Response{
		"therapists": therapists,
	})
}

// Show returns one therapist.
func (h *TherapistHandler) Show(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid therapist id.")
		return
	}

	var therapist models.Therapist
	if err := h.DB.First(&therapist, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Therapist not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load therapist.")
		}
		return
	}

	util.Success(c, util.Response{
		"therapist": therapist,
	})
}

type therapistReq struct {
	Name        string `json:"name" binding:"required,max=255"`
	PhoneNumber string `json:"phone_number" binding:"required,max=20"`
	Email       string `json:"email" binding:"required"`
	Specialty   string `json:"specialty" binding:"required,max=255"`
	Bio         string `json:"bio" binding:"max=1000"`
}

// Create adds a therapist to the directory. Admin only.
func (h *TherapistHandler) Create(c *gin.Context) {
	var req therapistReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body.")
		return
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		util.ValidationError(c, map[string]string{"email": "A valid email address is required."})
		return
	}

	therapist := models.Therapist{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Specialty:   req.Specialty,
		Bio:         req.Bio,
	}
	if err := h.DB.Create(&therapist).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create therapist.")
		return
	}

	util.Created(c, util.Response{
		"message":   "Therapist created successfully",
		"therapist": therapist,
	})
}

// Update edits a therapist. Admin only.
func (h *TherapistHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid therapist id.")
		return
	}

	var therapist models.Therapist
	if err := h.DB.First(&therapist, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Therapist not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load therapist.")
		}
		return
	}

	var req therapistReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body.")
		return
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		util.ValidationError(c, map[string]string{"email": "A valid email address is required."})
		return
	}

	therapist.Name = req.Name
	therapist.PhoneNumber = req.PhoneNumber
	therapist.Email = req.Email
	therapist.Specialty = req.Specialty
	therapist.Bio = req.Bio

	if err := h.DB.Save(&therapist).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update therapist.")
		return
	}

	util.Success(c, util.Response{
		"message":   "Therapist updated successfully",
		"therapist": therapist,
	})
}

// Delete removes a therapist. Admin only. Their appointment history cascades.
func (h *TherapistHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid therapist id.")
		return
	}

	res := h.DB.Delete(&models.Therapist{}, id)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete therapist.")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Therapist not found.")
		return
	}

	util.Success(c, util.Response{
		"message": "Therapist deleted successfully",
	})
}
