package handler

import (
	"net/http"

	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ResourceHandler manages the self-help library. Reads are open; writes are
// admin only via the router.
type ResourceHandler struct {
	DB *gorm.DB
}

func NewResourceHandler(db *gorm.DB) *ResourceHandler {
	return &ResourceHandler{DB: db}
}

// List returns resources, optionally filtered by type.
func (h *ResourceHandler) List(c *gin.Context) {
	q := h.DB.Order("created_at DESC")
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}

	var resources []models.Resource
	if err := q.Find(&resources).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load resources.")
		return
	}

	util.Success(c, util.Response{
		"resources": resources,
	})
}

// Show returns one resource.
func (h *ResourceHandler) Show(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid resource id.")
		return
	}

	var resource models.Resource
	if err := h.DB.First(&resource, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Resource not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load resource.")
		}
		return
	}

	util.Success(c, util.Response{
		"resource": resource,
	})
}

type resourceReq struct {
	Title       string `json:"title" binding:"required,max=255"`
	Type        string `json:"type" binding:"required,max=50"`
	URL         string `json:"url" binding:"max=2048"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Tags        string `json:"tags" binding:"max=500"`
}

// Create adds a resource. Admin only.
func (h *ResourceHandler) Create(c *gin.Context) {
	var req resourceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body.")
		return
	}

	resource := models.Resource{
		Title:       req.Title,
		Type:        req.Type,
		URL:         req.URL,
		Description: req.Description,
		Content:     req.Content,
		Tags:        req.Tags,
	}
	if err := h.DB.Create(&resource).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create resource.")
		return
	}

	util.Created(c, util.Response{
		"message":  "Resource created successfully",
		"resource": resource,
	})
}

// Update edits a resource. Admin only.
func (h *ResourceHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid resource id.")
		return
	}

	var resource models.Resource
	if err := h.DB.First(&resource, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Resource not found.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load resource.")
		}
		return
	}

	var req resourceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body.")
		return
	}

	resource.Title = req.Title
	resource.Type = req.Type
	resource.URL = req.URL
	resource.Description = req.Description
	resource.Content = req.Content
	resource.Tags = req.Tags

	if err := h.DB.Save(&resource).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update resource.")
		return
	}

	util.Success(c, util.Response{
		"message":  "Resource updated successfully",
		"resource": resource,
	})
}

// Delete removes a resource. Admin only.
func (h *ResourceHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid resource id.")
		return
	}

	res := h.DB.Delete(&models.Resource{}, id)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete resource.")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Resource not found.")
		return
	}

	util.Success(c, util.Response{
		"message": "Resource deleted successfully",
	})
}
