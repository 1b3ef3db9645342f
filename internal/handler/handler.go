package handler

import (
	"strconv"

	"github.com/flavian-jumba/peerly-BE/internal/middleware"
	"github.com/flavian-jumba/peerly-BE/internal/models"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user placed by the auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(middleware.CurrentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// pagination reads page/page_size query params with sane bounds.
func pagination(c *gin.Context, defaultSize int) (page, size, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if size <= 0 || size > 100 {
		size = defaultSize
	}
	return page, size, (page - 1) * size
}

// pathID parses a positive numeric :id style path param.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
