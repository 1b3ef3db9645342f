package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of a successful reply.
type Response map[string]interface{}

// Business error codes.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeConflict     = 40901
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeServerErr    = 50001
	CodeUpstream     = 50301
)

// Success writes the unified success envelope.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Created is Success with a 201 status, used by resource-creating endpoints.
func Created(c *gin.Context, data Response) {
	c.JSON(http.StatusCreated, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes the unified error envelope.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// ValidationError reports malformed input as a field-keyed error map. The
// request is rejected before any write happens.
func ValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"code":    CodeInvalidParam,
		"message": "The given data was invalid.",
		"errors":  fields,
	})
}

// ConflictError reports a scheduling overlap, naming the party whose
// calendar conflicts.
func ConflictError(c *gin.Context, field, msg string) {
	c.JSON(http.StatusConflict, gin.H{
		"code":    CodeConflict,
		"message": msg,
		"errors":  map[string]string{field: msg},
	})
}
