package utils

import (
	"errors"

	"github.com/gin-gonic/gin"

	"voicedoc/internal/apperr"
)

func Success(c *gin.Context, data any) {
	c.JSON(200, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   msg,
	})
}

// Fail renders err using the apperr status and code mapping. Foreign errors
// become a plain 500.
func Fail(c *gin.Context, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		c.JSON(e.HTTPStatus, gin.H{
			"success": false,
			"error":   e.Message,
			"code":    e.Code,
			"details": e.Details,
		})
		return
	}
	Error(c, 500, "internal server error")
}
