// Package handler holds the shared HTTP response conventions. Every
// endpoint wraps its payload in the same status/data envelope and hands
// errors to the error middleware instead of writing them itself.
package handler

import (
	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"status": "success",
		"data":   data,
	})
}

// Error attaches err to the context for the error middleware to render.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
