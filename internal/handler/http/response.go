package http

import "github.com/gin-gonic/gin"

// ErrorResponse 写出 {"error": message}
func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// SuccessResponse 原样写出 data
func SuccessResponse(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}
