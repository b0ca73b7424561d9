package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Degraded reports a read that fell back to partial data: the payload is
// still rendered, but success is false and the error is surfaced.
func Degraded(c *gin.Context, statusCode int, data interface{}, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"data":    data,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
