package response

import "github.com/gin-gonic/gin"

// Tool responses always carry the agent envelope: {ok, data} on success,
// {ok, error_code, human_message} on failure. human_message must be safe to
// speak back to a caller.

func OK(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"ok":   true,
		"data": data,
	})
}

func Fail(c *gin.Context, statusCode int, errorCode string, humanMessage string) {
	c.JSON(statusCode, gin.H{
		"ok":            false,
		"error_code":    errorCode,
		"human_message": humanMessage,
	})
}

func FailWithData(c *gin.Context, statusCode int, errorCode string, humanMessage string, data any) {
	c.JSON(statusCode, gin.H{
		"ok":            false,
		"error_code":    errorCode,
		"human_message": humanMessage,
		"data":          data,
	})
}
