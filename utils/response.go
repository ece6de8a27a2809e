package utils

import "github.com/gin-gonic/gin"

// JSONError writes the error body. code is omitted when empty.
func JSONError(c *gin.Context, status int, message, code string) {
	body := gin.H{"success": false, "error": message}
	if code != "" {
		body["code"] = code
	}
	c.JSON(status, body)
}

// AbortWithMappedError resolves err through the mapper and aborts the request.
func AbortWithMappedError(c *gin.Context, mapper *ErrorMapper, err error) {
	info := mapper.Map(err)
	JSONError(c, info.Status, info.Message, info.Code)
	c.Abort()
}
