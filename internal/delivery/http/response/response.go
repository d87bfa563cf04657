package response

import (
	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope of every API reply
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Meta describes one page of a list
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func requestID(c *gin.Context) string {
	id, _ := c.Get("RequestID")
	s, _ := id.(string)
	return s
}

func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

func Paginated(c *gin.Context, code int, message string, data interface{}, meta Meta) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      &meta,
		RequestID: requestID(c),
	})
}

func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: requestID(c),
	})
}
