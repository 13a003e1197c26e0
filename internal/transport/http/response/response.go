package response

import "github.com/gin-gonic/gin"

const (
	CodeBadRequest      = 40000
	CodeNoFile          = 40001
	CodeInvalidJSON     = 40002
	CodePayloadTooLarge = 41300
	CodeInternalServer  = 50000
	CodeNotConfigured   = 50001
	CodeUpstream        = 50002
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// OK writes data as the whole response body.
func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
