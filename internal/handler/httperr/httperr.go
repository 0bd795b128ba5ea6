package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the error body every endpoint renders.
type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

func New(status int, msg string, detail any) Response {
	resp := Response{Status: status, Detail: detail}
	resp.Error.Message = msg
	return resp
}

func Internal() Response {
	return New(http.StatusInternalServerError, "Internal server error", nil)
}

// AbortWithError renders resp immediately and keeps err on the context so the
// error middleware can log the cause of server-side failures.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("httperr: AbortWithError called with nil error")
	}

	resp := New(status, msg, detail)
	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
