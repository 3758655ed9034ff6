package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Problem is the error body returned by the API: status, reason phrase and a
// human-readable detail.
type Problem struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// AbortProblem writes a Problem response and stops the handler chain.
func AbortProblem(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, Problem{
		Status: status,
		Title:  http.StatusText(status),
		Detail: detail,
	})
}
