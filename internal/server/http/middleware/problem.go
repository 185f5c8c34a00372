package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AliXAbdullah03/nge-brain/internal/server/http/dto"
)

// NewProblem builds a problem document for status with the given code.
func NewProblem(c *gin.Context, status int, code, detail string) dto.Problem {
	return dto.Problem{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request.URL.Path,
		Code:     code,
	}
}

// WriteProblem sends p as application/problem+json and stops the chain.
func WriteProblem(c *gin.Context, p dto.Problem) {
	c.Header("Content-Type", dto.ContentTypeProblemJSON)
	c.AbortWithStatusJSON(p.Status, p)
}

// AbortWithProblem is shorthand for WriteProblem(c, NewProblem(...)).
func AbortWithProblem(c *gin.Context, status int, code, detail string) {
	WriteProblem(c, NewProblem(c, status, code, detail))
}
