// Package response writes the JSON envelope every endpoint answers with.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope. Data is always present so list endpoints
// answer [] rather than dropping the key; Error is set on failure.
type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func envelope[T any](ctx *gin.Context, status int, message string) APIResponse[T] {
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   status < http.StatusBadRequest,
		Message:   message,
	}
}

// OK writes a success envelope. status defaults to 200.
func OK[T any](ctx *gin.Context, status int, data T, message string, meta any) {
	if status == 0 {
		status = http.StatusOK
	}
	r := envelope[T](ctx, status, message)
	r.Data = data
	r.Meta = meta
	ctx.JSON(r.Status, r)
}

// Fail writes an error envelope and aborts the handler chain. status defaults to 400.
func Fail(ctx *gin.Context, status int, message string, details any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	r := envelope[any](ctx, status, message)
	r.Error = details
	ctx.AbortWithStatusJSON(r.Status, r)
}
