package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ALT-F4-LLC/tracker/internal/detail"
	"github.com/ALT-F4-LLC/tracker/internal/output"
)

var statusForCode = map[output.ErrorCode]int{
	output.ErrValidation:  http.StatusUnprocessableEntity,
	output.ErrNotFound:    http.StatusNotFound,
	output.ErrAuth:        http.StatusUnauthorized,
	output.ErrConflict:    http.StatusConflict,
	output.ErrUnavailable: http.StatusServiceUnavailable,
}

// abort writes the error response for err and stops the handler chain.
// Store failures are logged and replaced by a generic retryable message;
// a missing issue carries a redirect to the issue list.
func (h *Handlers) abort(c *gin.Context, err error) {
	code := output.Classify(err)
	status, ok := statusForCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := gin.H{
		"error": output.PublicError(err, code).Error(),
		"code":  code,
	}
	switch code {
	case output.ErrUnavailable:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("store operation failed")
		body["retryable"] = true
	case output.ErrNotFound:
		body["redirect"] = detail.ListPath
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
		"code":  output.ErrGeneral,
	})
}
