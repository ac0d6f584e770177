package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderXRequestID carries the caller-supplied trace ID. ContextRequestID
// is the gin context key the logger and error responses read it from.
const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// maxRequestIDLen guards against hostile headers bloating log lines.
const maxRequestIDLen = 64

// RequestID tags every request with a trace ID. A usable inbound
// X-Request-ID is kept so gateway traces line up with ours; otherwise a
// fresh UUID is minted. Either way the ID is echoed on the response for
// clients to quote when reporting problems.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)
		c.Next()
	}
}
