package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/JhonatanRC03/chat-rag/pkg/utils/errors"
	"github.com/JhonatanRC03/chat-rag/pkg/utils/response"
)

// Recovery returns a middleware that recovers from panics, logs the stack
// and replies with a 500 envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					"error", r,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.Err(errors.ErrPanic))
			}
		}()
		c.Next()
	}
}
