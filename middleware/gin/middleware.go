package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/transpose"
	"github.com/reoring/transpose/middleware"
)

// ValidateJSON transposes the request body into T, stores the Outcome[T] in
// the request context and aborts with 422 (data errors) or 400 (bad input).
func ValidateJSON[T any](tp *transpose.Transposer) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := transpose.TryTranspose[T](c.Request.Context(), tp, transpose.JSONReader(c.Request.Body))
		if err == nil && !out.Valid() {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, middleware.ErrorPayload(out.Result))
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(middleware.Failure(err))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithOutcome(c.Request.Context(), out))
		c.Next()
	}
}

// GetOutcome fetches Outcome[T] from gin.Context.
func GetOutcome[T any](c *gin.Context) (transpose.Outcome[T], bool) {
	return middleware.OutcomeFromContext[T](c.Request.Context())
}
