package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reoring/transpose"
	"github.com/reoring/transpose/middleware"
)

// ValidateJSON transposes the request body into T, stores the Outcome[T] in
// the request context, or answers 422 (data errors) or 400 (bad input).
func ValidateJSON[T any](tp *transpose.Transposer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			out, err := transpose.TryTranspose[T](c.Request().Context(), tp, transpose.JSONReader(c.Request().Body))
			if err == nil && !out.Valid() {
				return c.JSON(http.StatusUnprocessableEntity, middleware.ErrorPayload(out.Result))
			}
			if err != nil {
				status, body := middleware.Failure(err)
				return c.JSON(status, body)
			}
			ctx := middleware.ContextWithOutcome(c.Request().Context(), out)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetOutcome fetches Outcome[T] from echo.Context.
func GetOutcome[T any](c echo.Context) (transpose.Outcome[T], bool) {
	return middleware.OutcomeFromContext[T](c.Request().Context())
}
