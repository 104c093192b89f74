// Package middleware holds the framework-neutral pieces shared by the HTTP
// adapters: context storage of outcomes, default options and error payloads.
package middleware

import (
	"context"
	"errors"
	"net/http"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/transpose"
	"github.com/reoring/transpose/result"
)

// DefaultMaxBytes caps request bodies read by the adapters.
const DefaultMaxBytes int64 = 1 << 20

// ctxKeyOutcome is a typed context key; the type parameter makes it unique per T.
type ctxKeyOutcome[T any] struct{}

// ContextWithOutcome attaches an Outcome[T] to the context.
func ContextWithOutcome[T any](ctx context.Context, out transpose.Outcome[T]) context.Context {
	return context.WithValue(ctx, ctxKeyOutcome[T]{}, out)
}

// OutcomeFromContext retrieves an Outcome[T] from the context.
func OutcomeFromContext[T any](ctx context.Context) (transpose.Outcome[T], bool) {
	v, ok := ctx.Value(ctxKeyOutcome[T]{}).(transpose.Outcome[T])
	return v, ok
}

// DefaultOptions returns the recommended settings for HTTP JSON boundaries:
// duplicate keys are errors and bodies are capped at DefaultMaxBytes.
func DefaultOptions() []transpose.Option {
	return []transpose.Option{
		transpose.WithStrictness(transpose.Strictness{OnDuplicateKey: transpose.Error}),
		transpose.WithMaxBytes(DefaultMaxBytes),
	}
}

// ErrorPayload shapes a failed result for JSON responses.
func ErrorPayload(r result.Result) map[string]any {
	return map[string]any{"errors": r.Errors()}
}

// Failure maps an error returned by Transpose or TryTranspose to a status
// code and payload. Data errors are a 422 and malformed or oversized input a
// 400. Anything else points at a definition defect and is a 500.
func Failure(err error) (int, map[string]any) {
	var ve *transpose.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, ErrorPayload(ve.Result)
	}
	var ie *transpose.InputError
	if errors.As(err, &ie) || errors.Is(err, transpose.ErrTooMuchRecursion) {
		return http.StatusBadRequest, map[string]any{"error": err.Error()}
	}
	return http.StatusInternalServerError, map[string]any{"error": err.Error()}
}

// ValidateJSON is the net/http adapter. Requests failing validation are
// answered with 422 and the message list; valid ones reach next with the
// Outcome stored in the request context.
func ValidateJSON[T any](tp *transpose.Transposer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, err := transpose.TryTranspose[T](r.Context(), tp, transpose.JSONReader(r.Body))
		if err == nil && !out.Valid() {
			err = &transpose.ValidationError{Result: out.Result}
		}
		if err != nil {
			status, body := Failure(err)
			writeJSON(w, status, body)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithOutcome(r.Context(), out)))
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = gojson.NewEncoder(w).Encode(body)
}
