package transpose

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/transpose/i18n"
	"github.com/reoring/transpose/internal/engine"
	"github.com/reoring/transpose/result"
)

// ErrNotObject is reported when the top-level input is not an object.
var ErrNotObject = errors.New("top-level input must be an object")

// ErrTooMuchRecursion matches every RecursionError.
var ErrTooMuchRecursion = engine.ErrTooMuchRecursion

// RecursionError reports input nested beyond the configured depth.
type RecursionError = engine.RecursionError

// Issue is a non-fatal report produced while decoding text input.
type Issue struct {
	Path    string // JSON Pointer, "" for the root
	Code    string
	Message string
}

// InputError reports input that cannot be validated at all: malformed text,
// a non-object document, or decode-time enforcement failures.
type InputError struct {
	Source string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("transpose: invalid %s input: %v", e.Source, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ValidationError is returned by Transpose when the input has data errors.
// It carries the full result.
type ValidationError struct {
	Result result.Result
}

// Error summarizes the first few messages.
func (e *ValidationError) Error() string {
	errs := e.Result.Errors()
	b := &strings.Builder{}
	b.WriteString(i18n.T(i18n.CodeSummary, map[string]string{"count": strconv.Itoa(len(errs))}))
	const maxShown = 3
	lim := min(len(errs), maxShown)
	for i := 0; i < lim; i++ {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(errs[i])
	}
	if len(errs) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(errs))
	}
	return b.String()
}

// Errors returns the collected messages.
func (e *ValidationError) Errors() []string { return e.Result.Errors() }

// AsValidationError extracts a ValidationError using errors.As.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
