// Package codec converts between wire strings and the domain values of the
// format-specific schema variants (date-time and UUID).
package codec

import "errors"

// ErrInvalidFormat is returned when a wire string does not match the expected format.
var ErrInvalidFormat = errors.New("codec: invalid format")
