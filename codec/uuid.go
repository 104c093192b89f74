package codec

import (
	"fmt"

	"github.com/google/uuid"
)

// ParseUUID accepts only the canonical hyphenated 8-4-4-4-12 form; uuid.Parse
// alone would also take URN and braced variants.
func ParseUUID(s string) (uuid.UUID, error) {
	if len(s) != 36 {
		return uuid.Nil, fmt.Errorf("%w: %q is not a UUID", ErrInvalidFormat, s)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return u, nil
}
