package codec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/transpose/codec"
)

func TestParseDateTime(t *testing.T) {
	jst := time.FixedZone("", 9*3600)
	cases := map[string]time.Time{
		"2024":                       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"2024-03-01":                 time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"2024-03-01T10:20":           time.Date(2024, 3, 1, 10, 20, 0, 0, time.UTC),
		"2024-03-01 10:20:30":        time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC),
		"2024-03-01T10:20:30.123Z":   time.Date(2024, 3, 1, 10, 20, 30, 123000000, time.UTC),
		"2024-03-01T10:20:30+09:00":  time.Date(2024, 3, 1, 10, 20, 30, 0, jst),
		"2024-03-01T10:20:30.5+0900": time.Date(2024, 3, 1, 10, 20, 30, 500000000, jst),
	}
	for in, want := range cases {
		got, err := codec.ParseDateTime(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %v want %v", in, got, want)
	}
}

func TestParseDateTime_Invalid(t *testing.T) {
	for _, in := range []string{"", "24", "2024-1-1", "2024-13-01", "yesterday", "2024-03-01T25:00"} {
		_, err := codec.ParseDateTime(in)
		assert.ErrorIs(t, err, codec.ErrInvalidFormat, in)
	}
}

func TestFormatDateTime_Milliseconds(t *testing.T) {
	assert.Equal(t, "2024-01-01T00:00:00Z", codec.FormatDateTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-01T00:00:00.250Z", codec.FormatDateTime(time.Date(2024, 1, 1, 0, 0, 0, 250000000, time.UTC)))
	// sub-millisecond precision is dropped along with zero milliseconds
	assert.Equal(t, "2024-01-01T00:00:00Z", codec.FormatDateTime(time.Date(2024, 1, 1, 0, 0, 0, 999, time.UTC)))
}

func TestDateTime_RoundTrip(t *testing.T) {
	v, err := codec.ParseDateTime("1999")
	require.NoError(t, err)
	assert.Equal(t, "1999-01-01T00:00:00Z", codec.FormatDateTime(v))
}

func TestParseUUID(t *testing.T) {
	u, err := codec.ParseUUID("4B3F5C6E-2C1D-4A5B-9C8D-7E6F5A4B3C2D")
	require.NoError(t, err)
	assert.Equal(t, "4b3f5c6e-2c1d-4a5b-9c8d-7e6f5a4b3c2d", u.String())

	for _, in := range []string{"x", "urn:uuid:4b3f5c6e-2c1d-4a5b-9c8d-7e6f5a4b3c2d", "4b3f5c6e2c1d4a5b9c8d7e6f5a4b3c2d"} {
		_, err := codec.ParseUUID(in)
		assert.ErrorIs(t, err, codec.ErrInvalidFormat, in)
	}
}
