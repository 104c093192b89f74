package naming_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reoring/transpose/naming"
)

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"HTTP", "Server", "ID"}, naming.Words("HTTPServerID"))
	assert.Equal(t, []string{"first", "name"}, naming.Words("first_name"))
	assert.Equal(t, []string{"user", "ID"}, naming.Words("userID"))
	assert.Equal(t, []string{"Line2", "Text"}, naming.Words("Line2Text"))
	assert.Empty(t, naming.Words("__"))
}

func TestStrategies(t *testing.T) {
	cases := []struct {
		s    naming.Strategy
		in   string
		want string
	}{
		{naming.Identity, "FirstName", "FirstName"},
		{naming.Camel, "FirstName", "firstName"},
		{naming.Camel, "UserID", "userId"},
		{naming.Pascal, "first_name", "FirstName"},
		{naming.Snake, "FirstName", "first_name"},
		{naming.Snake, "HTTPServer", "http_server"},
		{naming.Kebab, "FirstName", "first-name"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.s.Format(tc.in))
	}
}

func TestNormalize(t *testing.T) {
	for _, in := range []string{"firstName", "first_name", "First Name", "FIRST-NAME", " first.name "} {
		assert.Equal(t, "firstname", naming.Normalize(in), in)
		assert.Equal(t, "firstname", naming.Snake.Normalize(in), in)
	}
}
