package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/transpose"
	"github.com/reoring/transpose/middleware"
)

type signup struct {
	Email string `json:"email" check:"email"`
	Age   int    `json:"age" check:"gte=18"`
}

func serve(t *testing.T, body string) (*httptest.ResponseRecorder, *signup) {
	t.Helper()
	tp := transpose.New(middleware.DefaultOptions()...)
	var got *signup
	h := middleware.ValidateJSON[signup](tp, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, ok := middleware.OutcomeFromContext[signup](r.Context())
		require.True(t, ok)
		got = &out.Value
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body)))
	return rec, got
}

func TestValidateJSON_Valid(t *testing.T) {
	rec, got := serve(t, `{"email":"a@example.com","age":20}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, signup{Email: "a@example.com", Age: 20}, *got)
}

func TestValidateJSON_Invalid(t *testing.T) {
	rec, got := serve(t, `{"email":"a@example.com","age":12}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Nil(t, got)

	var body struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"$.age must be greater than or equal to 18, 12 given"}, body.Errors)
}

func TestValidateJSON_DuplicateKey(t *testing.T) {
	rec, got := serve(t, `{"email":"a@example.com","age":20,"age":21}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, got)
}

func TestValidateJSON_TooLarge(t *testing.T) {
	rec, _ := serve(t, `{"email":"`+strings.Repeat("a", int(middleware.DefaultMaxBytes))+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFailure_DefinitionDefect(t *testing.T) {
	status, _ := middleware.Failure(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
}

type quota struct {
	Limit int8 `json:"limit"`
}

func TestValidateJSON_OutOfRange(t *testing.T) {
	tp := transpose.New(middleware.DefaultOptions()...)
	h := middleware.ValidateJSON[quota](tp, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quota", strings.NewReader(`{"limit":300}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "$.limit must be between -128 and 127, 300 given")
}
