package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	data := map[string]string{"path": "$.age", "bound": "1", "given": "0"}
	assert.Equal(t, "$.age must be greater than 1, 0 given", T(CodeGreaterThan, data))

	SetLanguage("ja")
	defer SetLanguage("en")
	assert.Equal(t, "$.age は 1 より大きい必要があります（0）", T(CodeGreaterThan, data))

	SetLanguage("fr")
	assert.Equal(t, "$.age is required", T(CodeRequired, map[string]string{"path": "$.age"}))
}

func TestTranslator_UnknownCode(t *testing.T) {
	assert.Equal(t, "no_such_code", T("no_such_code", nil))
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	assert.Equal(t, "X:required", T(CodeRequired, nil))
}

func TestExpand(t *testing.T) {
	assert.Equal(t, "{path} x", Expand("{path} x", nil))
	assert.Equal(t, "a b {c}", Expand("{a} {b} {c}", map[string]string{"a": "a", "b": "b"}))
}
