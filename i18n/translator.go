package i18n

import (
	"strings"
	"sync"
)

// Message codes produced by schema nodes, constraints and the engine.
const (
	CodeNullGiven      = "null_given"
	CodeInvalidType    = "invalid_type"
	CodeNotPermitted   = "not_permitted"
	CodeRequired       = "required"
	CodeConflict       = "conflict"
	CodeEmptyKey       = "empty_key"
	CodeGreaterThan    = "greater_than"
	CodeGreaterOrEqual = "greater_or_equal"
	CodeLessThan       = "less_than"
	CodeLessOrEqual    = "less_or_equal"
	CodeNotEqual       = "not_equal"
	CodeInList         = "in_list"
	CodePattern        = "pattern"
	CodeEmail          = "email"
	CodeUUID           = "uuid"
	CodeDateTime       = "date_time"
	CodeMinLength      = "min_length"
	CodeMaxLength      = "max_length"
	CodeNotEmpty       = "not_empty"
	CodePrefix         = "prefix"
	CodeSuffix         = "suffix"
	CodeOutOfRange     = "out_of_range"
	CodeMaxItems       = "max_items"
	CodeSummary        = "summary"
)

// Translator retrieves localized messages for message codes.
// data provides the placeholders embedded in the message (for example
// "path", "expected", "given").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var catalog = map[string]map[string]string{
	"en": {
		CodeNullGiven:      "{path} must be {expected} but null given",
		CodeInvalidType:    "{path} must be {expected}, {given} given",
		CodeNotPermitted:   "{path} is not permitted",
		CodeRequired:       "{path} is required",
		CodeConflict:       "{path} conflicts with {other}",
		CodeEmptyKey:       "{path} contains an empty key",
		CodeGreaterThan:    "{path} must be greater than {bound}, {given} given",
		CodeGreaterOrEqual: "{path} must be greater than or equal to {bound}, {given} given",
		CodeLessThan:       "{path} must be less than {bound}, {given} given",
		CodeLessOrEqual:    "{path} must be less than or equal to {bound}, {given} given",
		CodeNotEqual:       "{path} must not be equal to {bound}",
		CodeInList:         "{path} must be one of {values}, {given} given",
		CodePattern:        "{path} must match {pattern}, {given} given",
		CodeEmail:          "{path} must be a valid email address, {given} given",
		CodeUUID:           "{path} must be a valid UUID, {given} given",
		CodeDateTime:       "{path} must be a valid date-time, {given} given",
		CodeMinLength:      "{path} must be at least {bound} characters long, {given} given",
		CodeMaxLength:      "{path} must be at most {bound} characters long, {given} given",
		CodeNotEmpty:       "{path} must not be empty",
		CodePrefix:         "{path} must start with {bound}, {given} given",
		CodeSuffix:         "{path} must end with {bound}, {given} given",
		CodeOutOfRange:     "{path} must be between {min} and {max}, {given} given",
		CodeMaxItems:       "{path} must contain at most {bound} items, {given} given",
		CodeSummary:        "validation failed for {count} properties",
	},
	"ja": {
		CodeNullGiven:      "{path} は {expected} である必要がありますが null が指定されました",
		CodeInvalidType:    "{path} は {expected} である必要がありますが {given} が指定されました",
		CodeNotPermitted:   "{path} は許可されていません",
		CodeRequired:       "{path} は必須です",
		CodeConflict:       "{path} は {other} と競合しています",
		CodeEmptyKey:       "{path} に空のキーが含まれています",
		CodeGreaterThan:    "{path} は {bound} より大きい必要があります（{given}）",
		CodeGreaterOrEqual: "{path} は {bound} 以上である必要があります（{given}）",
		CodeLessThan:       "{path} は {bound} より小さい必要があります（{given}）",
		CodeLessOrEqual:    "{path} は {bound} 以下である必要があります（{given}）",
		CodeNotEqual:       "{path} は {bound} と等しくてはいけません",
		CodeInList:         "{path} は {values} のいずれかである必要があります（{given}）",
		CodePattern:        "{path} は {pattern} に一致する必要があります（{given}）",
		CodeEmail:          "{path} は有効なメールアドレスである必要があります（{given}）",
		CodeUUID:           "{path} は有効な UUID である必要があります（{given}）",
		CodeDateTime:       "{path} は有効な日時である必要があります（{given}）",
		CodeMinLength:      "{path} は {bound} 文字以上である必要があります（{given}）",
		CodeMaxLength:      "{path} は {bound} 文字以下である必要があります（{given}）",
		CodeNotEmpty:       "{path} は空であってはいけません",
		CodePrefix:         "{path} は {bound} で始まる必要があります（{given}）",
		CodeSuffix:         "{path} は {bound} で終わる必要があります（{given}）",
		CodeOutOfRange:     "{path} は {min} から {max} の範囲である必要があります（{given}）",
		CodeMaxItems:       "{path} の要素数は {bound} 以下である必要があります（{given}）",
		CodeSummary:        "{count} 件のプロパティで検証に失敗しました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tpl, ok := catalog[t.lang][code]
	if !ok {
		tpl, ok = catalog["en"][code]
	}
	if !ok {
		return code
	}
	return Expand(tpl, data)
}

// Expand substitutes {name} placeholders in tpl.
func Expand(tpl string, data map[string]string) string {
	if len(data) == 0 {
		return tpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
