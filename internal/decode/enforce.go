package decode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Duplicates controls how repeated object keys are handled.
type Duplicates int

const (
	// DupIgnore keeps the last value silently.
	DupIgnore Duplicates = iota
	// DupWarn reports the key to the sink and keeps the last value.
	DupWarn
	// DupError stops decoding.
	DupError
)

// Issue codes reported by the enforcing source.
const (
	CodeDuplicateKey = "duplicate_key"
	CodeMaxDepth     = "max_depth"
	CodeMaxBytes     = "max_bytes"
)

var (
	ErrSyntax       = errors.New("decode: malformed JSON")
	ErrDuplicateKey = errors.New("decode: duplicate object key")
	ErrMaxDepth     = errors.New("decode: max depth exceeded")
	ErrMaxBytes     = errors.New("decode: max bytes exceeded")
)

// Options controls runtime enforcement.
type Options struct {
	OnDuplicate Duplicates
	// MaxDepth limits container nesting; the top-level value is depth 1.
	MaxDepth int
	MaxBytes int64
	// Sink receives every issue, fatal or not. Optional.
	Sink func(Issue)
}

// Issue is a lightweight report located by JSON Pointer.
type Issue struct {
	Code    string
	Path    string
	Message string
	// Fatal issues stop decoding and come back as an IssueError.
	Fatal bool
}

// IssueError is a fatal Issue.
type IssueError struct{ Issue }

func (e IssueError) Error() string {
	if e.Path == "" {
		return e.Message + " at the document root"
	}
	return e.Message + " at " + e.Path
}

func (e IssueError) Unwrap() error {
	switch e.Code {
	case CodeDuplicateKey:
		return ErrDuplicateKey
	case CodeMaxDepth:
		return ErrMaxDepth
	case CodeMaxBytes:
		return ErrMaxBytes
	}
	return nil
}

// Bytes validates b and decodes it into a value tree under opt.
func Bytes(b []byte, opt Options) (any, error) {
	if !gojson.Valid(b) {
		var v any
		if err := gojson.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return nil, ErrSyntax
	}
	return Tree(Enforce(NewBytes(b), opt))
}

// Enforce wraps inner so that duplicate keys, nesting depth and consumed
// bytes are checked while tokens stream through.
func Enforce(inner TokenSource, opt Options) TokenSource {
	return &enforcing{inner: inner, opt: opt}
}

type dupFrame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

type enforcing struct {
	inner TokenSource
	opt   Options
	stack []dupFrame
}

func (e *enforcing) report(code, path, msg string, fatal bool) error {
	is := Issue{Code: code, Path: path, Message: msg, Fatal: fatal}
	if e.opt.Sink != nil {
		e.opt.Sink(is)
	}
	if fatal {
		return IssueError{is}
	}
	return nil
}

func (e *enforcing) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	path := e.pathFor(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := dupFrame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			f = dupFrame{kind: kindObject, keys: map[string]struct{}{}, expectingKey: true, path: path}
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, e.report(CodeMaxDepth, path, "max depth "+strconv.Itoa(e.opt.MaxDepth)+" exceeded", true)
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
					if err := e.report(CodeDuplicateKey, path, "key '"+tok.String+"' duplicated", e.opt.OnDuplicate == DupError); err != nil {
						return Token{}, err
					}
				}
				top.keys[tok.String] = struct{}{}
				top.expectingKey = false
				top.pendingKey = tok.String
			}
		}
	default:
		e.valueDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off > e.opt.MaxBytes {
			return Token{}, e.report(CodeMaxBytes, path, "max bytes exceeded", true)
		}
	}
	return tok, nil
}

func (e *enforcing) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

// pathFor returns the JSON Pointer of the value or key tok belongs to.
func (e *enforcing) pathFor(tok Token) string {
	if len(e.stack) == 0 {
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		return joinPointer(top.path, tok.String)
	case KindEndObject, KindEndArray:
		return top.path
	}
	if top.kind == kindArray {
		p := joinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	if !top.expectingKey {
		return joinPointer(top.path, top.pendingKey)
	}
	return top.path
}

func (e *enforcing) Location() int64 { return e.inner.Location() }

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
