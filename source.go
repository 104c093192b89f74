package transpose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"

	"github.com/reoring/transpose/internal/decode"
	"github.com/reoring/transpose/internal/value"
)

// LoadOptions is handed to a Source by the Transposer.
type LoadOptions struct {
	OnDuplicateKey Severity
	// MaxDepth limits container nesting; the top-level value is depth 1.
	MaxDepth int
	MaxBytes int64
	// OnIssue receives non-fatal decode issues. Optional.
	OnIssue func(Issue)
}

// Source produces the plain value tree to validate: map[string]any,
// []any and scalars. Numbers may be json.Number or any Go numeric type.
type Source interface {
	Load(ctx context.Context, opt LoadOptions) (any, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, opt LoadOptions) (any, error)

func (f SourceFunc) Load(ctx context.Context, opt LoadOptions) (any, error) { return f(ctx, opt) }

// JSONBytes reads a JSON document.
func JSONBytes(b []byte) Source {
	return SourceFunc(func(_ context.Context, opt LoadOptions) (any, error) {
		return decodeJSON(b, opt)
	})
}

// JSONReader reads a JSON document from r. With MaxBytes set, at most
// MaxBytes+1 bytes are read.
func JSONReader(r io.Reader) Source {
	return SourceFunc(func(_ context.Context, opt LoadOptions) (any, error) {
		if opt.MaxBytes > 0 {
			r = io.LimitReader(r, opt.MaxBytes+1)
		}
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, &InputError{Source: "json", Err: err}
		}
		if opt.MaxBytes > 0 && int64(len(b)) > opt.MaxBytes {
			return nil, &InputError{Source: "json", Err: decode.ErrMaxBytes}
		}
		return decodeJSON(b, opt)
	})
}

func decodeJSON(b []byte, opt LoadOptions) (any, error) {
	dopt := decode.Options{
		OnDuplicate: decode.Duplicates(opt.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
	}
	if opt.OnIssue != nil {
		dopt.Sink = func(is decode.Issue) {
			if !is.Fatal {
				opt.OnIssue(Issue{Path: is.Path, Code: is.Code, Message: is.Message})
			}
		}
	}
	v, err := decode.Bytes(b, dopt)
	if err != nil {
		var ie decode.IssueError
		if errors.As(err, &ie) && ie.Code == decode.CodeMaxDepth {
			return nil, &RecursionError{Limit: opt.MaxDepth - 1, Path: ie.Path}
		}
		return nil, &InputError{Source: "json", Err: err}
	}
	return v, nil
}

// YAMLBytes reads a YAML document.
func YAMLBytes(b []byte) Source {
	return SourceFunc(func(_ context.Context, opt LoadOptions) (any, error) {
		if opt.MaxBytes > 0 && int64(len(b)) > opt.MaxBytes {
			return nil, &InputError{Source: "yaml", Err: decode.ErrMaxBytes}
		}
		var v any
		if err := yaml.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, &InputError{Source: "yaml", Err: err}
		}
		return v, nil
	})
}

// Value validates an in-memory value. A map[string]any is deep-copied so the
// caller's map is never shared with the result; any other value is converted
// through its JSON encoding.
func Value(v any) Source {
	return SourceFunc(func(_ context.Context, _ LoadOptions) (any, error) {
		if m, ok := v.(map[string]any); ok {
			var out map[string]any
			if err := deepcopy.Copy(&out, m); err != nil {
				return nil, &InputError{Source: "value", Err: err}
			}
			return out, nil
		}
		b, err := gojson.Marshal(v)
		if err != nil {
			return nil, &InputError{Source: "value", Err: err}
		}
		dec := gojson.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		var out any
		if err := dec.Decode(&out); err != nil {
			return nil, &InputError{Source: "value", Err: fmt.Errorf("re-decode: %w", err)}
		}
		return out, nil
	})
}

// canonical rebuilds a loaded tree into the value model used by the engine.
func canonical(v any) (map[string]any, error) {
	tree, err := value.CanonicalTree(v)
	if err != nil {
		return nil, &InputError{Source: "document", Err: err}
	}
	m, ok := tree.(map[string]any)
	if !ok {
		return nil, &InputError{Source: "document", Err: fmt.Errorf("%w, %s given", ErrNotObject, value.TypeName(tree))}
	}
	return m, nil
}
