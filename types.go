package transpose

import (
	"go.uber.org/zap"

	"github.com/reoring/transpose/constraint"
	"github.com/reoring/transpose/hydrate"
	"github.com/reoring/transpose/internal/engine"
	"github.com/reoring/transpose/naming"
	"github.com/reoring/transpose/schema"
)

// DefaultMaxDepth is the nesting limit used when none is configured.
const DefaultMaxDepth = engine.DefaultMaxDepth

// Severity expresses how an input issue is treated.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement applied while decoding text sources.
type Strictness struct {
	OnDuplicateKey Severity // Warn logs duplicate JSON keys; Error rejects the input.
}

// Options bundles Transposer settings.
type Options struct {
	// MaxDepth bounds nesting; zero selects DefaultMaxDepth.
	MaxDepth int
	// MaxBytes caps the size of text sources; zero disables the cap.
	MaxBytes    int64
	Strictness  Strictness
	Include     schema.Include
	Naming      naming.Strategy
	Hydrator    hydrate.Hydrator
	Constraints *constraint.Factory
	Logger      *zap.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithMaxDepth sets the nesting limit.
func WithMaxDepth(n int) Option { return func(o *Options) { o.MaxDepth = n } }

// WithMaxBytes caps the size of text sources.
func WithMaxBytes(n int64) Option { return func(o *Options) { o.MaxBytes = n } }

// WithStrictness sets decode-time enforcement.
func WithStrictness(s Strictness) Option { return func(o *Options) { o.Strictness = s } }

// WithInclude selects which struct fields become properties.
func WithInclude(in schema.Include) Option { return func(o *Options) { o.Include = in } }

// WithNaming sets the wire naming strategy.
func WithNaming(s naming.Strategy) Option { return func(o *Options) { o.Naming = s } }

// WithHydrator replaces the reflection based hydrator.
func WithHydrator(h hydrate.Hydrator) Option { return func(o *Options) { o.Hydrator = h } }

// WithConstraintFactory sets the factory resolving constraint tags.
func WithConstraintFactory(f *constraint.Factory) Option { return func(o *Options) { o.Constraints = f } }

// WithLogger sets the logger shared by every component.
func WithLogger(l *zap.Logger) Option { return func(o *Options) { o.Logger = l } }
