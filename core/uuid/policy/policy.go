// Package policy decides what value a record's UUID attribute must hold
// before it is written.
//
// A Policy is built once per record type and invoked by the host persistence
// layer right before an insert (and, when enabled, an update). It inspects the
// current attribute value and returns an Action: leave it alone, assign a
// literal string, or assign a raw storage-engine expression that generates
// the UUID at write time.
//
// Policies hold no per-call state and are safe for concurrent use.
package policy

import (
	"github.com/RRWM1rr0rB/uuidattr/core/uuid"
)

// ActionKind tags an Action.
type ActionKind uint8

const (
	// NoChange leaves the attribute untouched.
	NoChange ActionKind = iota
	// SetLiteral assigns Action.Value as an ordinary string.
	SetLiteral
	// SetDeferred assigns Action.Value as a raw SQL expression. Hosts must
	// bypass literal quoting so the engine evaluates it.
	SetDeferred
)

func (k ActionKind) String() string {
	switch k {
	case NoChange:
		return "no_change"
	case SetLiteral:
		return "set_literal"
	case SetDeferred:
		return "set_deferred"
	default:
		return "unknown"
	}
}

// Action is the outcome of Policy.Apply.
type Action struct {
	Kind  ActionKind
	Value string
}

func (a Action) String() string {
	if a.Kind == NoChange {
		return a.Kind.String()
	}
	return a.Kind.String() + "(" + a.Value + ")"
}

// Changed reports whether the host has to write anything.
func (a Action) Changed() bool {
	return a.Kind != NoChange
}

// Policy is the immutable UUID attribute policy.
type Policy struct {
	attribute      string
	method         Method
	keepDashes     bool
	enableOnUpdate bool
	dialect        Dialect
	deferred       string
	gen            *uuid.Generator
}

// Option configures optional Policy dependencies.
type Option func(*Policy)

// WithGenerator sets the generator used by process-side generation.
// Defaults to the process-wide uuid.Default generator.
func WithGenerator(g *uuid.Generator) Option {
	return func(p *Policy) {
		p.gen = g
	}
}

// New validates cfg and builds a Policy. It fails with a *ConfigurationError
// when the method or dialect is not recognized.
func New(cfg Config, opts ...Option) (*Policy, error) {
	method, err := parseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	dialect, err := parseDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	attribute := cfg.Attribute
	if attribute == "" {
		attribute = defaultAttribute
	}

	p := &Policy{
		attribute:      attribute,
		method:         method,
		keepDashes:     cfg.KeepDashes,
		enableOnUpdate: cfg.EnableOnUpdate,
		dialect:        dialect,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.gen == nil {
		p.gen = uuid.Default()
	}
	if method == MethodStorageEngine {
		if p.deferred, err = DeferredExpression(dialect, p.keepDashes); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// MustNew is like New but panics on a configuration error.
func MustNew(cfg Config, opts ...Option) *Policy {
	p, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Attribute returns the managed attribute name.
func (p *Policy) Attribute() string { return p.attribute }

// Method returns the generation method.
func (p *Policy) Method() Method { return p.method }

// KeepDashes reports whether values are kept in dashed form.
func (p *Policy) KeepDashes() bool { return p.keepDashes }

// EnableOnUpdate reports whether the policy runs on updates.
func (p *Policy) EnableOnUpdate() bool { return p.enableOnUpdate }

// Dialect returns the dialect of deferred expressions.
func (p *Policy) Dialect() Dialect { return p.dialect }

// Config returns the normalized configuration the policy was built from.
func (p *Policy) Config() Config {
	return Config{
		Attribute:      p.attribute,
		Method:         p.method,
		KeepDashes:     p.keepDashes,
		EnableOnUpdate: p.enableOnUpdate,
		Dialect:        p.dialect,
	}
}

// Apply decides what to write into the attribute given its current value and
// whether the record is being inserted. It never fails.
//
// Existing values are only reformatted: a 32 character value without dashes
// gains dashes when KeepDashes is set, and a dashed value loses them when it
// is not. Anything else, including malformed input, passes through. Empty
// values get a new UUID from the configured method.
func (p *Policy) Apply(current string, isNewRecord bool) Action {
	if !isNewRecord && !p.enableOnUpdate {
		return Action{Kind: NoChange}
	}

	if current != "" {
		hasDashes := uuid.HasDashes(current)
		switch {
		case p.keepDashes && !hasDashes && len(current) == uuid.CompactLength:
			return Action{Kind: SetLiteral, Value: uuid.FormatWithDashes(current)}
		case !p.keepDashes && hasDashes:
			return Action{Kind: SetLiteral, Value: uuid.RemoveDashes(current)}
		default:
			return Action{Kind: NoChange}
		}
	}

	if p.method == MethodStorageEngine {
		return Action{Kind: SetDeferred, Value: p.deferred}
	}

	v := p.gen.NewV4String()
	if !p.keepDashes {
		v = uuid.RemoveDashes(v)
	}
	return Action{Kind: SetLiteral, Value: v}
}
