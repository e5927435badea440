package facet

import (
	"fmt"
	"log/slog"
	"slices"
)

// Builder accumulates the configuration of a synthesized object. Its methods
// chain; configuration mistakes are collected and reported by Descriptor or
// Build. A Builder finalizes exactly once.
type Builder struct {
	contracts     []*Contract
	entries       []*HandlerEntry
	inherited     []*HandlerEntry
	fallback      any
	fallbackSet   bool
	decorator     Decorator
	preprocessors []Preprocessor
	validators    []Validator

	allowDuplicates  bool
	skipReserved     bool
	decorateBuiltIns bool
	mergeFallback    bool
	mergeCandidates  []*Contract

	logger *slog.Logger
	errs   []error
	built  bool
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{}
}

// NewBuilderFrom starts a builder on top of an existing descriptor. Its
// contracts, user entries, fallback and decorator are inherited; entries
// added to the new builder take priority over the inherited ones.
func NewBuilderFrom(d *Descriptor) *Builder {
	b := NewBuilder()
	if d == nil {
		b.errs = append(b.errs, NewConfigurationError("facet: cannot build on a nil descriptor"))
		return b
	}
	for _, c := range d.contracts {
		if c != SynthesizedContract {
			b.contracts = append(b.contracts, c)
		}
	}
	b.inherited = d.UserEntries()
	b.fallback = d.fallback
	b.fallbackSet = true
	b.decorator = d.decorator
	b.decorateBuiltIns = d.decorateBuiltIns
	return b
}

// AddContract registers contracts, in order
func (b *Builder) AddContract(cs ...*Contract) *Builder {
	for _, c := range cs {
		if c == nil {
			b.errs = append(b.errs, NewConfigurationError("facet: nil contract"))
			continue
		}
		b.contracts = append(b.contracts, c)
	}
	return b
}

// Handle registers a handler for every method the matcher accepts. Earlier
// registrations win over later ones.
func (b *Builder) Handle(m Matcher, h Handler) *Builder {
	return b.AddEntry(NewEntry(m, h))
}

// HandleMethod registers a handler for methods with the given name
func (b *Builder) HandleMethod(name string, h Handler) *Builder {
	return b.Handle(Named(name), h)
}

// AddEntry registers a prepared entry. Sharing entries between builders makes
// the resulting descriptors comparable with Equal.
func (b *Builder) AddEntry(e *HandlerEntry) *Builder {
	switch {
	case e == nil:
		b.errs = append(b.errs, NewConfigurationError("facet: nil handler entry"))
	case e.Matcher == nil:
		b.errs = append(b.errs, NewConfigurationError("facet: handler entry without matcher"))
	case e.Handler == nil:
		b.errs = append(b.errs, NewConfigurationError(fmt.Sprintf("facet: entry %s has no handler", e.Matcher)))
	case e.BuiltIn:
		b.errs = append(b.errs, NewConfigurationError(fmt.Sprintf("facet: entry %s is marked built-in", e.Matcher)))
	default:
		b.entries = append(b.entries, e)
	}
	return b
}

// SetFallback sets the catch-all implementation source. It must not be nil.
func (b *Builder) SetFallback(obj any) *Builder {
	b.fallback = obj
	b.fallbackSet = true
	return b
}

// SetDecorator sets the decorator applied to resolved handlers
func (b *Builder) SetDecorator(d Decorator) *Builder {
	b.decorator = boxed(d)
	return b
}

// ValidateWith appends a validator run after the built-in ones
func (b *Builder) ValidateWith(v Validator) *Builder {
	if v != nil {
		b.validators = append(b.validators, v)
	}
	return b
}

// PreprocessWith appends a preprocessor run before the built-in ones
func (b *Builder) PreprocessWith(p Preprocessor) *Builder {
	if p != nil {
		b.preprocessors = append(b.preprocessors, p)
	}
	return b
}

// AllowDuplicateContracts disables the duplicate contract check
func (b *Builder) AllowDuplicateContracts() *Builder {
	b.allowDuplicates = true
	return b
}

// SkipReservedValidation lets user entries match reserved methods. Such
// entries then take priority over the built-ins.
func (b *Builder) SkipReservedValidation() *Builder {
	b.skipReserved = true
	return b
}

// MergeFallbackContracts adds the contracts the fallback implements among the
// candidates, and those it reports as a ContractProvider
func (b *Builder) MergeFallbackContracts(candidates ...*Contract) *Builder {
	b.mergeFallback = true
	b.mergeCandidates = append(b.mergeCandidates, candidates...)
	return b
}

// DecorateBuiltIns applies the decorator to reserved methods as well
func (b *Builder) DecorateBuiltIns() *Builder {
	b.decorateBuiltIns = true
	return b
}

// SetLogger sets the logger handed to objects built by Build
func (b *Builder) SetLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Descriptor runs the pipeline and returns the finalized descriptor. Calling
// it, or Build, a second time returns ErrAlreadyFinalized.
func (b *Builder) Descriptor() (*Descriptor, error) {
	if b.built {
		return nil, ErrAlreadyFinalized.instance()
	}
	b.built = true

	if err := b.collectErrors(); err != nil {
		return nil, err
	}

	d := &Descriptor{
		contracts:        slices.Clone(b.contracts),
		entries:          append(slices.Clone(b.entries), b.inherited...),
		fallback:         b.fallback,
		decorator:        orIdentity(b.decorator),
		decorateBuiltIns: b.decorateBuiltIns,
	}
	if !b.fallbackSet {
		d.fallback = DefaultFallback
	}

	if err := b.pipeline().run(d); err != nil {
		b.log().Debug("facet: synthesis rejected", "error", err)
		return nil, err
	}
	b.log().Debug("facet: descriptor finalized",
		"contracts", len(d.contracts),
		"entries", len(d.entries),
		"fallback", fallbackName(d.fallback))
	return d, nil
}

// Build finalizes the descriptor and synthesizes an object over it
func (b *Builder) Build() (*Object, error) {
	d, err := b.Descriptor()
	if err != nil {
		return nil, err
	}
	return New(d, WithLogger(b.log()))
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Object {
	obj, err := b.Build()
	if err != nil {
		panic(err)
	}
	return obj
}

func (b *Builder) collectErrors() error {
	errs := &MultipleErrors{}
	for _, err := range b.errs {
		errs.Add(err)
	}
	if b.fallbackSet && b.fallback == nil {
		err := NewConfigurationError("facet: fallback object must not be nil")
		err.WithSuggestion("omit SetFallback to use facet.DefaultFallback")
		errs.Add(err)
	}
	return errs.ErrorOrNil()
}

func (b *Builder) pipeline() pipeline {
	pre := slices.Clone(b.preprocessors)
	if b.mergeFallback {
		pre = append(pre, MergeFallbackContracts(b.mergeCandidates...))
	}
	pre = append(pre, EnsureBaseContract(), InjectBuiltIns())

	var validators []Validator
	if !b.skipReserved {
		validators = append(validators, RejectReservedOverrides())
	}
	if !b.allowDuplicates {
		validators = append(validators, RejectDuplicateContracts())
	}
	validators = append(validators, b.validators...)

	return pipeline{preprocessors: pre, validators: validators}
}

func (b *Builder) log() *slog.Logger {
	if b.logger == nil {
		return discardLogger
	}
	return b.logger
}

var discardLogger = slog.New(slog.DiscardHandler)
