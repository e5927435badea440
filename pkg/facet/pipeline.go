package facet

import (
	"fmt"
	"reflect"
	"slices"
)

// Draft is the mutable view of a descriptor handed to preprocessors
type Draft struct {
	d *Descriptor
}

// Contracts returns the contracts registered so far
func (dr *Draft) Contracts() []*Contract {
	return slices.Clone(dr.d.contracts)
}

// HasContract reports whether a contract for t is already present
func (dr *Draft) HasContract(t reflect.Type) bool {
	return dr.d.Implements(t)
}

// AddContract appends a contract
func (dr *Draft) AddContract(c *Contract) {
	dr.d.contracts = append(dr.d.contracts, c)
}

// Entries returns the entries registered so far
func (dr *Draft) Entries() []*HandlerEntry {
	return slices.Clone(dr.d.entries)
}

// AppendEntry appends an entry with the lowest priority so far
func (dr *Draft) AppendEntry(e *HandlerEntry) {
	dr.d.entries = append(dr.d.entries, e)
}

// Fallback returns the fallback object
func (dr *Draft) Fallback() any {
	return dr.d.fallback
}

// Descriptor returns the descriptor under construction. It is not finalized
// until the pipeline completes.
func (dr *Draft) Descriptor() *Descriptor {
	return dr.d
}

// Preprocessor transforms a draft before validation
type Preprocessor func(dr *Draft) error

// Validator inspects a draft descriptor and rejects illegal configurations.
// Validators must not alter the descriptor.
type Validator func(d *Descriptor) error

// ChainPreprocessors combines preprocessors into one, run in order
func ChainPreprocessors(ps ...Preprocessor) Preprocessor {
	return func(dr *Draft) error {
		for _, p := range ps {
			if p == nil {
				continue
			}
			if err := p(dr); err != nil {
				return err
			}
		}
		return nil
	}
}

// ChainValidators combines validators into one, run in order; it stops at
// the first failure
func ChainValidators(vs ...Validator) Validator {
	return func(d *Descriptor) error {
		for _, v := range vs {
			if v == nil {
				continue
			}
			if err := v(d); err != nil {
				return err
			}
		}
		return nil
	}
}

// MergeFallbackContracts adds every candidate contract the fallback's
// dynamic type implements, plus those a ContractProvider fallback reports
func MergeFallbackContracts(candidates ...*Contract) Preprocessor {
	return func(dr *Draft) error {
		fb := dr.Fallback()
		var merged []*Contract
		if p, ok := fb.(ContractProvider); ok {
			merged = append(merged, p.FacetContracts()...)
		}
		ft := reflect.TypeOf(fb)
		for _, c := range candidates {
			if c != nil && ft != nil && ft.Implements(c.typ) {
				merged = append(merged, c)
			}
		}
		for _, c := range merged {
			if c != nil && !dr.HasContract(c.typ) {
				dr.AddContract(c)
			}
		}
		return nil
	}
}

// EnsureBaseContract adds the Synthesized contract when absent
func EnsureBaseContract() Preprocessor {
	return func(dr *Draft) error {
		if !dr.HasContract(SynthesizedContract.typ) {
			dr.AddContract(SynthesizedContract)
		}
		return nil
	}
}

// InjectBuiltIns appends the built-in entries for the reserved methods
func InjectBuiltIns() Preprocessor {
	return func(dr *Draft) error {
		for _, e := range builtInEntries() {
			dr.AppendEntry(e)
		}
		return nil
	}
}

// RejectReservedOverrides fails when a user entry's matcher accepts any
// reserved method, including a registered contract's own String() string and
// the like, reporting every offending entry and what it would shadow
func RejectReservedOverrides() Validator {
	return func(d *Descriptor) error {
		var violations []Violation
		for i, e := range d.entries {
			if e.BuiltIn {
				continue
			}
			if shadowed := shadowedReserved(e.Matcher, d.contracts); len(shadowed) > 0 {
				violations = append(violations, Violation{Entry: e, Index: i, Shadowed: shadowed})
			}
		}
		if len(violations) == 0 {
			return nil
		}
		err := NewConfigurationError("facet: handler entries override reserved methods", violations...)
		err.WithSuggestion("exclude reserved methods with facet.NonReserved() or facet.Not(facet.Reserved())")
		return err
	}
}

// RejectDuplicateContracts fails when a contract type is registered twice
func RejectDuplicateContracts() Validator {
	return func(d *Descriptor) error {
		seen := make(map[reflect.Type]bool, len(d.contracts))
		var violations []Violation
		for _, c := range d.contracts {
			if seen[c.typ] {
				violations = append(violations, Violation{Contract: c.typ, Reason: "registered more than once"})
				continue
			}
			seen[c.typ] = true
		}
		if len(violations) == 0 {
			return nil
		}
		return NewConfigurationError("facet: duplicate contracts", violations...)
	}
}

// pipeline runs preprocessors then validators over a draft and finalizes it
type pipeline struct {
	preprocessors []Preprocessor
	validators    []Validator
}

func (p pipeline) run(d *Descriptor) error {
	if d.finalized {
		return ErrAlreadyFinalized.instance()
	}

	dr := &Draft{d: d}
	for _, pre := range p.preprocessors {
		if err := pre(dr); err != nil {
			return err
		}
	}

	before := d.snapshot()
	errs := &MultipleErrors{}
	for _, v := range p.validators {
		errs.Add(v(d))
	}
	if !before.matches(d) {
		return NewError(LifecycleErrorCode, "facet: a validator modified the descriptor")
	}
	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	d.finalized = true
	return nil
}

func (p pipeline) String() string {
	return fmt.Sprintf("pipeline{%d preprocessors, %d validators}", len(p.preprocessors), len(p.validators))
}
