package facet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError(t *testing.T) {
	cause := errors.New("disk on fire")
	err := NewError(ConfigurationErrorCode, "facet: broken").
		WithCause(cause).
		WithContext("contract", "Greeter").
		WithSuggestion("check the contract")

	assert.Equal(t, "facet: broken: disk on fire", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ConfigurationErrorCode, err.ErrorCode())
	assert.Equal(t, "Greeter", err.Context()["contract"])
	assert.Equal(t, []string{"check the contract"}, err.Suggestions())
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"plain", errors.New("x"), UnknownErrorCode},
		{"nil", nil, UnknownErrorCode},
		{"direct", NewError(CastErrorCode, "x"), CastErrorCode},
		{"wrapped", fmt.Errorf("outer: %w", ErrNotFinalized), LifecycleErrorCode},
		{"configuration", NewConfigurationError("x"), ConfigurationErrorCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestMultipleErrors(t *testing.T) {
	var errs MultipleErrors
	assert.NoError(t, errs.ErrorOrNil())

	first := errors.New("first")
	errs.Add(first)
	errs.Add(nil)
	assert.Same(t, first, errs.ErrorOrNil())

	second := NewError(ResolutionErrorCode, "second")
	errs.Add(second)
	err := errs.ErrorOrNil()
	assert.Contains(t, err.Error(), "multiple errors (2 total)")
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Equal(t, ResolutionErrorCode, CodeOf(err))
}

func TestViolation_String(t *testing.T) {
	entry := NewEntry(Named("String"), constant("x"))
	sig, _ := SignatureFor[Synthesized]("String")

	assert.Equal(t, `entry #3 (name("String")) would shadow reserved String()`,
		Violation{Entry: entry, Index: 3, Shadowed: []Signature{sig}}.String())
	assert.Equal(t, "contract facet.Greeter: listed twice",
		Violation{Contract: typeOf[Greeter](), Reason: "listed twice"}.String())
}

func TestSentinels_AreNeverMutated(t *testing.T) {
	b := NewBuilder()
	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	require.ErrorIs(t, err, ErrAlreadyFinalized)

	var base *BaseError
	require.True(t, errors.As(err, &base))
	assert.NotSame(t, ErrAlreadyFinalized, base)
	base.WithContext("builder", "b").WithSuggestion("build once")

	assert.Empty(t, ErrAlreadyFinalized.Context())
	assert.Empty(t, ErrAlreadyFinalized.Suggestions())
	assert.NotErrorIs(t, err, ErrNotFinalized)
	assert.Equal(t, LifecycleErrorCode, CodeOf(err))
}
