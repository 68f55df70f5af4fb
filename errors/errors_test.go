package errors

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.class.String())
		})
	}
}

func TestConfigurationError(t *testing.T) {
	_, parseErr := strconv.Atoi("abc")
	err := NewConfigurationError("messaging.broker.port", "abc", parseErr)

	assert.Contains(t, err.Error(), "messaging.broker.port")
	assert.Contains(t, err.Error(), `"abc"`)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.True(t, errors.Is(err, strconv.ErrSyntax))
	assert.True(t, IsFatal(err))
	assert.Equal(t, ErrorFatal, Classify(err))

	wrapped := Wrap(err, "Provisioner", "Provision", "resolve properties")
	ce, ok := AsConfigurationError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "messaging.broker.port", ce.Key)
	assert.Equal(t, "abc", ce.Value)
}

func TestConfigurationError_NilCause(t *testing.T) {
	err := NewConfigurationError("messaging.broker.port", "0", nil)
	assert.Equal(t, `invalid value "0" for configuration key messaging.broker.port`, err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestAsConfigurationError_NotPresent(t *testing.T) {
	_, ok := AsConfigurationError(fmt.Errorf("plain"))
	assert.False(t, ok)

	_, ok = AsConfigurationError(nil)
	assert.False(t, ok)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection timeout", ErrConnectionTimeout, true},
		{"connection lost", ErrConnectionLost, true},
		{"no connection", ErrNoConnection, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"refused in message", fmt.Errorf("dial tcp: connection refused"), true},
		{"invalid config", ErrInvalidConfig, false},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, IsTransient(test.err), "error: %v", test.err)
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid config", ErrInvalidConfig, true},
		{"missing config", ErrMissingConfig, true},
		{"configuration error", NewConfigurationError("k", "v", nil), true},
		{"connection timeout", ErrConnectionTimeout, false},
		{"role occupied", ErrRoleOccupied, false},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, IsFatal(test.err), "error: %v", test.err)
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"role occupied", ErrRoleOccupied, true},
		{"unknown role", ErrUnknownRole, true},
		{"component missing", ErrComponentMissing, true},
		{"connection timeout", ErrConnectionTimeout, false},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, IsInvalid(test.err), "error: %v", test.err)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil error", nil, ErrorTransient},
		{"transient", ErrConnectionLost, ErrorTransient},
		{"fatal", ErrInvalidConfig, ErrorFatal},
		{"invalid", ErrRoleOccupied, ErrorInvalid},
		{"unknown", fmt.Errorf("something odd"), ErrorFatal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Classify(test.err))
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "C", "M", "a"))

	err := Wrap(ErrInvalidConfig, "Registry", "Register", "role validation")
	assert.Equal(t, "Registry.Register: role validation failed: invalid configuration", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestWrapClassified(t *testing.T) {
	base := fmt.Errorf("boom")

	tests := []struct {
		name  string
		wrap  func(error, string, string, string) error
		class ErrorClass
	}{
		{"transient", WrapTransient, ErrorTransient},
		{"invalid", WrapInvalid, ErrorInvalid},
		{"fatal", WrapFatal, ErrorFatal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Nil(t, test.wrap(nil, "C", "M", "a"))

			err := test.wrap(base, "Component", "Method", "action")
			var ce *ClassifiedError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, test.class, ce.Class)
			assert.Equal(t, "Component", ce.Component)
			assert.Equal(t, "Method", ce.Operation)
			assert.Equal(t, "Component.Method: action failed: boom", err.Error())
			assert.True(t, errors.Is(err, base))
		})
	}
}
