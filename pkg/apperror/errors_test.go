package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeEmptyGraph, "graph has no vertices"),
			expected: "[EMPTY_GRAPH] graph has no vertices",
		},
		{
			name:     "with field",
			err:      NewWithField(CodeOutOfRange, "bad index", "from"),
			expected: "[OUT_OF_RANGE] bad index (field: from)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, CodeDatabase, "query failed")

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
	assert.True(t, errors.Is(err, cause))
}

func TestError_GRPCStatus(t *testing.T) {
	tests := []struct {
		name         string
		code         ErrorCode
		expectedCode codes.Code
	}{
		{"out of range", CodeOutOfRange, codes.OutOfRange},
		{"negative weight", CodeNegativeWeight, codes.InvalidArgument},
		{"parse", CodeParseError, codes.InvalidArgument},
		{"negative cycle", CodeNegativeCycle, codes.FailedPrecondition},
		{"not found", CodeNotFound, codes.NotFound},
		{"canceled", CodeCanceled, codes.Canceled},
		{"timeout", CodeTimeout, codes.DeadlineExceeded},
		{"cache", CodeCache, codes.Unavailable},
		{"internal", CodeInternal, codes.Internal},
		{"database", CodeDatabase, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := New(tt.code, "test message").GRPCStatus()
			assert.Equal(t, tt.expectedCode, st.Code())
			assert.Equal(t, "test message", st.Message())
		})
	}
}

func TestOutOfRange(t *testing.T) {
	err := OutOfRange("to", 7, 3)

	assert.Equal(t, CodeOutOfRange, err.Code)
	assert.Equal(t, "to", err.Field)
	assert.Equal(t, 7, err.Details["index"])
	assert.Equal(t, 3, err.Details["vertex_count"])
	assert.Contains(t, err.Error(), "vertex index 7 out of range [0, 3)")
	assert.True(t, IsOutOfRange(err))
	assert.False(t, IsInvalidInput(err))
}

func TestNegativeWeight(t *testing.T) {
	err := NegativeWeight(1, 2, -20)

	assert.Equal(t, CodeNegativeWeight, err.Code)
	assert.True(t, IsInvalidInput(err))
	assert.True(t, errors.Is(err, ErrNegativeWeight))
	assert.False(t, errors.Is(err, ErrNegativeCycle))
}

func TestIs_WrappedChain(t *testing.T) {
	inner := OutOfRange("source", 10, 2)
	wrapped := fmt.Errorf("dijkstra: %w", inner)

	assert.True(t, Is(wrapped, CodeOutOfRange))
	assert.False(t, Is(wrapped, CodeNotFound))
	assert.Equal(t, CodeOutOfRange, Code(wrapped))
	assert.Equal(t, CodeInternal, Code(errors.New("plain")))
}

func TestToGRPC(t *testing.T) {
	assert.Nil(t, ToGRPC(nil))

	err := ToGRPC(OutOfRange("from", 5, 1))
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.OutOfRange, st.Code())

	already := status.Error(codes.NotFound, "missing")
	assert.Equal(t, already, ToGRPC(already))

	st, _ = status.FromError(ToGRPC(errors.New("boom")))
	assert.Equal(t, codes.Internal, st.Code())
}

func TestToGRPC_ContextErrors(t *testing.T) {
	st, _ := status.FromError(ToGRPC(fmt.Errorf("floyd: %w", context.Canceled)))
	assert.Equal(t, codes.Canceled, st.Code())

	st, _ = status.FromError(ToGRPC(context.DeadlineExceeded))
	assert.Equal(t, codes.DeadlineExceeded, st.Code())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"out of range", OutOfRange("source", 9, 3), 11},
		{"invalid input", fmt.Errorf("load: %w", New(CodeParseError, "line 3")), 3},
		{"negative cycle", ErrNegativeCycle, 9},
		{"canceled", context.Canceled, 1},
		{"plain", errors.New("boom"), 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "critical", SeverityCritical.String())
	assert.Equal(t, "unknown", Severity(42).String())
	assert.Equal(t, SeverityError, New(CodeInternal, "x").Severity)
	assert.Equal(t, SeverityCritical, New(CodeInternal, "x").WithSeverity(SeverityCritical).Severity)
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	assert.Nil(t, v.Err())

	v.Add(New(CodeParseError, "line 1: blank").WithSeverity(SeverityWarning))
	assert.True(t, v.HasWarnings())
	assert.False(t, v.HasErrors())
	assert.Nil(t, v.Err())

	v.AddError(CodeParseError, "line 2: bad weight")
	single := v.Err()
	require.Error(t, single)
	assert.Equal(t, CodeParseError, Code(single))

	v.Add(New(CodeOutOfRange, "line 3: bad vertex"))
	multi := v.Err()
	require.Error(t, multi)
	assert.Equal(t, CodeParseError, Code(multi))
	assert.Contains(t, multi.Error(), "2 validation errors: line 2: bad weight; line 3: bad vertex")
	assert.Len(t, v.ErrorMessages(), 2)
}
