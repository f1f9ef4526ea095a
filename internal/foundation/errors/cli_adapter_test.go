package errors

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: 0,
		},
		{
			name: "classified validation error",
			err: NewError(CategoryValidation, "invalid --probable-threshold").
				WithSeverity(SeverityError).
				Build(),
			expected: 2,
		},
		{
			name: "classified config error",
			err: ConfigError("authority store unreadable").Build(),
			expected: 3,
		},
		{
			name:     "classified csv error",
			err:      CSVError("parent directory not writable").Build(),
			expected: 4,
		},
		{
			name:     "classified authority error is non-fatal, generic exit code",
			err:      AuthorityError("neighbor scan failed").Build(),
			expected: 1,
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	assert.Equal(t, "", adapter.FormatError(nil))

	internal := NewError(CategoryInternal, "internal issue").WithSeverity(SeverityError).Build()
	assert.Contains(t, adapter.FormatError(internal), "Internal error occurred (use -v for details)")

	unclassified := &customError{msg: "unknown error"}
	assert.Contains(t, adapter.FormatError(unclassified), "Error: unknown error")
}

// customError is a test helper for unclassified errors.
type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
