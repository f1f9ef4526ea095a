package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifiedError(t *testing.T) {
	t.Run("basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "root directory missing").
			WithSeverity(SeverityFatal).
			WithContext("root", "/data/sorted_books").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "root directory missing", err.Message())

		root, ok := err.Context().GetString("root")
		assert.True(t, ok)
		assert.Equal(t, "/data/sorted_books", root)
	})

	t.Run("error detection", func(t *testing.T) {
		err := ConfigError("authority store unreadable").Build()

		assert.True(t, IsClassified(err))
		assert.True(t, HasCategory(err, CategoryConfig))
		assert.True(t, HasSeverity(err, SeverityFatal))
		assert.False(t, err.CanRetry())
		assert.True(t, err.IsFatal())
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("fluent API wraps a cause", func(t *testing.T) {
		originalErr := errors.New("sqlite: no such table")
		err := WrapError(originalErr, CategoryAuthority, "neighbor scan failed").
			Warning().
			WithContext("query", "dupont jean").
			Build()

		assert.Equal(t, CategoryAuthority, err.Category())
		assert.Equal(t, SeverityWarning, err.Severity())
		assert.True(t, errors.Is(err, originalErr))

		query, _ := err.Context().GetString("query")
		assert.Equal(t, "dupont jean", query)
	})

	t.Run("convenience constructors carry the documented severity", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal},
			{"AuthorityError", AuthorityError("test"), CategoryAuthority, SeverityWarning},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityWarning},
			{"MergeError", MergeError("test"), CategoryMerge, SeverityWarning},
			{"CSVError", CSVError("test"), CategoryCSV, SeverityFatal},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				assert.Equal(t, tt.category, err.Category())
				assert.Equal(t, tt.severity, err.Severity())
			})
		}
	})
}

func TestErrorContext(t *testing.T) {
	t.Run("context operations", func(t *testing.T) {
		ctx := make(ErrorContext)
		ctx = ctx.Set("folder", "Zola, Emile")
		ctx = ctx.Set("file_count", 42)

		folder, ok := ctx.GetString("folder")
		assert.True(t, ok)
		assert.Equal(t, "Zola, Emile", folder)

		count, ok := ctx.Get("file_count")
		assert.True(t, ok)
		assert.Equal(t, 42, count)

		_, ok = ctx.Get("nonexistent")
		assert.False(t, ok)
	})

	t.Run("context merge prefers the other map", func(t *testing.T) {
		ctx1 := make(ErrorContext).Set("folder", "Zola, Emile").Set("shared", "original")
		ctx2 := make(ErrorContext).Set("author_id", "OL1A").Set("shared", "overridden")

		merged := ctx1.Merge(ctx2)

		folder, _ := merged.GetString("folder")
		authorID, _ := merged.GetString("author_id")
		shared, _ := merged.GetString("shared")

		assert.Equal(t, "Zola, Emile", folder)
		assert.Equal(t, "OL1A", authorID)
		assert.Equal(t, "overridden", shared)
	})
}
