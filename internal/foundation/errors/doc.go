// Package errors provides foundational, type-safe error primitives used
// across the author-folder consolidation pipeline.
//
// It contains a classified error type and helpers for robust error
// handling, including a fluent builder API for constructing
// ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: broad error classification (config, authority, filesystem, merge, csv, internal)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - RetryStrategy: retry behavior (never, immediate, backoff, user)
//   - ClassifiedError: structured error with category, severity, and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: maps classified errors to process exit codes
//
// Example usage:
//
//	err := errors.WrapError(originalErr, errors.CategoryAuthority, "neighbor scan failed").
//		WithSeverity(errors.SeverityWarning).
//		WithContext("query", normalized).
//		Build()
package errors
