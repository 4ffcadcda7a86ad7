// Package errors provides the classified error primitives used across ssite.
//
// A ClassifiedError carries a category (config, filesystem, render, ...), a severity
// and a retry strategy next to the message and cause, so that the CLI can pick an exit
// code and the build and watch loops can decide whether a failure is fatal or only
// skips a single file.
//
// Example usage:
//
//	err := errors.FileSystemError("read frame failed").
//		WithContext("path", framePath).
//		WithCause(ioErr).
//		Build()
package errors
