// Package tracing wraps OpenTelemetry so that allocation runs can be traced
// without the rest of the code importing the upstream packages. Until Init is
// called spans are no-ops.
package tracing
