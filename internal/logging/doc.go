// Package logging wraps zap with context-aware helpers.
//
// A Logger writes JSON or console output to stdout or stderr and, when an
// OpenTelemetry log provider is supplied, mirrors entries through the otelzap
// bridge. Values of sensitive keys and strings matching redaction patterns
// are replaced before encoding. Entries below error level are sampled.
//
// Correlation fields are pulled from the context on every call:
//
//	trace_id, span_id   from the active OpenTelemetry span
//	request.id          set by the HTTP layer
//	session.id          viewer session
//	mindmap.id          stored mind map
//
// Services that only need a *zap.Logger take Logger.Underlying().
package logging
