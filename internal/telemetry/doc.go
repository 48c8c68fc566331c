// Package telemetry sets up OpenTelemetry tracing and metrics for mindmapd.
//
// Telemetry is off by default. When enabled, traces and metrics are exported
// over OTLP (gRPC or HTTP/protobuf). Exporter failures never stop the
// service: the instance reports itself degraded and instrumented code keeps
// running against no-op providers.
//
// Services obtain tracers and meters through the otel globals, which New
// installs:
//
//	tel, err := telemetry.New(ctx, cfg, logger)
//	defer tel.Shutdown(ctx)
//
// Tests use NewTestTelemetry for in-memory span and metric capture.
package telemetry
