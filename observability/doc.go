// Package observability provides OpenTelemetry tracing, Prometheus metrics
// and health aggregation.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, svc, cfg, log)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	metrics := observability.NewMetrics(observability.MetricsConfig{})
//	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
//
// Health is reported per component by the component package.
package observability
