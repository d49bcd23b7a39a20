package tracing

import (
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go/config"
)

// MustInit builds a jaeger tracer with the daemon name as the service name.
// Panics on misconfiguration since the daemon cannot run half-traced.
func MustInit(appName string) (opentracing.Tracer, io.Closer) {
	cfg := &config.Configuration{
		ServiceName: appName,
		Sampler: &config.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &config.ReporterConfig{
			LogSpans: false,
		},
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		panic(fmt.Sprintf("ERROR: cannot init Jaeger: %v\n", err))
	}
	return tracer, closer
}
