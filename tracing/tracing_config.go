package tracing

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var (
	ErrHostIsEmpty    = errors.New("host cannot be empty")
	ErrPortIsEmpty    = errors.New("port cannot be empty")
	ErrInvalidSampler = errors.New("sample ratio must be within [0, 1]")
)

const (
	defaultHost        = "localhost"
	defaultPort        = "4318"
	defaultServiceName = "uuidattr"
)

// config holds the collector endpoint and the resource describing the
// emitting process. Later resource attributes replace earlier ones with the
// same key.
type config struct {
	host        string
	port        string
	sampleRatio float64
	resource    []attribute.KeyValue
}

func newConfig(params ...ConfigParam) *config {
	cfg := &config{
		host:        defaultHost,
		port:        defaultPort,
		sampleRatio: 1,
		resource:    []attribute.KeyValue{semconv.ServiceName(defaultServiceName)},
	}
	for _, param := range params {
		param(cfg)
	}
	return cfg
}

func (c *config) validate() error {
	switch {
	case c.host == "":
		return ErrHostIsEmpty
	case c.port == "":
		return ErrPortIsEmpty
	case c.sampleRatio < 0 || c.sampleRatio > 1:
		return ErrInvalidSampler
	}
	return nil
}

// ConfigParam configures the tracing setup.
type ConfigParam func(*config)

// WithEndpoint sets the OTLP/HTTP collector host and port.
func WithEndpoint(host, port string) ConfigParam {
	return func(c *config) {
		c.host = host
		c.port = port
	}
}

// WithSampleRatio samples root spans at ratio; children follow their parent.
func WithSampleRatio(ratio float64) ConfigParam {
	return func(c *config) { c.sampleRatio = ratio }
}

// WithServiceName sets service.name.
func WithServiceName(name string) ConfigParam {
	return withResource(semconv.ServiceName(name))
}

// WithServiceVersion sets service.version.
func WithServiceVersion(version string) ConfigParam {
	return withResource(semconv.ServiceVersion(version))
}

// WithInstanceID sets service.instance.id.
func WithInstanceID(id string) ConfigParam {
	return withResource(semconv.ServiceInstanceID(id))
}

// WithEnvironment sets deployment.environment. Empty values are ignored.
func WithEnvironment(env string) ConfigParam {
	if env == "" {
		return func(*config) {}
	}
	return withResource(semconv.DeploymentEnvironment(env))
}

func withResource(kv attribute.KeyValue) ConfigParam {
	return func(c *config) { c.resource = append(c.resource, kv) }
}
