package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdk_trace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

type sample struct {
	Attribute  string
	KeepDashes bool
	Retries    int
	Secret     string `trace:"-"`
	Renamed    string `trace:"alias"`
	hidden     string
}

func TestAttributesFrom(t *testing.T) {
	attrs := AttributesFrom("policy", sample{
		Attribute:  "uuid",
		KeepDashes: true,
		Retries:    3,
		Secret:     "x",
		Renamed:    "y",
		hidden:     "z",
	})

	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String("policy.attribute", "uuid"),
		attribute.Bool("policy.keep_dashes", true),
		attribute.Int64("policy.retries", 3),
		attribute.String("policy.alias", "y"),
	}, attrs)

	assert.Nil(t, AttributesFrom("x", nil))
	assert.Nil(t, AttributesFrom("x", "not a struct"))
	assert.Nil(t, AttributesFrom("x", (*sample)(nil)))
}

func TestSpanHelpers(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdk_trace.NewTracerProvider(sdk_trace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	ctx, span := provider.Tracer("test").Start(context.Background(), "parent")
	TraceValue(ctx, "uuid.action", "set_literal")
	TraceAny(ctx, "policy", sample{Attribute: "uuid"})
	Error(ctx, errors.New("boom"))
	Error(ctx, nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0].Attributes(), attribute.String("uuid.action", "set_literal"))
	assert.Contains(t, ended[0].Attributes(), attribute.String("policy.attribute", "uuid"))
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestContinueWithoutRecordingSpan(t *testing.T) {
	ctx := context.Background()
	got, span := Continue(ctx, "noop")
	assert.Equal(t, ctx, got)
	assert.False(t, span.IsRecording())
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		params  []ConfigParam
		wantErr error
	}{
		{name: "EmptyHost", params: []ConfigParam{WithEndpoint("", "4318")}, wantErr: ErrHostIsEmpty},
		{name: "EmptyPort", params: []ConfigParam{WithEndpoint("localhost", "")}, wantErr: ErrPortIsEmpty},
		{name: "NegativeRatio", params: []ConfigParam{WithSampleRatio(-0.1)}, wantErr: ErrInvalidSampler},
		{name: "RatioAboveOne", params: []ConfigParam{WithSampleRatio(1.5)}, wantErr: ErrInvalidSampler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.params...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigResource(t *testing.T) {
	cfg := newConfig(
		WithServiceName("uuidattr-demo"),
		WithServiceVersion("1.2.3"),
		WithInstanceID("0f1e2d3c-4b5a-4978-8796-a5b4c3d2e1f0"),
		WithEnvironment(""),
	)
	require.NoError(t, cfg.validate())

	set := attribute.NewSet(cfg.resource...)
	name, ok := set.Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "uuidattr-demo", name.AsString(), "later service name wins")

	version, _ := set.Value(semconv.ServiceVersionKey)
	assert.Equal(t, "1.2.3", version.AsString())
	assert.True(t, set.HasValue(semconv.ServiceInstanceIDKey))
	assert.False(t, set.HasValue(semconv.DeploymentEnvironmentKey))

	cfg = newConfig(WithEnvironment("staging"))
	envSet := attribute.NewSet(cfg.resource...)
	env, ok := envSet.Value(semconv.DeploymentEnvironmentKey)
	require.True(t, ok)
	assert.Equal(t, "staging", env.AsString())
}
