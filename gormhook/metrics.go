package gormhook

import (
	"context"
	"time"

	"github.com/RRWM1rr0rB/uuidattr/core/uuid/policy"
	"github.com/RRWM1rr0rB/uuidattr/logging"
	"github.com/RRWM1rr0rB/uuidattr/metrics"
	"github.com/RRWM1rr0rB/uuidattr/tracing"
)

// collectors are created on the registry current at Initialize time.
type collectors struct {
	actions  *metrics.CounterVec
	duration *metrics.HistogramVec
}

func newCollectors() *collectors {
	return &collectors{
		actions: metrics.NewCounterVec(
			metrics.CounterOpts{
				Name: "uuidattr_actions_total",
				Help: "UUID attribute policy outcomes by table, attribute and action",
			},
			[]string{"table", "attribute", "action"},
		),
		duration: metrics.NewHistogramVec(
			metrics.HistogramOpts{
				Name:    "uuidattr_callback_duration_seconds",
				Help:    "Time spent applying UUID attribute policies per statement",
				Buckets: metrics.DefBuckets,
			},
			[]string{"table", "operation"},
		),
	}
}

// observe records one policy outcome in metrics, the current span and the log.
func (p *Plugin) observe(ctx context.Context, table string, pol *policy.Policy, action policy.Action) {
	p.collectors.actions.WithLabelValues(table, pol.Attribute(), action.Kind.String()).Inc()
	tracing.TraceAny(ctx, "uuidattr.policy", pol.Config())
	tracing.TraceValue(ctx, "uuidattr."+pol.Attribute()+".action", action.Kind.String())

	p.log(ctx).Debug("uuid policy applied",
		logging.StringAttr("table", table),
		logging.StringAttr("attribute", pol.Attribute()),
		logging.StringAttr("action", action.String()),
	)
}

// since records the callback latency started at start.
func (p *Plugin) since(table, operation string, start time.Time) {
	p.collectors.duration.WithLabelValues(table, operation).Observe(time.Since(start).Seconds())
}

func (p *Plugin) log(ctx context.Context) *logging.Logger {
	if p.logger != nil {
		return p.logger
	}
	return logging.L(ctx)
}
