// Package gormhook installs UUID attribute policies into GORM's create and
// update pipelines.
//
// Policies are attached per table. Right before GORM transmits an INSERT (or
// an UPDATE, when the policy allows it) the plugin applies each policy to the
// record and writes the outcome back: literal values go into the struct
// field, deferred values are placed into the statement as raw SQL so the
// database generates the UUID.
package gormhook

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/RRWM1rr0rB/uuidattr/core/uuid/policy"
	"github.com/RRWM1rr0rB/uuidattr/errors"
)

const (
	pluginName         = "uuidattr"
	createCallbackName = "uuidattr:before_create"
	updateCallbackName = "uuidattr:before_update"
)

// Plugin implements gorm.Plugin.
type Plugin struct {
	policies   map[string][]*policy.Policy
	models     policy.Models
	policyOpts []policy.Option
	logger     *slog.Logger
	collectors *collectors
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithPolicies attaches ready-made policies to a table.
func WithPolicies(table string, policies ...*policy.Policy) Option {
	return func(p *Plugin) {
		p.policies[table] = append(p.policies[table], policies...)
	}
}

// WithConfig attaches policies described by models. They are built during
// Initialize; entries without a dialect use the dialect of the connection.
func WithConfig(models policy.Models) Option {
	return func(p *Plugin) {
		for table, cfgs := range models {
			p.models[table] = append(p.models[table], cfgs...)
		}
	}
}

// WithPolicyOptions passes options to policies built from WithConfig.
func WithPolicyOptions(opts ...policy.Option) Option {
	return func(p *Plugin) {
		p.policyOpts = append(p.policyOpts, opts...)
	}
}

// WithLogger sets the logger. Defaults to the logger carried by the
// statement context.
func WithLogger(l *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = l
	}
}

// New creates a Plugin. Register it with db.Use.
func New(opts ...Option) *Plugin {
	p := &Plugin{
		policies: make(map[string][]*policy.Policy),
		models:   make(policy.Models),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements gorm.Plugin.
func (p *Plugin) Name() string {
	return pluginName
}

// Initialize implements gorm.Plugin. It builds configured policies, creates
// the metrics on metrics.Registerer and registers the callbacks; every
// configuration error is reported at once.
func (p *Plugin) Initialize(db *gorm.DB) error {
	if len(p.models) > 0 {
		dialect := policy.Dialect(db.Dialector.Name())
		models := make(policy.Models, len(p.models))
		for table, cfgs := range p.models {
			for _, cfg := range cfgs {
				if cfg.Dialect == "" {
					cfg.Dialect = dialect
				}
				models[table] = append(models[table], cfg)
			}
		}

		built, err := models.Build(p.policyOpts...)
		if err != nil {
			return errors.Wrap(err, "gormhook: build policies")
		}
		for table, policies := range built {
			p.policies[table] = append(p.policies[table], policies...)
		}
	}

	p.collectors = newCollectors()

	cb := db.Callback()
	if err := cb.Create().
		After("gorm:save_before_associations").
		Before("gorm:create").
		Register(createCallbackName, p.beforeCreate); err != nil {
		return errors.Wrap(err, "gormhook: register create callback")
	}
	if err := cb.Update().
		After("gorm:save_before_associations").
		Before("gorm:update").
		Register(updateCallbackName, p.beforeUpdate); err != nil {
		return errors.Wrap(err, "gormhook: register update callback")
	}
	return nil
}

// Policies returns the policies attached to table.
func (p *Plugin) Policies(table string) []*policy.Policy {
	return p.policies[table]
}
