package policy

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/RRWM1rr0rB/uuidattr/errors"
)

// Models maps table names to the policy configs attached to them.
type Models map[string][]Config

type document struct {
	Models Models `yaml:"models"`
}

// LoadConfig reads a YAML policy document. An empty document yields no models.
func LoadConfig(r io.Reader) (Models, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Models{}, nil
		}
		return nil, errors.Wrap(err, "policy: decode config")
	}
	if doc.Models == nil {
		doc.Models = Models{}
	}
	return doc.Models, nil
}

// LoadConfigFile reads a YAML policy document from path.
func LoadConfigFile(path string) (Models, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "policy: open config")
	}
	defer f.Close()
	return LoadConfig(f)
}

// Tables returns the configured table names in sorted order.
func (m Models) Tables() []string {
	return slices.Sorted(maps.Keys(m))
}

// Build constructs every configured policy. Errors from all entries are
// collected so one pass reports every problem.
func (m Models) Build(opts ...Option) (map[string][]*Policy, error) {
	out := make(map[string][]*Policy, len(m))
	var errs error
	for _, table := range m.Tables() {
		for i, cfg := range m[table] {
			p, err := New(cfg, opts...)
			if err != nil {
				errs = errors.Append(errs, errors.Wrap(err, fmt.Sprintf("models.%s[%d]", table, i)))
				continue
			}
			out[table] = append(out[table], p)
		}
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}
