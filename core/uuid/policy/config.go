package policy

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RRWM1rr0rB/uuidattr/errors"
)

// Method selects where a missing UUID is generated.
type Method string

// Recognized generation methods.
const (
	// MethodStorageEngine defers generation to the database at write time.
	MethodStorageEngine Method = "storage-engine"
	// MethodProcessSide generates a UUIDv4 in the calling process, so the
	// value is known before the record is saved.
	MethodProcessSide Method = "process-side"
)

// methodAliases maps legacy method names onto the recognized ones.
var methodAliases = map[string]Method{
	"mysql": MethodStorageEngine,
	"php":   MethodProcessSide,
}

// Dialect selects the expression language of the storage engine.
type Dialect string

// Supported storage engine dialects.
const (
	DialectMySQL     Dialect = "mysql"
	DialectPostgres  Dialect = "postgres"
	DialectSQLite    Dialect = "sqlite"
	DialectSQLServer Dialect = "sqlserver"
)

const defaultAttribute = "uuid"

// ErrInvalidConfig is matched by every ConfigurationError.
var ErrInvalidConfig = errors.New("invalid uuid policy configuration")

// ConfigurationError reports an unrecognized configuration value.
type ConfigurationError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid UUID generation %s: %q, allowed values are: %s",
		e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// Is makes errors.Is(err, ErrInvalidConfig) hold for any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Config is the declarative policy configuration.
//
// The zero value is not the default: KeepDashes is false there. Start from
// DefaultConfig when building a Config in code. YAML documents are decoded
// on top of DefaultConfig, so omitted keys keep their defaults.
type Config struct {
	// Attribute is the name of the string field receiving the UUID.
	Attribute string `json:"attribute" yaml:"attribute"`
	// Method is either storage-engine or process-side. Empty means storage-engine.
	Method Method `json:"method" yaml:"method"`
	// KeepDashes selects the 8-4-4-4-12 form over the 32 character compact form.
	KeepDashes bool `json:"keepDashes" yaml:"keepDashes"`
	// EnableOnUpdate applies the policy to updates as well as inserts.
	EnableOnUpdate bool `json:"enableOnUpdate" yaml:"enableOnUpdate"`
	// Dialect picks the deferred expression. Empty means mysql.
	Dialect Dialect `json:"dialect,omitempty" yaml:"dialect,omitempty"`
}

// DefaultConfig returns the configuration used when nothing is overridden:
// attribute "uuid", storage-engine generation, dashes kept, inserts only.
func DefaultConfig() Config {
	return Config{
		Attribute:  defaultAttribute,
		Method:     MethodStorageEngine,
		KeepDashes: true,
	}
}

// UnmarshalYAML decodes a Config on top of DefaultConfig.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config
	cfg := plain(DefaultConfig())
	if err := value.Decode(&cfg); err != nil {
		return err
	}
	*c = Config(cfg)
	return nil
}

// parseMethod accepts the recognized names and their aliases verbatim; case
// and surrounding whitespace are significant.
func parseMethod(m Method) (Method, error) {
	switch m {
	case "":
		return MethodStorageEngine, nil
	case MethodStorageEngine, MethodProcessSide:
		return m, nil
	}
	if alias, ok := methodAliases[string(m)]; ok {
		return alias, nil
	}
	return "", &ConfigurationError{
		Field:   "method",
		Value:   string(m),
		Allowed: []string{string(MethodStorageEngine), string(MethodProcessSide)},
	}
}

func parseDialect(d Dialect) (Dialect, error) {
	if d == "" {
		return DialectMySQL, nil
	}
	if _, ok := deferredExpressions[d]; ok {
		return d, nil
	}
	return "", &ConfigurationError{
		Field:   "dialect",
		Value:   string(d),
		Allowed: []string{string(DialectMySQL), string(DialectPostgres), string(DialectSQLite), string(DialectSQLServer)},
	}
}
