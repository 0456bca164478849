package policy_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RRWM1rr0rB/uuidattr/core/uuid/policy"
	"github.com/RRWM1rr0rB/uuidattr/errors"
)

const exampleConfig = `
models:
  example_model:
    - attribute: uuid
      method: storage-engine
      keepDashes: true
      enableOnUpdate: false
  orders:
    - attribute: public_id
      method: process-side
      keepDashes: false
    - attribute: external_ref
`

func TestLoadConfig(t *testing.T) {
	models, err := policy.LoadConfig(strings.NewReader(exampleConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"example_model", "orders"}, models.Tables())
	require.Len(t, models["orders"], 2)

	assert.Equal(t, policy.Config{
		Attribute:  "public_id",
		Method:     policy.MethodProcessSide,
		KeepDashes: false,
	}, models["orders"][0])

	// Omitted keys keep their defaults.
	assert.Equal(t, policy.Config{
		Attribute:  "external_ref",
		Method:     policy.MethodStorageEngine,
		KeepDashes: true,
	}, models["orders"][1])
}

func TestLoadConfig_Empty(t *testing.T) {
	models, err := policy.LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestLoadConfig_Malformed(t *testing.T) {
	_, err := policy.LoadConfig(strings.NewReader("models: [1, 2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "policy: decode config")
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uuid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleConfig), 0o600))

	models, err := policy.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Len(t, models, 2)

	_, err = policy.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestModelsBuild(t *testing.T) {
	models, err := policy.LoadConfig(strings.NewReader(exampleConfig))
	require.NoError(t, err)

	built, err := models.Build()
	require.NoError(t, err)
	require.Len(t, built["orders"], 2)
	assert.Equal(t, "public_id", built["orders"][0].Attribute())
	assert.Equal(t, policy.MethodProcessSide, built["orders"][0].Method())
	assert.False(t, built["orders"][0].KeepDashes())
	assert.Equal(t, policy.Action{Kind: policy.SetDeferred, Value: "UUID()"}, built["example_model"][0].Apply("", true))
}

func TestModelsBuild_AggregatesErrors(t *testing.T) {
	models := policy.Models{
		"a": {{Method: "invalid"}},
		"b": {policy.DefaultConfig(), {Method: policy.MethodStorageEngine, Dialect: "oracle"}},
	}

	built, err := models.Build()
	require.Error(t, err)
	assert.Nil(t, built)
	assert.True(t, errors.Is(err, policy.ErrInvalidConfig))

	errs := errors.Errors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "models.a[0]")
	assert.Contains(t, errs[1].Error(), "models.b[1]")
}
