package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{
			name:    "EmptyHost",
			cfg:     NewConfig(WithHost("")),
			wantErr: ErrEmptyHost,
		},
		{
			name:    "ZeroPort",
			cfg:     NewConfig(WithPort(0)),
			wantErr: ErrZeroPort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewServer(tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigAddress(t *testing.T) {
	assert.Equal(t, "0.0.0.0:9090", NewConfig().Address())
	assert.Equal(t, "127.0.0.1:9100", NewConfig(WithHost("127.0.0.1"), WithPort(9100)).Address())
}

func TestServerHandlerServesRegistry(t *testing.T) {
	prevReg, prevGat := Registerer, Gatherer
	t.Cleanup(func() { Registerer, Gatherer = prevReg, prevGat })
	SetRegistry(prometheus.NewRegistry())

	counter := NewCounterVec(CounterOpts{
		Name: "uuidattr_test_total",
		Help: "Test counter",
	}, []string{"kind"})
	counter.WithLabelValues("literal").Inc()

	server, err := NewServer(NewConfig())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, metricsPath, nil)
	server.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `uuidattr_test_total{kind="literal"} 1`)
}

func TestServerHandlerProfiling(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		wantCode int
	}{
		{name: "Disabled", enabled: false, wantCode: http.StatusNotFound},
		{name: "Enabled", enabled: true, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(NewConfig(WithProfiling(tt.enabled)))
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, pprofPath+"cmdline", nil)
			server.Handler().ServeHTTP(rr, req)
			assert.Equal(t, tt.wantCode, rr.Code)
		})
	}
}

func TestNewCounterVec_ReusesRegistered(t *testing.T) {
	prevReg, prevGat := Registerer, Gatherer
	t.Cleanup(func() { Registerer, Gatherer = prevReg, prevGat })
	SetRegistry(prometheus.NewRegistry())

	opts := CounterOpts{Name: "uuidattr_reuse_total", Help: "Reuse"}
	first := NewCounterVec(opts, []string{"kind"})
	second := NewCounterVec(opts, []string{"kind"})
	assert.Same(t, first, second)

	assert.Panics(t, func() {
		NewCounterVec(opts, []string{"other"})
	}, "same name with different labels is a conflict")
}

func TestNewHistogramVec_UsesCurrentRegistry(t *testing.T) {
	prevReg, prevGat := Registerer, Gatherer
	t.Cleanup(func() { Registerer, Gatherer = prevReg, prevGat })

	reg := prometheus.NewRegistry()
	SetRegistry(reg)
	h := NewHistogramVec(HistogramOpts{
		Name:    "uuidattr_test_seconds",
		Help:    "Test histogram",
		Buckets: DefBuckets,
	}, []string{"op"})
	h.WithLabelValues("create").Observe(0.01)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "uuidattr_test_seconds", families[0].GetName())
}
