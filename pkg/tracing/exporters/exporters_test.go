package exporters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTLPConfig_WithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		config   OTLPConfig
		expected OTLPConfig
	}{
		{
			name:     "empty uses grpc",
			config:   OTLPConfig{},
			expected: OTLPConfig{Protocol: "grpc", Endpoint: "localhost:4317", Timeout: 10 * time.Second},
		},
		{
			name:     "http port",
			config:   OTLPConfig{Protocol: "http"},
			expected: OTLPConfig{Protocol: "http", Endpoint: "localhost:4318", Timeout: 10 * time.Second},
		},
		{
			name:     "explicit values kept",
			config:   OTLPConfig{Protocol: "http", Endpoint: "collector:9000", Timeout: time.Second, Insecure: true},
			expected: OTLPConfig{Protocol: "http", Endpoint: "collector:9000", Timeout: time.Second, Insecure: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.withDefaults())
		})
	}
}

func TestNewOTLPExporter_UnsupportedProtocol(t *testing.T) {
	_, err := NewOTLPExporter(context.Background(), OTLPConfig{Protocol: "udp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported OTLP protocol")
}

func TestConsoleExporter_NilLogger(t *testing.T) {
	exp := NewConsoleExporter(nil)
	assert.NoError(t, exp.ExportSpans(context.Background(), nil))
	assert.NoError(t, exp.Shutdown(context.Background()))
}
