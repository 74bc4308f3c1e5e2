package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"blackrent-backend/internal/config"
)

func TestSetup_NoEndpointIsNoop(t *testing.T) {
	shutdown := Setup(config.TelemetryConfig{ServiceName: "blackrent-test"})
	assert.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
