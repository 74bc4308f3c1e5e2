package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakePinger struct{ err error }

func (p *fakePinger) PingContext(ctx context.Context) error { return p.err }

func TestHealthServer_Check(t *testing.T) {
	db := &fakePinger{}
	h := NewHealthServer(db)
	ctx := context.Background()

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, h.Check(ctx))
	status, err := h.Status(ctx, ServiceName)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status)

	db.err = errors.New("connection refused")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, h.Check(ctx))
	status, err = h.Status(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status)
}

func TestHealthServer_UnknownService(t *testing.T) {
	h := NewHealthServer(&fakePinger{})
	_, err := h.Status(context.Background(), "does.not.Exist")
	assert.Error(t, err)
}
