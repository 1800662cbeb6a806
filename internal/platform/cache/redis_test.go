package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), mr.Addr())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()
	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
}

func TestNewReturnsClientOnPingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	client, err := New(context.Background(), addr)
	assert.Error(t, err)
	require.NotNil(t, client)
	_ = client.Close()
}
