package ratelimit

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClient struct {
	calls atomic.Int32
}

func (c *countingClient) Get(context.Context, string, map[string]string, interface{}) error {
	c.calls.Add(1)
	return nil
}

func (c *countingClient) GetBytes(context.Context, string, map[string]string) ([]byte, error) {
	c.calls.Add(1)
	return []byte("body"), nil
}

func (c *countingClient) Post(context.Context, string, string, map[string]string, io.Reader) ([]byte, error) {
	c.calls.Add(1)
	return nil, errors.New("boom")
}

func TestHTTPClientDelegates(t *testing.T) {
	ctx := context.Background()
	inner := &countingClient{}
	client := NewHTTPClient(inner, 100, 10)

	require.NoError(t, client.Get(ctx, "http://example.com", nil, nil))

	body, err := client.GetBytes(ctx, "http://example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), body)

	_, err = client.Post(ctx, "http://example.com", "", nil, nil)
	require.Error(t, err)

	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestHTTPClientPacesRequests(t *testing.T) {
	ctx := context.Background()
	inner := &countingClient{}
	// 1 token immediately, then 20 per second
	client := NewHTTPClient(inner, 20, 1)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, client.Get(ctx, "http://example.com", nil, nil))
	}

	// Four waits at 50ms apiece
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	assert.Equal(t, int32(5), inner.calls.Load())
}

func TestHTTPClientRespectsContext(t *testing.T) {
	inner := &countingClient{}
	client := NewHTTPClient(inner, 0.001, 1)

	// Drain the single burst token
	require.NoError(t, client.Get(context.Background(), "http://example.com", nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.Get(ctx, "http://example.com", nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())
}
