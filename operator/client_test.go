package operator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_Defaults(t *testing.T) {
	t.Parallel()

	client, err := NewClient()
	require.NoError(t, err)
	require.Equal(t, defaultClientAddr, client.addr)
	require.Equal(t, defaultRetryTimeout, client.retryTimeout)
	require.NotNil(t, client.client)
	require.Nil(t, client.key)
}

func TestClient_Options(t *testing.T) {
	t.Parallel()

	client, err := NewClient(
		WithAddr("http://127.0.0.1:10002"),
		WithRetryTimeout(5*time.Second),
	)
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:10002", client.addr)
	require.Equal(t, 5*time.Second, client.retryTimeout)
}

func TestClient_PrivilegedCallsRequireKey(t *testing.T) {
	t.Parallel()

	client, err := NewClient()
	require.NoError(t, err)

	_, err = client.SetFeeRate(context.Background(), 10)
	require.ErrorIs(t, err, errNoSigningKey)
}
