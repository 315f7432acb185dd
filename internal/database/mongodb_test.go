package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnector_CloseBeforeConnect(t *testing.T) {
	c := NewConnector("mongodb://127.0.0.1:1", "users", time.Second)
	require.NoError(t, c.Close(context.Background()))
	// second close is a no-op
	require.NoError(t, c.Close(context.Background()))

	_, err := c.Connect(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}

func TestConnector_FailedConnectIsNotCached(t *testing.T) {
	// unparseable URI fails fast without any network access
	c := NewConnector("not-a-mongo-uri", "users", time.Second)
	_, err := c.Connect(context.Background())
	require.Error(t, err)
	_, err = c.Database(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrClosed)
}

func TestNewConnector_DefaultTimeout(t *testing.T) {
	c := NewConnector("mongodb://localhost", "users", 0)
	require.Equal(t, 10*time.Second, c.timeout)
}
