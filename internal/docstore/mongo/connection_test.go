package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectOptions_Defaults(t *testing.T) {
	o := ConnectOptions{URI: "mongodb://localhost:27017", Database: "shop"}.withDefaults()

	assert.Equal(t, "storefront", o.AppName)
	assert.Equal(t, uint64(50), o.MaxPoolSize)
	assert.Equal(t, 5*time.Second, o.PingTimeout)

	co := o.clientOptions()
	require.NotNil(t, co.AppName)
	assert.Equal(t, "storefront", *co.AppName)
	require.NotNil(t, co.MaxPoolSize)
	assert.Equal(t, uint64(50), *co.MaxPoolSize)
}

func TestConnect_RequiresURIAndDatabase(t *testing.T) {
	_, err := Connect(context.Background(), ConnectOptions{URI: "mongodb://localhost:27017"})
	assert.Error(t, err)

	_, err = Connect(context.Background(), ConnectOptions{Database: "shop"})
	assert.Error(t, err)
}

func TestConnect_UnreachableServerFails(t *testing.T) {
	_, err := Connect(context.Background(), ConnectOptions{
		URI:         "mongodb://127.0.0.1:1/?connect=direct",
		Database:    "shop",
		PingTimeout: 200 * time.Millisecond,
	})
	assert.Error(t, err)
}
