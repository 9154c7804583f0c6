package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectOptions describes how the storefront reaches its document database.
// Zero fields take the defaults below.
type ConnectOptions struct {
	URI         string
	Database    string
	AppName     string
	MaxPoolSize uint64
	PingTimeout time.Duration
}

func (o ConnectOptions) withDefaults() ConnectOptions {
	if o.AppName == "" {
		o.AppName = "storefront"
	}
	if o.MaxPoolSize == 0 {
		o.MaxPoolSize = 50
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 5 * time.Second
	}
	return o
}

func (o ConnectOptions) clientOptions() *options.ClientOptions {
	return options.Client().
		ApplyURI(o.URI).
		SetAppName(o.AppName).
		SetMaxPoolSize(o.MaxPoolSize).
		SetServerSelectionTimeout(o.PingTimeout).
		SetRetryWrites(true).
		SetReadPreference(readpref.Primary())
}

// Connect opens a client and checks the primary is reachable. The client is
// released again when the check fails.
func Connect(ctx context.Context, opts ConnectOptions) (*mongo.Database, error) {
	opts = opts.withDefaults()
	if opts.URI == "" || opts.Database == "" {
		return nil, fmt.Errorf("mongo: uri and database are required")
	}

	client, err := mongo.Connect(ctx, opts.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping %s: %w", opts.Database, err)
	}

	return client.Database(opts.Database), nil
}
