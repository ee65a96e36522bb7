// Package database opens the MongoDB client shared by the repositories and
// the log sink. The handle is returned, never stored in a package variable.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Options configures Connect.
type Options struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// DB bundles the client with the application database.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect dials MongoDB and verifies the connection with a ping. Returns an
// error instead of calling log.Fatal so the caller can shut down gracefully.
func Connect(ctx context.Context, o Options) (*DB, error) {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.MaxPoolSize == 0 {
		o.MaxPoolSize = 25
	}

	ctx, cancel := context.WithTimeout(ctx, o.ConnectTimeout)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	clientOpts := options.Client().ApplyURI(o.URI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(o.MaxPoolSize).
		// Free-form fields are returned to clients as JSON; nested
		// documents must decode as maps, not ordered key/value slices.
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return &DB{Client: client, Database: client.Database(o.Database)}, nil
}

// Collection returns a handle to the named collection.
func (d *DB) Collection(name string) *mongo.Collection {
	return d.Database.Collection(name)
}

// Close disconnects the client.
func (d *DB) Close(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Disconnect(ctx)
}
