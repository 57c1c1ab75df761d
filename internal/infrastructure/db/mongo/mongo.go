package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

const (
	CollectionUsers        = "users"
	CollectionProjects     = "projects"
	CollectionEducations   = "educations"
	CollectionCertificates = "certificates"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the unique email index on users and the owner index on
// every record collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := db.Collection(CollectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	for _, name := range []string{CollectionProjects, CollectionEducations, CollectionCertificates} {
		_, err := db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: domain.FieldUserID, Value: 1}},
		})
		if err != nil {
			return fmt.Errorf("%s index: %w", name, err)
		}
	}
	return nil
}

// setDocument turns a changeset into a $set update that also stamps
// updated_at. Field names are the stored document keys.
func setDocument(changes domain.Changeset, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	for _, f := range changes {
		set[f.Name] = f.Value
	}
	return bson.M{"$set": set}
}
