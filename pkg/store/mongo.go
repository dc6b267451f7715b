package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/cellforge/cellforge/pkg/errors"
)

// MongoConfig configures a MongoDB-backed artifact store.
type MongoConfig struct {
	// URI is the connection string, e.g. "mongodb://localhost:27017".
	URI string
	// Database name, default "cellforge".
	Database string
	// Collection name, default "artifacts".
	Collection string
	// ConnectTimeout bounds the initial connection, default 5s.
	ConnectTimeout time.Duration
}

// MongoStore is a MongoDB-backed ArtifactStore.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "cellforge"
	}
	if cfg.Collection == "" {
		cfg.Collection = "artifacts"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to mongodb")
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Put stores an artifact, replacing any existing record with the same ID.
func (s *MongoStore) Put(ctx context.Context, a Artifact) error {
	if a.ID == "" {
		return errors.New(errors.ErrCodeInternal, "artifact has no ID")
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": a.ID}, a, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store artifact %s", a.ID)
	}
	return nil
}

// Get retrieves an artifact by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (Artifact, error) {
	var a Artifact
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return Artifact{}, errors.New(errors.ErrCodeNotFound, "artifact %q not found", id)
	}
	if err != nil {
		return Artifact{}, errors.Wrap(errors.ErrCodeInternal, err, "load artifact %s", id)
	}
	return a, nil
}

// ListRun returns the artifacts of one run, oldest first.
func (s *MongoStore) ListRun(ctx context.Context, runID string) ([]Artifact, error) {
	cur, err := s.coll.Find(ctx,
		bson.M{"run_id": runID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list run %s", runID)
	}
	defer cur.Close(ctx)

	var out []Artifact
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode artifacts of run %s", runID)
	}
	return out, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
