package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest"
)

// MongoStore persists plots in a MongoDB collection for shared
// deployments. The spec is stored as a real BSON subdocument, converted
// from its canonical JSON encoding, so plots stay queryable from Mongo
// tooling while decoding exactly as the original spec did.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	// URI is the connection string (mongodb://host:port).
	URI string

	// Database name. Defaults to "forestplot".
	Database string

	// Collection name. Defaults to "plots".
	Collection string
}

// mongoRecord is the stored document shape.
type mongoRecord struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title,omitempty"`
	Rows      int       `bson:"rows"`
	Spec      bson.D    `bson:"spec"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeMissingField, "missing required field: mongo uri")
	}
	if cfg.Database == "" {
		cfg.Database = "forestplot"
	}
	if cfg.Collection == "" {
		cfg.Collection = "plots"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo %s: %w", cfg.URI, err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Put(ctx context.Context, id string, spec *forest.Spec) error {
	if err := validID(id); err != nil {
		return err
	}
	doc, err := specToBSON(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"title":      spec.Labels.Title,
			"rows":       len(spec.Data.Rows),
			"spec":       doc,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err = s.coll.UpdateByID(ctx, id, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store plot %s: %w", id, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*forest.Spec, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	var rec mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load plot %s: %w", id, err)
	}
	return specFromBSON(rec.Spec)
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete plot %s: %w", id, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	opts := options.Find().
		SetProjection(bson.M{"spec": 0}).
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list plots: %w", err)
	}
	defer cur.Close(ctx)

	var infos []Info
	for cur.Next(ctx) {
		var rec mongoRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode plot record: %w", err)
		}
		infos = append(infos, Info{
			ID:        rec.ID,
			Title:     rec.Title,
			Rows:      rec.Rows,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list plots: %w", err)
	}
	return infos, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// specToBSON converts a spec to a BSON document through the canonical
// JSON encoding. Column option variants have custom JSON decoding that
// struct tags can't express, so the conversion goes through extended
// JSON rather than encoding the struct directly.
func specToBSON(spec *forest.Spec) (bson.D, error) {
	raw, err := spec.Marshal()
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode spec document")
	}
	return doc, nil
}

// specFromBSON is the inverse conversion back through relaxed extended
// JSON, which renders plain numbers and strings as ordinary JSON.
func specFromBSON(doc bson.D) (*forest.Spec, error) {
	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode spec document")
	}
	return forest.Parse(raw)
}

var _ Store = (*MongoStore)(nil)
