package mongo

import (
	"context"
	"f2fit/gym-manager/internal/repository"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const kvCollectionName = "kv"

// kvDocument stores one key. Version backs optimistic concurrency.
type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// mongoKVStore implements the repository.KVStore interface using MongoDB.
type mongoKVStore struct {
	collection *mongo.Collection
}

// NewMongoKVStore expects a connected *mongo.Database instance.
func NewMongoKVStore(db *mongo.Database) repository.KVStore {
	return &mongoKVStore{
		collection: db.Collection(kvCollectionName),
	}
}

func (s *mongoKVStore) find(ctx context.Context, key string) (*kvDocument, error) {
	var doc kvDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrapf(err, "mongo find %s", key)
	}
	return &doc, nil
}

func (s *mongoKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	doc, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	return []byte(doc.Value), nil
}

// writeValue stores value and bumps the version, so that every write
// invalidates the version an in-flight Update has read.
func writeValue(value []byte, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{"value": string(value), "updatedAt": now.UTC()},
		"$inc": bson.M{"version": 1},
	}
}

// versionFilter matches key only while it still holds the version that was read.
func versionFilter(key string, version int64) bson.M {
	return bson.M{"_id": key, "version": version}
}

func (s *mongoKVStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": key}, writeValue(value, time.Now()), options.Update().SetUpsert(true))
	return errors.Wrapf(err, "mongo set %s", key)
}

func (s *mongoKVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}})
	return errors.Wrap(err, "mongo delete")
}

// Update compares the version read with the version written; a mismatch
// means another writer won and the cycle is retried.
func (s *mongoKVStore) Update(ctx context.Context, key string, fn repository.UpdateFunc) error {
	for attempt := 0; attempt < repository.MaxUpdateAttempts; attempt++ {
		doc, err := s.find(ctx, key)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if doc == nil {
			next, err := fn(nil, false)
			if err != nil {
				return err
			}
			_, err = s.collection.InsertOne(ctx, kvDocument{Key: key, Value: string(next), Version: 1, UpdatedAt: time.Now().UTC()})
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return errors.Wrapf(err, "mongo insert %s", key)
		}

		next, err := fn([]byte(doc.Value), true)
		if err != nil {
			return err
		}
		result, err := s.collection.UpdateOne(ctx, versionFilter(key, doc.Version), writeValue(next, time.Now()))
		if err != nil {
			return errors.Wrapf(err, "mongo update %s", key)
		}
		if result.MatchedCount == 1 {
			return nil
		}
	}
	return repository.ErrConflict
}

// EnsureKVIndexes creates the secondary indexes of the kv collection.
// Call this once during application startup.
func EnsureKVIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "updatedAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := db.Collection(kvCollectionName).Indexes().CreateMany(ctx, indexes)
	return errors.Wrapf(err, "create indexes for %s", kvCollectionName)
}
