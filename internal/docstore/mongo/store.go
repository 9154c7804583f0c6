// Package mongo implements docstore.Store on MongoDB. Collection paths such as
// users/<uid>/orders map to dotted collection names.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rosie073/shopfinalcross/internal/docstore"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// codeUnauthorized is the server error code for an unauthorized command.
const codeUnauthorized = 13

type Store struct {
	db *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) collection(path string) *mongo.Collection {
	return s.db.Collection(strings.ReplaceAll(strings.Trim(path, "/"), "/", "."))
}

func (s *Store) GetCollection(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	filter := bson.M{}
	for _, f := range filters {
		filter[f.Field] = f.Value
	}

	cursor, err := s.collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to query %s: %w", collection, err))
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, mapError(fmt.Errorf("failed to decode %s: %w", collection, err))
	}

	docs := make([]docstore.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, toDocument(m))
	}
	return docs, nil
}

func (s *Store) GetDocument(ctx context.Context, ref docstore.Ref) (docstore.Document, error) {
	var m bson.M
	err := s.collection(ref.Collection).FindOne(ctx, bson.M{"_id": ref.ID}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, mapError(fmt.Errorf("failed to get %s: %w", ref.Path(), err))
	}
	return toDocument(m), nil
}

func (s *Store) SetDocument(ctx context.Context, ref docstore.Ref, data map[string]any) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection(ref.Collection).ReplaceOne(ctx, bson.M{"_id": ref.ID}, withoutID(data), opts)
	if err != nil {
		return mapError(fmt.Errorf("failed to set %s: %w", ref.Path(), err))
	}
	return nil
}

func (s *Store) AddDocument(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	doc := withoutID(data)
	doc["_id"] = id

	if _, err := s.collection(collection).InsertOne(ctx, doc); err != nil {
		return "", mapError(fmt.Errorf("failed to add to %s: %w", collection, err))
	}
	return id, nil
}

func (s *Store) UpdateDocument(ctx context.Context, ref docstore.Ref, partial map[string]any) error {
	update := bson.M{"$set": withoutID(partial)}
	result, err := s.collection(ref.Collection).UpdateOne(ctx, bson.M{"_id": ref.ID}, update)
	if err != nil {
		return mapError(fmt.Errorf("failed to update %s: %w", ref.Path(), err))
	}
	if result.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, ref docstore.Ref) error {
	if _, err := s.collection(ref.Collection).DeleteOne(ctx, bson.M{"_id": ref.ID}); err != nil {
		return mapError(fmt.Errorf("failed to delete %s: %w", ref.Path(), err))
	}
	return nil
}

// BatchWrite issues one ordered bulk upsert per collection.
func (s *Store) BatchWrite(ctx context.Context, writes []docstore.Write) error {
	byCollection := make(map[string][]mongo.WriteModel)
	var order []string
	for _, w := range writes {
		if _, ok := byCollection[w.Ref.Collection]; !ok {
			order = append(order, w.Ref.Collection)
		}
		model := mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": w.Ref.ID}).
			SetReplacement(withoutID(w.Data)).
			SetUpsert(true)
		byCollection[w.Ref.Collection] = append(byCollection[w.Ref.Collection], model)
	}

	for _, name := range order {
		opts := options.BulkWrite().SetOrdered(true)
		if _, err := s.collection(name).BulkWrite(ctx, byCollection[name], opts); err != nil {
			return mapError(fmt.Errorf("failed to batch write %s: %w", name, err))
		}
	}
	return nil
}

func mapError(err error) error {
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(codeUnauthorized) {
		return fmt.Errorf("%w: %v", docstore.ErrPermissionDenied, err)
	}
	return err
}

func withoutID(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}

func toDocument(m bson.M) docstore.Document {
	id := fmt.Sprint(m["_id"])
	if oid, ok := m["_id"].(primitive.ObjectID); ok {
		id = oid.Hex()
	}
	data := normalize(map[string]any(m)).(map[string]any)
	delete(data, "_id")
	return docstore.Document{ID: id, Data: data}
}

// normalize converts driver types into the plain values docstore documents carry.
func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		return normalize(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		return normalize([]any(t))
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case primitive.Decimal128:
		return t.String()
	case primitive.ObjectID:
		return t.Hex()
	default:
		return v
	}
}
