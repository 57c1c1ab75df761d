package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
)

// RecordRepository stores one kind of profile sub-resource. T must carry bson
// tags with "_id" and "user_id" keys.
type RecordRepository[T any] struct {
	coll     *mongo.Collection
	notFound error
	now      func() time.Time
}

func NewRecordRepository[T any](db *mongo.Database, collection string, notFound error) *RecordRepository[T] {
	return &RecordRepository[T]{
		coll:     db.Collection(collection),
		notFound: notFound,
		now:      time.Now,
	}
}

func NewProjectRepository(db *mongo.Database) *RecordRepository[domain.Project] {
	return NewRecordRepository[domain.Project](db, CollectionProjects, domain.ErrProjectNotFound)
}

func NewEducationRepository(db *mongo.Database) *RecordRepository[domain.Education] {
	return NewRecordRepository[domain.Education](db, CollectionEducations, domain.ErrEducationNotFound)
}

func NewCertificateRepository(db *mongo.Database) *RecordRepository[domain.Certificate] {
	return NewRecordRepository[domain.Certificate](db, CollectionCertificates, domain.ErrCertificateNotFound)
}

func (r *RecordRepository[T]) Create(ctx context.Context, rec *T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert %s: %w", r.coll.Name(), err)
	}
	return nil
}

func (r *RecordRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec T
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.notFound
		}
		return nil, fmt.Errorf("find %s: %w", r.coll.Name(), err)
	}
	return &rec, nil
}

// FindByUserID returns the owner's records oldest first. No match is an empty
// slice, not an error.
func (r *RecordRepository[T]) FindByUserID(ctx context.Context, userID string) ([]*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{domain.FieldUserID: userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.coll.Name(), err)
	}
	defer cur.Close(ctx)

	out := []*T{}
	for cur.Next(ctx) {
		var rec T
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", r.coll.Name(), err)
		}
		out = append(out, &rec)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.coll.Name(), err)
	}
	return out, nil
}

func (r *RecordRepository[T]) Update(ctx context.Context, id string, changes domain.Changeset) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rec T
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, setDocument(changes, r.now().UTC()), opts).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.notFound
		}
		return nil, fmt.Errorf("update %s: %w", r.coll.Name(), err)
	}
	return &rec, nil
}

func (r *RecordRepository[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return r.notFound
	}
	return nil
}

func (r *RecordRepository[T]) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{domain.FieldUserID: userID})
	if err != nil {
		return 0, fmt.Errorf("delete %s by owner: %w", r.coll.Name(), err)
	}
	return res.DeletedCount, nil
}
