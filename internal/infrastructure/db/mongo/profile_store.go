package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/caredesk/user-directory/internal/core/domain"
)

// batchDeleteChunk is the maximum ids per delete operation; larger requests
// are split and the chunks executed in parallel.
const batchDeleteChunk = 500

// ProfileStore persists per-role profile documents, one collection per role,
// keyed by user id.
type ProfileStore struct {
	db *mongo.Database
}

func NewProfileStore(db *mongo.Database) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get fetches the document for id; found=false when absent.
func (s *ProfileStore) Get(ctx context.Context, collection, id string) (domain.ProfileDocument, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get profile %s/%s: %w", collection, id, err)
	}
	delete(doc, "_id")
	return domain.ProfileDocument(doc), true, nil
}

// Set upserts the document for id.
func (s *ProfileStore) Set(ctx context.Context, collection, id string, doc domain.ProfileDocument) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stored := bson.M(doc)
	_, err := s.db.Collection(collection).ReplaceOne(
		ctx,
		bson.M{"_id": id},
		stored,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("set profile %s/%s: %w", collection, id, err)
	}
	return nil
}

// BatchDelete removes the documents for ids in chunks of batchDeleteChunk,
// executing the chunks in parallel. The first chunk error is returned.
func (s *ProfileStore) BatchDelete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	var chunks [][]string
	for start := 0; start < len(ids); start += batchDeleteChunk {
		end := start + batchDeleteChunk
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}

	errs := make(chan error, len(chunks))
	var wg sync.WaitGroup
	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []string) {
			defer wg.Done()
			_, err := s.db.Collection(collection).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": chunk}})
			errs <- err
		}(chunk)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return fmt.Errorf("batch delete %s: %w", collection, err)
		}
	}
	return nil
}
