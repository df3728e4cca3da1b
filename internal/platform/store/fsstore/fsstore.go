// Package fsstore implements store.Store on Cloud Firestore.
package fsstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/salutdigital/portal/internal/platform/store"
)

type Store struct {
	client *firestore.Client
}

func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Insert(ctx context.Context, collection string, doc store.Document) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, map[string]interface{}(doc))
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *Store) GetByID(ctx context.Context, collection, id string) (store.Record, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return store.Record{ID: snap.Ref.ID, Data: store.Document(snap.Data())}, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, patch store.Patch, mode store.WriteMode) error {
	ref := s.client.Collection(collection).Doc(id)
	set, cleared := patch.Split()

	var err error
	switch {
	case mode == store.Replace:
		_, err = ref.Set(ctx, map[string]interface{}(set))
	case len(set) == 0 && len(cleared) == 0:
		err = s.touch(ctx, ref)
	default:
		_, err = ref.Set(ctx, mergeData(set, cleared), firestore.MergeAll)
	}
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

// touch creates an empty document when none exists. MergeAll rejects an
// empty field set, so a no-op patch cannot go through Set.
func (s *Store) touch(ctx context.Context, ref *firestore.DocumentRef) error {
	_, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		_, err = ref.Set(ctx, map[string]interface{}{})
	}
	return err
}

func (s *Store) Remove(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("remove %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, filters ...store.Filter) ([]store.Record, error) {
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		switch n := len(f.Values); {
		case n == 0:
			return nil, nil
		case n == 1:
			q = q.Where(f.Field, "==", f.Values[0])
		case n > store.MaxInValues:
			return nil, fmt.Errorf("query %s: %d values for %s exceeds limit of %d", collection, n, f.Field, store.MaxInValues)
		default:
			q = q.Where(f.Field, "in", f.Values)
		}
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []store.Record
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", collection, err)
		}
		out = append(out, store.Record{ID: snap.Ref.ID, Data: store.Document(snap.Data())})
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	iter := s.client.Collections(ctx)
	_, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil
	}
	return err
}

func mergeData(set store.Document, cleared []string) map[string]interface{} {
	data := make(map[string]interface{}, len(set)+len(cleared))
	for k, v := range set {
		data[k] = v
	}
	for _, k := range cleared {
		data[k] = firestore.Delete
	}
	return data
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Pinger = (*Store)(nil)
)
