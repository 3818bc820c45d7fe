// Package kvrepo implements the entity repositories as JSON arrays stored
// under tenant keys of a repository.KVStore.
package kvrepo

import (
	"context"
	"encoding/json"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// record is satisfied by pointers to the domain entities embedding domain.Base.
type record[T any] interface {
	*T
	GetID() string
	SetID(string)
	SetCreatedAt(time.Time)
	GetCreatedAt() time.Time
}

type keyFunc func(scope string) (string, bool)

// collection is the read-modify-write engine behind every repository.
type collection[T any, P record[T]] struct {
	store repository.KVStore
	key   keyFunc
	clock domain.Clock
}

func newCollection[T any, P record[T]](store repository.KVStore, key keyFunc, clock domain.Clock) *collection[T, P] {
	return &collection[T, P]{store: store, key: key, clock: clock}
}

func (c *collection[T, P]) resolve(scope string) (string, error) {
	k, ok := c.key(scope)
	if !ok {
		return "", repository.ErrNoKey
	}
	return k, nil
}

// decode parses and validates a stored array. An absent key is an empty collection;
// anything unparseable or invalid is reported rather than dropped.
func (c *collection[T, P]) decode(key string, raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrapf(repository.ErrCorruptData, "%s: %v", key, err)
	}
	if items == nil {
		items = []T{}
	}
	for i := range items {
		if err := domain.Validate(P(&items[i])); err != nil {
			return nil, errors.Wrapf(repository.ErrCorruptData, "%s[%d]: %v", key, i, err)
		}
	}
	return items, nil
}

func (c *collection[T, P]) encode(items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		p := P(&items[i])
		if err := domain.Validate(p); err != nil {
			return nil, err
		}
		if _, dup := seen[p.GetID()]; dup {
			return nil, repository.ErrDuplicateID
		}
		seen[p.GetID()] = struct{}{}
	}
	return json.Marshal(items)
}

func (c *collection[T, P]) List(ctx context.Context, scope string) ([]T, error) {
	key, err := c.resolve(scope)
	if err != nil {
		return nil, err
	}
	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	return c.decode(key, raw)
}

func (c *collection[T, P]) Get(ctx context.Context, scope, id string) (*T, error) {
	items, err := c.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if P(&items[i]).GetID() == id {
			return &items[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (c *collection[T, P]) Mutate(ctx context.Context, scope string, fn func([]T) ([]T, error)) error {
	key, err := c.resolve(scope)
	if err != nil {
		return err
	}
	return c.store.Update(ctx, key, func(current []byte, _ bool) ([]byte, error) {
		items, err := c.decode(key, current)
		if err != nil {
			return nil, err
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		return c.encode(next)
	})
}

// Create assigns an ID unless one is preset, stamps the creation time and appends.
func (c *collection[T, P]) Create(ctx context.Context, scope string, rec *T) error {
	p := P(rec)
	if p.GetID() == "" {
		p.SetID(uuid.NewString())
	}
	p.SetCreatedAt(c.clock.Now().UTC())
	if err := domain.Validate(p); err != nil {
		return err
	}
	return c.Mutate(ctx, scope, func(items []T) ([]T, error) {
		for i := range items {
			if P(&items[i]).GetID() == p.GetID() {
				return nil, repository.ErrDuplicateID
			}
		}
		return append(items, *rec), nil
	})
}

// Update replaces the record with the same ID. The creation time is kept.
func (c *collection[T, P]) Update(ctx context.Context, scope string, rec *T) error {
	p := P(rec)
	if err := domain.Validate(p); err != nil {
		return err
	}
	return c.Mutate(ctx, scope, func(items []T) ([]T, error) {
		for i := range items {
			existing := P(&items[i])
			if existing.GetID() != p.GetID() {
				continue
			}
			if p.GetCreatedAt().IsZero() {
				p.SetCreatedAt(existing.GetCreatedAt())
			}
			items[i] = *rec
			return items, nil
		}
		return nil, repository.ErrNotFound
	})
}

func (c *collection[T, P]) Delete(ctx context.Context, scope, id string) error {
	return c.Mutate(ctx, scope, func(items []T) ([]T, error) {
		kept := items[:0]
		found := false
		for i := range items {
			if P(&items[i]).GetID() == id {
				found = true
				continue
			}
			kept = append(kept, items[i])
		}
		if !found {
			return nil, repository.ErrNotFound
		}
		return kept, nil
	})
}

func (c *collection[T, P]) Drop(ctx context.Context, scope string) error {
	key, err := c.resolve(scope)
	if err != nil {
		return err
	}
	return c.store.Delete(ctx, key)
}
