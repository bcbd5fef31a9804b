package repository

import (
	"context"

	"github.com/gautambamne/ECom-sub000/internal/cache"
	"github.com/gautambamne/ECom-sub000/internal/model"
)

const (
	userIDKeyPrefix    = "users:id:"
	userEmailKeyPrefix = "users:email:"
)

// CachedUserRepository decorates a UserRepository with a look-aside cache.
// Records are indexed under two key namespaces, by id and by email (email
// lowercased as stored), each populated and invalidated independently.
// The durable store is always authoritative: writes go to it first, and the
// cache is updated only after the durable write commits.
type CachedUserRepository struct {
	inner UserRepository
	cache *cache.Store
}

func NewCachedUserRepository(inner UserRepository, store *cache.Store) *CachedUserRepository {
	return &CachedUserRepository{inner: inner, cache: store}
}

func userIDKey(id string) string       { return userIDKeyPrefix + id }
func userEmailKey(email string) string { return userEmailKeyPrefix + email }

func (r *CachedUserRepository) Create(ctx context.Context, u *model.User) error {
	if err := r.inner.Create(ctx, u); err != nil {
		return err
	}
	r.writeThrough(ctx, u)
	return nil
}

func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if snap, ok := cache.GetAndRefreshJSON[model.CachedUser](ctx, r.cache, userIDKey(id)); ok {
		return snap.ToUser(), nil
	}
	u, err := r.inner.GetByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	r.cache.Set(ctx, userIDKey(id), u.ToCached(), nil)
	return u, nil
}

func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if snap, ok := cache.GetAndRefreshJSON[model.CachedUser](ctx, r.cache, userEmailKey(email)); ok {
		return snap.ToUser(), nil
	}
	u, err := r.inner.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return u, err
	}
	r.cache.Set(ctx, userEmailKey(email), u.ToCached(), nil)
	return u, nil
}

// Update writes the full post-update record through to both keys. Racing
// concurrent updates are last-writer-wins in the cache; the window is
// bounded by the entry TTL.
func (r *CachedUserRepository) Update(ctx context.Context, u *model.User) error {
	if err := r.inner.Update(ctx, u); err != nil {
		return err
	}
	r.writeThrough(ctx, u)
	return nil
}

// DeleteByID clears the id key and (via a read of the record) the email key,
// in that order, before the durable delete.
func (r *CachedUserRepository) DeleteByID(ctx context.Context, id string) error {
	u, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return err
	}
	r.cache.Delete(ctx, userIDKey(id))
	if u != nil {
		r.cache.Delete(ctx, userEmailKey(u.Email))
	}
	return r.inner.DeleteByID(ctx, id)
}

func (r *CachedUserRepository) writeThrough(ctx context.Context, u *model.User) {
	snap := u.ToCached()
	r.cache.Set(ctx, userIDKey(u.ID), snap, nil)
	r.cache.Set(ctx, userEmailKey(u.Email), snap, nil)
}
