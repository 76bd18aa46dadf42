package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/xeppelin/user-service/internal/cache"
	"github.com/xeppelin/user-service/internal/domain"
	"github.com/xeppelin/user-service/internal/repository"
)

// CachedUserService decorates a UserManagement implementation with a Redis
// read-through cache keyed by id, email and phone number. Writes go through
// to the inner service and then refresh or evict the affected keys; the
// domain core stays unaware of caching.
type CachedUserService struct {
	inner UserManagement
	cache *cache.UserCache
}

// NewCachedUserService wraps inner with the given cache.
func NewCachedUserService(inner UserManagement, userCache *cache.UserCache) *CachedUserService {
	return &CachedUserService{inner: inner, cache: userCache}
}

// Create delegates and caches the created aggregate.
func (s *CachedUserService) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := s.inner.Create(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	s.cache.Put(ctx, created)
	return created, nil
}

// GetByID serves from cache when possible.
func (s *CachedUserService) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	if cached, ok := s.cache.GetByID(ctx, id); ok {
		return *cached, nil
	}
	user, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	s.cache.Put(ctx, user)
	return user, nil
}

// GetByEmail serves from cache when possible.
func (s *CachedUserService) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	if cached, ok := s.cache.GetByEmail(ctx, email); ok {
		return *cached, nil
	}
	user, err := s.inner.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	s.cache.Put(ctx, user)
	return user, nil
}

// GetByPhoneNumber serves from cache when possible.
func (s *CachedUserService) GetByPhoneNumber(ctx context.Context, phoneNumber string) (domain.User, error) {
	if cached, ok := s.cache.GetByPhoneNumber(ctx, phoneNumber); ok {
		return *cached, nil
	}
	user, err := s.inner.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		return domain.User{}, err
	}
	s.cache.Put(ctx, user)
	return user, nil
}

// List is never cached; pages are cheap and invalidation would be noisy.
func (s *CachedUserService) List(ctx context.Context, req repository.PageRequest, filter repository.ListFilter) (repository.UserPage, error) {
	return s.inner.List(ctx, req, filter)
}

// Update delegates, then evicts the stale keys (old email or phone may
// have changed) and caches the rebuilt aggregate.
func (s *CachedUserService) Update(ctx context.Context, id uuid.UUID, incoming domain.User) (domain.User, error) {
	stale, _ := s.cache.GetByID(ctx, id)

	updated, err := s.inner.Update(ctx, id, incoming)
	if err != nil {
		return domain.User{}, err
	}

	if stale != nil {
		s.cache.Evict(ctx, *stale)
	}
	s.cache.Put(ctx, updated)
	return updated, nil
}

// Delete delegates and evicts every key the aggregate was cached under.
func (s *CachedUserService) Delete(ctx context.Context, id uuid.UUID) error {
	stale, _ := s.cache.GetByID(ctx, id)

	if err := s.inner.Delete(ctx, id); err != nil {
		return err
	}

	if stale != nil {
		s.cache.Evict(ctx, *stale)
	}
	s.cache.EvictByID(ctx, id)
	return nil
}
