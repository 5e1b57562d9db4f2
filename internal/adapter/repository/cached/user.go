package cached

import (
	"context"
	"iter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-service/internal/adapter/cache"
	domain "user-service/internal/domain/user"
	"user-service/internal/usecase/user"
	"user-service/pkg/logger"
)

// loadTimeout bounds a shared database load, which outlives the caller that started it.
const loadTimeout = 5 * time.Second

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ user.Repository = (*CachedUserRepository)(nil)

// NewCachedUserRepository creates a new instance of CachedUserRepository.
// A nil cache disables caching and every call goes to the DB repository.
func NewCachedUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Save persists the user and invalidates its cache entry.
func (r *CachedUserRepository) Save(ctx context.Context, u *domain.User) (*domain.User, error) {
	saved, err := r.dbRepo.Save(ctx, u)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, saved.ID)
	return saved, nil
}

// FindByID retrieves a user by ID using Cache-Aside pattern.
func (r *CachedUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	log := logger.WithContext(ctx, r.log)

	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			log.Warn("cache get error, falling back to database", zap.String("id", id), zap.Error(err))
		} else if cachedUser != nil {
			log.Debug("user retrieved from cache", zap.String("id", id))
			return cachedUser, nil
		}
	}

	// Cache miss or cache disabled - use single-flight to prevent stampede.
	// The load runs detached from any one caller; each caller waits on its own ctx.
	ch := r.group.DoChan(cache.CacheKey(id), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		// Another request may have populated the cache while we were waiting
		if r.cache != nil {
			cachedUser, err := r.cache.Get(loadCtx, id)
			if err == nil && cachedUser != nil {
				log.Debug("user retrieved from cache after single-flight wait", zap.String("id", id))
				return cachedUser, nil
			}
		}

		u, err := r.dbRepo.FindByID(loadCtx, id)
		if err != nil || u == nil {
			return u, err
		}

		if r.cache != nil {
			if err := r.cache.Set(loadCtx, u); err != nil {
				log.Warn("failed to cache user", zap.String("id", id), zap.Error(err))
			}
		}

		return u, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		u, _ := res.Val.(*domain.User)
		return u.Clone(), nil
	}
}

// FindAll always reads from the DB repository.
func (r *CachedUserRepository) FindAll(ctx context.Context) iter.Seq2[domain.User, error] {
	return r.dbRepo.FindAll(ctx)
}

// FindAndRemove deletes the user in DB and invalidates the cache.
func (r *CachedUserRepository) FindAndRemove(ctx context.Context, id string) (*domain.User, error) {
	removed, err := r.dbRepo.FindAndRemove(ctx, id)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, id)
	return removed, nil
}

func (r *CachedUserRepository) invalidate(ctx context.Context, id string) {
	if r.cache == nil || id == "" {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		logger.WithContext(ctx, r.log).Warn("failed to invalidate cache", zap.String("id", id), zap.Error(err))
	}
}
