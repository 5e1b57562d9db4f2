package user

import (
	"context"
	"iter"

	"go.uber.org/zap"

	domain "user-service/internal/domain/user"
	"user-service/pkg/async"
	apperrors "user-service/pkg/errors"
	"user-service/pkg/logger"
)

// Repository defines the interface for user data access operations.
// Lookups return (nil, nil) when no user has the given id.
type Repository interface {
	Save(ctx context.Context, u *domain.User) (*domain.User, error)     // Insert when ID is empty, replace otherwise
	FindByID(ctx context.Context, id string) (*domain.User, error)      // Retrieve user by ID
	FindAll(ctx context.Context) iter.Seq2[domain.User, error]          // Stream every user
	FindAndRemove(ctx context.Context, id string) (*domain.User, error) // Delete user by ID, returning it
}

// Usecase implements the business logic for user management operations.
// Request validation happens at the transport boundary before any call here.
type Usecase struct {
	repo Repository  // Repository for data access
	log  *zap.Logger // Logger for structured logging
}

var _ Service = (*Usecase)(nil)

// New creates a new instance of Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: log}
}

// Save maps the request to a new entity and persists it.
// Repository failures such as duplicate keys are returned unchanged.
func (uc *Usecase) Save(ctx context.Context, in UserRequest) *async.Future[*domain.User] {
	return async.Go(ctx, func(ctx context.Context) (*domain.User, error) {
		log := logger.WithContext(ctx, uc.log)
		log.Info("saving user", zap.Stringp("name", in.Name), zap.Stringp("email", in.Email))

		u, err := uc.repo.Save(ctx, ToEntity(in))
		if err != nil {
			log.Error("failed to save user", zap.Error(err))
			return nil, err
		}
		return ensureID(u)
	})
}

// FindByID retrieves a user, failing with a NotFoundError when it does not exist.
func (uc *Usecase) FindByID(ctx context.Context, id string) *async.Future[*domain.User] {
	return async.Go(ctx, func(ctx context.Context) (*domain.User, error) {
		u, err := uc.find(ctx, id)
		if err != nil {
			return nil, err
		}
		return ensureID(u)
	})
}

// FindAll streams every stored user. The sequence can be ranged over once;
// breaking out of the loop stops the underlying scan.
func (uc *Usecase) FindAll(ctx context.Context) iter.Seq2[domain.User, error] {
	logger.WithContext(ctx, uc.log).Debug("listing users")
	return async.Once(uc.repo.FindAll(ctx))
}

// Update merges the present request fields into the stored user and persists the result.
// There is no version check: concurrent updates of the same id are last-write-wins,
// and an update racing a delete reports the user as not found.
func (uc *Usecase) Update(ctx context.Context, id string, in UserRequest) *async.Future[*domain.User] {
	return async.Go(ctx, func(ctx context.Context) (*domain.User, error) {
		log := logger.WithContext(ctx, uc.log)
		log.Info("updating user", zap.String("id", id), zap.Stringp("name", in.Name), zap.Stringp("email", in.Email))

		existing, err := uc.find(ctx, id)
		if err != nil {
			return nil, err
		}

		saved, err := uc.repo.Save(ctx, MergeEntity(in, existing))
		if err != nil {
			log.Error("failed to update user", zap.String("id", id), zap.Error(err))
			return nil, err
		}
		return ensureID(saved)
	})
}

// Delete removes the user in a single find-and-remove call.
func (uc *Usecase) Delete(ctx context.Context, id string) *async.Future[*domain.User] {
	return async.Go(ctx, func(ctx context.Context) (*domain.User, error) {
		log := logger.WithContext(ctx, uc.log)
		log.Info("deleting user", zap.String("id", id))

		u, err := uc.repo.FindAndRemove(ctx, id)
		if err != nil {
			log.Error("failed to delete user", zap.String("id", id), zap.Error(err))
			return nil, err
		}
		if u == nil {
			log.Warn("user not found", zap.String("id", id))
			return nil, apperrors.NewObjectNotFoundError(domain.TypeName, id)
		}
		return ensureID(u)
	})
}

func (uc *Usecase) find(ctx context.Context, id string) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)

	u, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		log.Error("failed to get user", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if u == nil {
		log.Warn("user not found", zap.String("id", id))
		return nil, apperrors.NewObjectNotFoundError(domain.TypeName, id)
	}
	return u, nil
}

// ensureID guards the invariant that users handed out by the service carry an id.
func ensureID(u *domain.User) (*domain.User, error) {
	if !u.HasID() {
		return nil, apperrors.NewInternalError("repository returned a user without id", nil)
	}
	return u, nil
}
