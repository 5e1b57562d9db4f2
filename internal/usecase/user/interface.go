package user

import (
	"context"
	"iter"

	domain "user-service/internal/domain/user"
	"user-service/pkg/async"
)

// Service defines the interface for user business logic operations.
// Single results are returned as futures; FindAll yields users lazily.
type Service interface {
	Save(ctx context.Context, in UserRequest) *async.Future[*domain.User]
	FindByID(ctx context.Context, id string) *async.Future[*domain.User]
	FindAll(ctx context.Context) iter.Seq2[domain.User, error]
	Update(ctx context.Context, id string, in UserRequest) *async.Future[*domain.User]
	Delete(ctx context.Context, id string) *async.Future[*domain.User]
}
