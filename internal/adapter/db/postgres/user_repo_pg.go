package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-service/internal/domain/user"
	apperrors "user-service/pkg/errors"
	"user-service/pkg/logger"
)

// UserRepoPG implements the user Repository interface using GORM.
// It runs against PostgreSQL in production and SQLite in tests.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`          // Server-generated UUID
	Name     string `gorm:"not null"`                             // User's full name (required)
	Email    string `gorm:"not null;uniqueIndex:idx_users_email"` // User's unique email address
	Password string `gorm:"not null"`                             // User's password (required)
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func toSchema(u *user.User) UserSchema {
	return UserSchema{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
	}
}

func (m UserSchema) toDomain() *user.User {
	return &user.User{
		ID:       m.ID,
		Name:     m.Name,
		Email:    m.Email,
		Password: m.Password,
	}
}

// Save inserts the user when it has no id yet, otherwise overwrites the stored row.
// Overwriting a row that no longer exists returns *errors.NotFoundError instead of
// recreating it. Unique constraint violations are returned as *errors.DuplicateKeyError.
func (r *UserRepoPG) Save(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}
	log := logger.WithContext(ctx, r.log)

	model := toSchema(u)
	var err error
	if model.ID == "" {
		model.ID = uuid.NewString()
		err = r.db.WithContext(ctx).Create(&model).Error
	} else {
		res := r.db.WithContext(ctx).Model(&UserSchema{ID: model.ID}).Updates(map[string]any{
			"name":     model.Name,
			"email":    model.Email,
			"password": model.Password,
		})
		err = res.Error
		if err == nil && res.RowsAffected == 0 {
			log.Warn("user removed before update", zap.String("id", model.ID))
			return nil, apperrors.NewObjectNotFoundError(user.TypeName, model.ID)
		}
	}

	if err != nil {
		if field, ok := duplicateKeyField(err); ok {
			log.Warn("duplicate key on user save", zap.String("field", field), zap.Error(err))
			return nil, apperrors.NewDuplicateKeyError(user.TypeName, field, err)
		}
		log.Error("failed to save user in db", zap.Error(err), zap.String("id", model.ID))
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	log.Info("user saved in db", zap.String("id", model.ID))
	return model.toDomain(), nil
}

// FindByID retrieves a user by id. It returns (nil, nil) when no row matches.
func (r *UserRepoPG) FindByID(ctx context.Context, id string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithContext(ctx, r.log).Debug("user not found in db", zap.String("id", id))
			return nil, nil
		}
		logger.WithContext(ctx, r.log).Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// FindAll streams users from a database cursor.
// Stopping the iteration early closes the cursor and cancels the query.
func (r *UserRepoPG) FindAll(ctx context.Context) iter.Seq2[user.User, error] {
	return func(yield func(user.User, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		rows, err := r.db.WithContext(ctx).Model(&UserSchema{}).Rows()
		if err != nil {
			logger.WithContext(ctx, r.log).Error("failed to list users from db", zap.Error(err))
			yield(user.User{}, fmt.Errorf("failed to list users: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var model UserSchema
			if err := r.db.ScanRows(rows, &model); err != nil {
				yield(user.User{}, fmt.Errorf("failed to scan user: %w", err))
				return
			}
			if !yield(*model.toDomain(), nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(user.User{}, fmt.Errorf("failed to list users: %w", err))
		}
	}
}

// FindAndRemove deletes the user with the given id and returns it.
// The read and the delete share a transaction; (nil, nil) means nothing was removed.
func (r *UserRepoPG) FindAndRemove(ctx context.Context, id string) (*user.User, error) {
	var removed *user.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserSchema
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		res := tx.Where("id = ?", id).Delete(&UserSchema{})
		if res.Error != nil {
			return res.Error
		}
		// removed by a concurrent request between the read and the delete
		if res.RowsAffected == 0 {
			return nil
		}

		removed = model.toDomain()
		return nil
	})
	if err != nil {
		logger.WithContext(ctx, r.log).Error("failed to delete user in db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	if removed != nil {
		logger.WithContext(ctx, r.log).Info("user deleted in db", zap.String("id", id))
	}
	return removed, nil
}
