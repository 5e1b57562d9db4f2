package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-service/internal/usecase/user"
	"user-service/pkg/async"
	apperrors "user-service/pkg/errors"
	"user-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	svc        user.Service
	translator *ErrorTranslator
	log        *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(svc user.Service, translator *ErrorTranslator, log *zap.Logger) *UserHandler {
	return &UserHandler{
		svc:        svc,
		translator: translator,
		log:        log,
	}
}

// Translator returns the error translator shared with the router and middleware.
func (h *UserHandler) Translator() *ErrorTranslator {
	return h.translator
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()

	var req user.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.translator.Abort(c, apperrors.NewMalformedRequestError(err))
		return
	}

	if violations := user.Validate(req); len(violations) > 0 {
		logger.WithContext(ctx, h.log).Info("create user rejected", zap.Int("violations", len(violations)))
		h.translator.Abort(c, apperrors.NewValidationError(violations))
		return
	}

	u, err := h.svc.Save(ctx, req).Await(ctx)
	if err != nil {
		h.translator.Abort(c, err)
		return
	}

	logger.WithContext(ctx, h.log).Info("user created", zap.String("id", u.ID))
	c.Status(http.StatusCreated)
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()

	u, err := h.svc.FindByID(ctx, c.Param("id")).Await(ctx)
	if err != nil {
		h.translator.Abort(c, err)
		return
	}

	resp, err := user.ToResponse(u)
	if err != nil {
		h.translator.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := async.Collect(h.svc.FindAll(ctx))
	if err != nil {
		h.translator.Abort(c, err)
		return
	}

	resp := make([]user.UserResponse, 0, len(users))
	for i := range users {
		r, err := user.ToResponse(&users[i])
		if err != nil {
			h.translator.Abort(c, err)
			return
		}
		resp = append(resp, r)
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateUser handles PATCH /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req user.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.translator.Abort(c, apperrors.NewMalformedRequestError(err))
		return
	}

	if violations := user.ValidatePartial(req); len(violations) > 0 {
		logger.WithContext(ctx, h.log).Info("update user rejected", zap.String("id", id), zap.Int("violations", len(violations)))
		h.translator.Abort(c, apperrors.NewValidationError(violations))
		return
	}

	u, err := h.svc.Update(ctx, id, req).Await(ctx)
	if err != nil {
		h.translator.Abort(c, err)
		return
	}

	resp, err := user.ToResponse(u)
	if err != nil {
		h.translator.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()

	u, err := h.svc.Delete(ctx, c.Param("id")).Await(ctx)
	if err != nil {
		h.translator.Abort(c, err)
		return
	}

	logger.WithContext(ctx, h.log).Info("user deleted", zap.String("id", u.ID))
	c.Status(http.StatusOK)
}
