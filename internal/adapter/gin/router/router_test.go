package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"user-service/internal/adapter/cache"
	"user-service/internal/adapter/db/postgres"
	"user-service/internal/adapter/gin/handler"
	grpcadapter "user-service/internal/adapter/grpc"
	grpcmiddleware "user-service/internal/adapter/grpc/middleware"
	"user-service/internal/adapter/repository/cached"
	usecase "user-service/internal/usecase/user"
	"user-service/pkg/logger"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	mr     *miniredis.Miniredis
}

func setupRouter(t *testing.T) *testEnv {
	return setupRouterWithLimit(t, grpcmiddleware.RateLimiterConfig{
		RequestsPerSecond: 100,
		BurstCapacity:     100,
		Enabled:           true,
	})
}

func setupRouterWithLimit(t *testing.T, limit grpcmiddleware.RateLimiterConfig) *testEnv {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&postgres.UserSchema{}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := cached.NewCachedUserRepository(
		postgres.NewUserRepoPG(db, log),
		cache.NewRedisUserCache(client, time.Minute, log),
		log,
	)
	svc := usecase.New(repo, log)
	h := handler.NewUserHandler(svc, handler.NewErrorTranslator(log), log)

	limiter := grpcmiddleware.NewRateLimiter(client, limit, log)

	health := grpcadapter.NewHealthServer(map[string]grpcadapter.Checker{
		"database": func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
		"redis":    func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}, log)

	return &testEnv{
		router: SetupRouter(h, limiter, health, log),
		db:     db,
		mr:     mr,
	}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createUser(t *testing.T, name, email, password string) usecase.UserResponse {
	t.Helper()
	body, err := json.Marshal(map[string]string{"name": name, "email": email, "password": password})
	require.NoError(t, err)

	w := e.do(http.MethodPost, "/users", string(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var list []usecase.UserResponse
	require.NoError(t, json.Unmarshal(e.do(http.MethodGet, "/users", "").Body.Bytes(), &list))
	for _, u := range list {
		if u.Email == email {
			return u
		}
	}
	t.Fatalf("created user %s not listed", email)
	return usecase.UserResponse{}
}

func TestListUsers_EmptyStore(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/users", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateUser_LeadingSpaceInName(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/users", `{"name":" Mariazinha","email":"maria@mail.com","password":"123"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body handler.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/users", body.Path)
	assert.Equal(t, http.StatusBadRequest, body.Status)
	assert.Equal(t, "Validation Error", body.Error)
	assert.Equal(t, "Error on validation attributes", body.Message)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "name", body.Errors[0].FieldName)
	assert.Equal(t, "field cannot have blank spaces at the end or the begin", body.Errors[0].Message)

	var count int64
	require.NoError(t, env.db.Model(&postgres.UserSchema{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUserLifecycle(t *testing.T) {
	env := setupRouter(t)

	created := env.createUser(t, "Maria", "maria@mail.com", "123")
	assert.NotEmpty(t, created.ID)

	w := env.do(http.MethodGet, "/users/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+created.ID+`","name":"Maria","email":"maria@mail.com","password":"123"}`, w.Body.String())
	assert.True(t, env.mr.Exists(cache.CacheKey(created.ID)), "read populates the cache")

	w = env.do(http.MethodPatch, "/users/"+created.ID, `{"name":"Mariazinha"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated usecase.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, usecase.UserResponse{ID: created.ID, Name: "Mariazinha", Email: "maria@mail.com", Password: "123"}, updated)
	assert.False(t, env.mr.Exists(cache.CacheKey(created.ID)), "update invalidates the cache")

	w = env.do(http.MethodGet, "/users/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mariazinha")

	w = env.do(http.MethodDelete, "/users/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = env.do(http.MethodGet, "/users/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Object not found. Id: "+created.ID+", Type: User")
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	env := setupRouter(t)
	env.createUser(t, "Maria", "maria@mail.com", "123")

	w := env.do(http.MethodPost, "/users", `{"name":"Joana","email":"maria@mail.com","password":"456"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body handler.StandardError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Bad Request", body.Error)
	assert.Equal(t, "E-mail already exists.", body.Message)
	assert.Equal(t, "/users", body.Path)
}

func TestUpdateUser_DuplicateEmail(t *testing.T) {
	env := setupRouter(t)
	env.createUser(t, "Maria", "maria@mail.com", "123")
	joana := env.createUser(t, "Joana", "joana@mail.com", "456")

	w := env.do(http.MethodPatch, "/users/"+joana.ID, `{"email":"maria@mail.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "E-mail already exists.")
}

func TestMissingUser(t *testing.T) {
	env := setupRouter(t)

	tests := []struct {
		method string
		body   string
	}{
		{method: http.MethodGet},
		{method: http.MethodPatch, body: `{"name":"Mariazinha"}`},
		{method: http.MethodDelete},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := env.do(tt.method, "/users/does-not-exist", tt.body)

			assert.Equal(t, http.StatusNotFound, w.Code)
			var body handler.StandardError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Not Found", body.Error)
			assert.Equal(t, "Object not found. Id: does-not-exist, Type: User", body.Message)
		})
	}
}

func TestRequestID_Echoed(t *testing.T) {
	env := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set(logger.RequestIDHeader, "trace-me")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, "trace-me", w.Header().Get(logger.RequestIDHeader))
}

func TestOperationalRoutes(t *testing.T) {
	env := setupRouter(t)
	env.do(http.MethodGet, "/users", "")

	w := env.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = env.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w = env.do(http.MethodGet, SwaggerDocPath, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, json.Valid(w.Body.Bytes()))

	w = env.do(http.MethodGet, "/swagger/index.html", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth_RedisDown(t *testing.T) {
	env := setupRouter(t)
	env.mr.Close()

	w := env.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body struct {
		Status string   `json:"status"`
		Failed []string `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, []string{"redis"}, body.Failed)
}

func decodeStandardError(t *testing.T, w *httptest.ResponseRecorder) handler.StandardError {
	t.Helper()
	var body handler.StandardError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestUnmatchedRequests_UseErrorEnvelope(t *testing.T) {
	env := setupRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantError  string
		wantMsg    string
	}{
		{
			name:       "unknown path",
			method:     http.MethodGet,
			path:       "/users/a/b",
			wantStatus: http.StatusNotFound,
			wantError:  "Not Found",
			wantMsg:    "No handler found for GET /users/a/b",
		},
		{
			name:       "unsupported method",
			method:     http.MethodPut,
			path:       "/users/abc",
			wantStatus: http.StatusMethodNotAllowed,
			wantError:  "Method Not Allowed",
			wantMsg:    "Request method 'PUT' is not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.method, tt.path, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeStandardError(t, w)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Equal(t, tt.path, body.Path)
			assert.False(t, body.Timestamp.IsZero())
		})
	}
}

func TestRateLimited_UsesErrorEnvelope(t *testing.T) {
	env := setupRouterWithLimit(t, grpcmiddleware.RateLimiterConfig{
		RequestsPerSecond: 0.01,
		BurstCapacity:     1,
		Enabled:           true,
	})

	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/users", "").Code)

	w := env.do(http.MethodGet, "/users", "")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decodeStandardError(t, w)
	assert.Equal(t, http.StatusTooManyRequests, body.Status)
	assert.Equal(t, "Too Many Requests", body.Error)
	assert.Equal(t, "Rate limit exceeded: 0.01 requests/second (burst capacity: 1)", body.Message)
	assert.Equal(t, "/users", body.Path)
	assert.False(t, body.Timestamp.IsZero())
}
