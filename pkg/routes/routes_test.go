package pkg

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ResourceShare/internal/auth"
	"ResourceShare/internal/config"
	"ResourceShare/internal/meta"
	"ResourceShare/internal/notification"
	"ResourceShare/internal/resource"
	"ResourceShare/internal/store"
	"ResourceShare/pkg/middleware"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newApp(t *testing.T, gateway store.Gateway) *echo.Echo {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{Server: config.ServerConfig{AllowOrigins: []string{"*"}}}
	hub := NewHub(cfg, logger)
	t.Cleanup(hub.Close)

	notifications := notification.NewNotificationService(notification.NewNotificationRepository(gateway), NewBroadcaster(hub), logger)
	users := auth.NewUserService(auth.NewUserRepository(gateway), logger)
	resources := resource.NewResourceService(resource.NewResourceRepository(gateway), NewPublisher(notifications), logger)

	e := echo.New()
	middleware.SetupMiddleware(e, cfg, logger)
	RegisterRoutes(e,
		auth.NewAuthHandler(users),
		resource.NewResourceHandler(resources),
		notification.NewNotificationHandler(notifications, hub, cfg),
		meta.NewMetaHandler(gateway, hub),
	)
	return e
}

func newMemoryApp(t *testing.T) *echo.Echo {
	t.Helper()
	gateway := store.NewMemoryGateway()
	require.NoError(t, gateway.EnsureIndexes(context.Background(), store.DefaultIndexes...))
	return newApp(t, gateway)
}

func do(t *testing.T, e *echo.Echo, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func ids(resources []resource.Resource) []string {
	out := make([]string, 0, len(resources))
	for _, r := range resources {
		out = append(out, r.ID.Hex())
	}
	return out
}

func TestModerationFlow(t *testing.T) {
	t.Parallel()
	e := newMemoryApp(t)

	rec := do(t, e, http.MethodPost, "/resources", map[string]interface{}{
		"title":       "Notes",
		"semester":    3,
		"subject":     "OS",
		"uploaded_by": "a@x.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeInto[resource.Resource](t, rec)
	assert.Equal(t, resource.StatusPending, created.Status)
	assert.Equal(t, []string{}, created.Tags)
	id := created.ID.Hex()

	rec = do(t, e, http.MethodGet, "/resources/pending?semester=3&subject=OS", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, ids(decodeInto[[]resource.Resource](t, rec)), id)

	rec = do(t, e, http.MethodGet, "/resources?semester=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeInto[[]resource.Resource](t, rec), "pending uploads are hidden from the default listing")

	rec = do(t, e, http.MethodPost, "/resources/"+id+"/approve", map[string]string{"approved_by": "t@x.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decodeInto[resource.Resource](t, rec)
	assert.Equal(t, resource.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "t@x.com", *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	rec = do(t, e, http.MethodGet, "/resources?status=approved&semester=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, ids(decodeInto[[]resource.Resource](t, rec)), id)

	rec = do(t, e, http.MethodGet, "/resources/pending?semester=3&subject=OS", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, ids(decodeInto[[]resource.Resource](t, rec)), id)

	rec = do(t, e, http.MethodGet, "/resources?status=", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeInto[[]resource.Resource](t, rec), 1)

	rec = do(t, e, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decodeInto[[]notification.Notification](t, rec)
	require.Len(t, feed, 2)
	assert.Equal(t, notification.TypeResourceApproved, feed[0].Type)
	assert.Equal(t, "Resource approved: Notes", feed[0].Message)
	assert.Equal(t, notification.TypeResourceCreated, feed[1].Type)
}

func TestLoginUpsert(t *testing.T) {
	t.Parallel()
	e := newMemoryApp(t)

	rec := do(t, e, http.MethodPost, "/auth/login", map[string]interface{}{
		"name": "Asha", "email": "asha@x.com", "role": "student", "semester": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeInto[auth.User](t, rec)
	assert.Equal(t, auth.DefaultDepartment, first.Department)
	assert.True(t, first.IsActive)

	rec = do(t, e, http.MethodPost, "/auth/login", map[string]interface{}{
		"name": "Asha K", "email": "asha@x.com", "role": "student", "semester": 4,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := decodeInto[auth.User](t, rec)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Asha K", second.Name)
	require.NotNil(t, second.Semester)
	assert.Equal(t, 4, *second.Semester)
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()
	e := newMemoryApp(t)

	tests := []struct {
		name       string
		method     string
		target     string
		body       interface{}
		wantStatus int
		wantField  string
	}{
		{
			name: "approve malformed id", method: http.MethodPost, target: "/resources/not-an-id/approve",
			body: map[string]string{"approved_by": "t@x.com"}, wantStatus: http.StatusBadRequest,
		},
		{
			name: "approve unknown id", method: http.MethodPost, target: "/resources/" + primitive.NewObjectID().Hex() + "/approve",
			body: map[string]string{"approved_by": "t@x.com"}, wantStatus: http.StatusNotFound,
		},
		{
			name: "approve without approver", method: http.MethodPost, target: "/resources/" + primitive.NewObjectID().Hex() + "/approve",
			body: map[string]string{}, wantStatus: http.StatusUnprocessableEntity, wantField: "approved_by",
		},
		{
			name: "upload missing title", method: http.MethodPost, target: "/resources",
			body:       map[string]interface{}{"semester": 3, "subject": "OS", "uploaded_by": "a@x.com"},
			wantStatus: http.StatusUnprocessableEntity, wantField: "title",
		},
		{
			name: "login unknown role", method: http.MethodPost, target: "/auth/login",
			body:       map[string]string{"name": "A", "email": "a@x.com", "role": "guest"},
			wantStatus: http.StatusUnprocessableEntity, wantField: "role",
		},
		{
			name: "non-numeric semester", method: http.MethodGet, target: "/resources?semester=third",
			wantStatus: http.StatusUnprocessableEntity, wantField: "semester",
		},
		{
			name: "unknown route", method: http.MethodGet, target: "/nope",
			wantStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, tt.method, tt.target, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			body := decodeInto[middleware.ErrorResponse](t, rec)
			assert.NotEmpty(t, body.Error)
			if tt.wantField != "" {
				assert.Contains(t, body.Fields, tt.wantField)
			}
		})
	}
}

func TestStoreUnavailable(t *testing.T) {
	t.Parallel()
	e := newApp(t, store.NewMongoGateway(nil))

	for _, target := range []string{"/resources", "/resources/pending", "/notifications"} {
		rec := do(t, e, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
	rec := do(t, e, http.MethodPost, "/auth/login", map[string]string{"name": "A", "email": "a@x.com", "role": "teacher"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, e, http.MethodGet, "/test", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	check := decodeInto[meta.SelfCheck](t, rec)
	assert.Equal(t, "running", check.Backend)
	assert.Equal(t, "not available", check.Database)
	assert.Equal(t, "not connected", check.ConnectionStatus)
	assert.Empty(t, check.Collections)
}

func TestMetaEndpoints(t *testing.T) {
	t.Parallel()
	e := newMemoryApp(t)

	rec := do(t, e, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, meta.ServiceName, decodeInto[map[string]string](t, rec)["message"])

	rec = do(t, e, http.MethodGet, "/api/hello", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeInto[map[string]string](t, rec)["message"])

	rec = do(t, e, http.MethodGet, "/schema", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"models":[{"name":"user"},{"name":"resource"},{"name":"notification"}]}`, rec.Body.String())

	do(t, e, http.MethodPost, "/auth/login", map[string]string{"name": "A", "email": "a@x.com", "role": "teacher"})
	rec = do(t, e, http.MethodGet, "/test", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	check := decodeInto[meta.SelfCheck](t, rec)
	assert.Equal(t, "connected and working", check.Database)
	assert.Equal(t, "connected", check.ConnectionStatus)
	assert.Contains(t, check.Collections, store.UserCollection)
	assert.Zero(t, check.Subscribers)
}

func TestCORS(t *testing.T) {
	t.Parallel()
	e := newMemoryApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/resources", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
