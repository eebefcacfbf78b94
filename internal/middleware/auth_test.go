package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"literacy_backend/internal/config"
	"literacy_backend/internal/model"
	"literacy_backend/internal/repository/memory"
	"literacy_backend/internal/service"
	"literacy_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

func token(t *testing.T, role model.UserRole, ttl time.Duration) string {
	t.Helper()
	tok, err := util.GenerateJWT("u1", role, testSecret, ttl)
	require.NoError(t, err)
	return "Bearer " + tok
}

func adminRouter() *gin.Engine {
	r := gin.New()
	cfg := &config.JWTConfig{Secret: testSecret}
	r.GET("/admin", AuthMiddleware(cfg), RoleMiddleware(model.Teacher), func(c *gin.Context) {
		c.String(http.StatusOK, util.GetUserFromContext(c).UserID)
	})
	r.GET("/open", OptionalAuth(cfg), func(c *gin.Context) {
		if u := util.GetUserFromContext(c); u != nil {
			c.String(http.StatusOK, string(u.Role))
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	return r
}

func TestAuthAndRole(t *testing.T) {
	r := adminRouter()
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no token", want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "expired", header: token(t, model.Admin, -time.Minute), want: http.StatusUnauthorized},
		{name: "student", header: token(t, model.Student, time.Hour), want: http.StatusForbidden},
		{name: "teacher", header: token(t, model.Teacher, time.Hour), want: http.StatusOK},
		{name: "admin passes every role", header: token(t, model.Admin, time.Hour), want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := adminRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, "anonymous", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", token(t, model.Teacher, time.Hour))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "teacher", w.Body.String())
}

type countingUsers struct {
	service.UserStore
	lookups int
}

func (c *countingUsers) FindByIDNumber(ctx context.Context, idNumber string) (*model.User, error) {
	c.lookups++
	return c.UserStore.FindByIDNumber(ctx, idNumber)
}

func TestResolutionMemoIsPerRequest(t *testing.T) {
	users := &countingUsers{UserStore: memory.NewUserRepository()}
	require.NoError(t, users.Create(context.Background(), &model.User{IDNumber: "2024-001", FirstName: "Juan", LastName: "Dela Cruz"}))
	identity := service.NewIdentityService(users, nil)

	r := gin.New()
	r.Use(ResolutionMemo())
	r.GET("/", func(c *gin.Context) {
		for i := 0; i < 3; i++ {
			if _, err := identity.ResolveStudentReference(c.Request.Context(), "2024-001"); err != nil {
				c.Status(http.StatusInternalServerError)
				return
			}
		}
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 2, users.lookups)
}
