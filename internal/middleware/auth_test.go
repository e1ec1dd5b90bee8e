package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"coffeestock-backend/internal/database"
	"coffeestock-backend/internal/models"
	"coffeestock-backend/internal/utils"
	"coffeestock-backend/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestConfig() {
	os.Setenv("JWT_SECRET", "test_secret")
}

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{})
	if err := db.AutoMigrate(&models.User{}); err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
	logger.Log = zap.NewNop()
}

func setupMockRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return mr
}

func seedUser(email, role string, active bool) models.User {
	u := models.User{
		Email:    email,
		Name:     email,
		Password: "hashedpassword",
		Role:     role,
		IsActive: active,
	}
	database.DB.Create(&u)
	return u
}

func protectedRouter(handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/protected", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	setupTestConfig()
	setupTestDB()
	mr := setupMockRedis()
	defer mr.Close()

	gin.SetMode(gin.TestMode)

	active := seedUser("active@example.com", models.RoleUser, true)
	inactive := seedUser("inactive@example.com", models.RoleUser, false)

	activeToken, _ := utils.GenerateSessionToken(active.ID, active.Role, active.Email)
	inactiveToken, _ := utils.GenerateSessionToken(inactive.ID, inactive.Role, inactive.Email)
	orphanToken, _ := utils.GenerateSessionToken(9999, models.RoleUser, "gone@example.com")
	actionToken, _ := utils.GenerateActionToken(active.ID, active.Email)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Missing Authorization Header",
			token:          "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "authorization header is required",
		},
		{
			name:           "Invalid Token Signature",
			token:          activeToken + "broken",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid or expired token",
		},
		{
			name:           "Action Token Rejected At Session Site",
			token:          actionToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid or expired token",
		},
		{
			name:           "Subject Row Missing",
			token:          orphanToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "User not found",
		},
		{
			name:           "Deactivated User Rejected Immediately",
			token:          inactiveToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "deactivated",
		},
		{
			name:           "Valid Session Token",
			token:          activeToken,
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(protectedRouter(AuthMiddleware()), tt.token)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestAuthMiddlewareDenylistedToken(t *testing.T) {
	setupTestConfig()
	setupTestDB()
	mr := setupMockRedis()
	defer mr.Close()

	gin.SetMode(gin.TestMode)

	u := seedUser("logout@example.com", models.RoleUser, true)
	token, _ := utils.GenerateSessionToken(u.ID, u.Role, u.Email)

	database.RedisClient.Set(database.Ctx, "denylist:"+token, 1, time.Hour)

	w := doRequest(protectedRouter(AuthMiddleware()), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestAuthMiddlewareDeactivationInvalidatesLiveSession(t *testing.T) {
	setupTestConfig()
	setupTestDB()
	mr := setupMockRedis()
	defer mr.Close()

	gin.SetMode(gin.TestMode)

	u := seedUser("soon-gone@example.com", models.RoleUser, true)
	token, _ := utils.GenerateSessionToken(u.ID, u.Role, u.Email)

	r := protectedRouter(AuthMiddleware())

	w := doRequest(r, token)
	assert.Equal(t, http.StatusOK, w.Code)

	// Deactivate between requests. The same unexpired token fails on the
	// very next request, no grace period.
	database.DB.Model(&models.User{}).Where("id = ?", u.ID).Update("is_active", false)

	w = doRequest(r, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthMiddlewareRoleGate(t *testing.T) {
	setupTestConfig()
	setupTestDB()
	mr := setupMockRedis()
	defer mr.Close()

	gin.SetMode(gin.TestMode)

	admin := seedUser("admin@example.com", models.RoleAdmin, true)
	regular := seedUser("user@example.com", models.RoleUser, true)

	adminToken, _ := utils.GenerateSessionToken(admin.ID, admin.Role, admin.Email)
	userToken, _ := utils.GenerateSessionToken(regular.ID, regular.Role, regular.Email)

	r := protectedRouter(AdminAuthMiddleware())

	// Authenticated but not admin is 403, not 401.
	w := doRequest(r, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	// Unauthenticated stays 401.
	w = doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthMiddlewareRoleFromLiveRow(t *testing.T) {
	setupTestConfig()
	setupTestDB()
	mr := setupMockRedis()
	defer mr.Close()

	gin.SetMode(gin.TestMode)

	admin := seedUser("demoted@example.com", models.RoleAdmin, true)
	token, _ := utils.GenerateSessionToken(admin.ID, admin.Role, admin.Email)

	r := protectedRouter(AdminAuthMiddleware())

	w := doRequest(r, token)
	assert.Equal(t, http.StatusOK, w.Code)

	// Demotion takes effect even though the token still says admin.
	database.DB.Model(&models.User{}).Where("id = ?", admin.ID).Update("role", models.RoleUser)

	w = doRequest(r, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
