package coffee_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"coffeestock-backend/internal/api/v1/coffee"
	"coffeestock-backend/internal/database"
	"coffeestock-backend/internal/models"
	"coffeestock-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.StockSettings{}, &models.CoffeeLog{})
	if err := db.AutoMigrate(&models.User{}, &models.StockSettings{}, &models.CoffeeLog{}); err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
	logger.Log = zap.NewNop()
}

func seedStock(initial, current, min int) {
	database.DB.Create(&models.StockSettings{
		ID:           models.StockSettingsID,
		InitialStock: initial,
		CurrentStock: current,
		MinStock:     min,
	})
}

func seedUser(email, role string, maxCoffees *int) models.User {
	u := models.User{
		Email:      email,
		Name:       email,
		Password:   "hashedpassword",
		Role:       role,
		IsActive:   true,
		MaxCoffees: maxCoffees,
	}
	database.DB.Create(&u)
	return u
}

// asUser injects the authenticated user the way AuthMiddleware would.
func asUser(u models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", u)
		c.Next()
	}
}

func TestConsumeHandler(t *testing.T) {
	setupTestDB()
	gin.SetMode(gin.TestMode)

	seedStock(2, 2, 0)
	u := seedUser("drinker@example.com", models.RoleUser, nil)

	r := gin.New()
	r.POST("/coffee/consume", asUser(u), coffee.Consume)

	consume := func() *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPost, "/coffee/consume", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := consume()
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data coffee.ConsumeResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Delta)
	assert.Equal(t, 1, resp.Data.Stock.CurrentStock)

	w = consume()
	assert.Equal(t, http.StatusOK, w.Code)

	// Exhausted stock is a conflict, not a 500.
	w = consume()
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Stock exhausted")
}

func TestConsumeHandlerChunkedBodyValidated(t *testing.T) {
	setupTestDB()
	gin.SetMode(gin.TestMode)

	seedStock(5, 5, 0)
	u := seedUser("chunky@example.com", models.RoleUser, nil)

	r := gin.New()
	r.POST("/coffee/consume", asUser(u), coffee.Consume)

	// Chunked transfer reports no content length; the body must still be
	// bound and validated rather than silently treated as absent.
	req, _ := http.NewRequest(http.MethodPost, "/coffee/consume", strings.NewReader(`{"delta":-2}`))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var logCount int64
	database.DB.Model(&models.CoffeeLog{}).Count(&logCount)
	assert.Equal(t, int64(0), logCount)

	database.DB.Model(&models.CoffeeLog{}).Count(&logCount)
	assert.Equal(t, int64(2), logCount)
}

func TestConsumeHandlerCapConflict(t *testing.T) {
	setupTestDB()
	gin.SetMode(gin.TestMode)

	seedStock(100, 100, 0)
	limit := 1
	u := seedUser("capped@example.com", models.RoleUser, &limit)

	r := gin.New()
	r.POST("/coffee/consume", asUser(u), coffee.Consume)

	req, _ := http.NewRequest(http.MethodPost, "/coffee/consume", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest(http.MethodPost, "/coffee/consume", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "cap")
}

func TestStatusHandler(t *testing.T) {
	setupTestDB()
	gin.SetMode(gin.TestMode)

	seedStock(10, 12, 3)
	u := seedUser("viewer@example.com", models.RoleUser, nil)
	database.DB.Create(&models.CoffeeLog{UserID: u.ID, Delta: 4, ConsumedAt: time.Now().UTC()})

	r := gin.New()
	r.GET("/coffee/status", asUser(u), coffee.Status)

	req, _ := http.NewRequest(http.MethodGet, "/coffee/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data coffee.StatusResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.Data.CurrentStock)
	assert.Equal(t, 4, resp.Data.ConsumedTotal)
	assert.Equal(t, 6, resp.Data.ExpectedCurrent)
	assert.Equal(t, 6, resp.Data.ManualDelta)
	assert.False(t, resp.Data.Low)
}

func TestHistoryHandlerScoping(t *testing.T) {
	setupTestDB()
	gin.SetMode(gin.TestMode)

	seedStock(10, 10, 0)
	alice := seedUser("alice@example.com", models.RoleUser, nil)
	bob := seedUser("bob@example.com", models.RoleUser, nil)
	admin := seedUser("admin@example.com", models.RoleAdmin, nil)

	database.DB.Create(&models.CoffeeLog{UserID: alice.ID, Delta: 1, ConsumedAt: time.Now().UTC()})
	database.DB.Create(&models.CoffeeLog{UserID: bob.ID, Delta: 1, ConsumedAt: time.Now().UTC()})

	fetch := func(u models.User, query string) coffee.HistoryResponse {
		r := gin.New()
		r.GET("/coffee/history", asUser(u), coffee.History)

		req, _ := http.NewRequest(http.MethodGet, "/coffee/history"+query, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data coffee.HistoryResponse `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Data
	}

	// Non-admin is always self-scoped, even with mine=0.
	got := fetch(alice, "?mine=0")
	assert.Equal(t, int64(1), got.Total)
	assert.Equal(t, alice.ID, got.Entries[0].UserID)

	// Admin defaults to self but can widen.
	got = fetch(admin, "")
	assert.Equal(t, int64(0), got.Total)
	got = fetch(admin, "?mine=0")
	assert.Equal(t, int64(2), got.Total)
}
