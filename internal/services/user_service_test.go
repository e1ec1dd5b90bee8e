package services

import (
	"testing"

	"coffeestock-backend/internal/database"
	"coffeestock-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateUserDuplicateEmail(t *testing.T) {
	setupTestDB()

	_, err := CreateUser("dup@example.com", "First", "password123", models.RoleUser, nil, false)
	assert.NoError(t, err)

	_, err = CreateUser("dup@example.com", "Second", "password123", models.RoleUser, nil, false)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	setupTestDB()

	_, err := CreateUser("taken@example.com", "A", "password123", models.RoleUser, nil, false)
	assert.NoError(t, err)
	b, err := CreateUser("b@example.com", "B", "password123", models.RoleUser, nil, false)
	assert.NoError(t, err)

	_, err = UpdateUser(b.ID, map[string]interface{}{"email": "taken@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateUserSetsAndClearsCap(t *testing.T) {
	setupTestDB()

	u, err := CreateUser("cap@example.com", "Cap", "password123", models.RoleUser, nil, false)
	assert.NoError(t, err)

	updated, err := UpdateUser(u.ID, map[string]interface{}{"max_coffees": 4})
	assert.NoError(t, err)
	assert.NotNil(t, updated.MaxCoffees)
	assert.Equal(t, 4, *updated.MaxCoffees)

	updated, err = UpdateUser(u.ID, map[string]interface{}{"max_coffees": nil})
	assert.NoError(t, err)
	assert.Nil(t, updated.MaxCoffees)
}

func TestDeleteUserCascadesLogs(t *testing.T) {
	setupTestDB()
	seedStock(10, 7, 0)

	u := seedUser("leaver@example.com", nil)
	admin := seedUser("boss@example.com", nil)
	seedLog(u.ID, 2)
	seedLog(u.ID, 1)

	err := DeleteUser(u.ID, admin.ID)
	assert.NoError(t, err)

	var logCount int64
	database.DB.Model(&models.CoffeeLog{}).Where("user_id = ?", u.ID).Count(&logCount)
	assert.Equal(t, int64(0), logCount)

	// User deletion cascades without re-crediting; the divergence lands
	// in manual_delta.
	assert.Equal(t, 7, currentStock(t))
	_, derived, err := StockStatus()
	assert.NoError(t, err)
	assert.Equal(t, -3, derived.ManualDelta)
}

func TestDeleteUserSelfDeleteForbidden(t *testing.T) {
	setupTestDB()

	admin := seedUser("self@example.com", nil)

	err := DeleteUser(admin.ID, admin.ID)
	assert.ErrorIs(t, err, ErrSelfDelete)

	var count int64
	database.DB.Model(&models.User{}).Where("id = ?", admin.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestFindUserByIDUsesCache(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	u := seedUser("cached@example.com", nil)

	first, err := FindUserByID(u.ID)
	assert.NoError(t, err)
	assert.Equal(t, u.Email, first.Email)

	// Raw DB change is invisible through the cache...
	database.DB.Model(&models.User{}).Where("id = ?", u.ID).Update("name", "changed")
	second, err := FindUserByID(u.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)

	// ...but the session resolver always sees the live row.
	fresh, err := ResolveSessionUser(u.ID)
	assert.NoError(t, err)
	assert.Equal(t, "changed", fresh.Name)
}
