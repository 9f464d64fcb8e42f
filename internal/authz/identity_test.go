package authz_test

import (
	"testing"

	"kejani/internal/authz"
	"kejani/internal/database"
	"kejani/internal/domain"
	"kejani/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, role domain.Role) *models.User {
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         string(role),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createProperty(t *testing.T, db *gorm.DB, landlordID uint, name string) *models.Property {
	p := &models.Property{Name: name, Address: name + " road", LandlordID: landlordID}
	require.NoError(t, db.Create(p).Error)
	return p
}

func createUnit(t *testing.T, db *gorm.DB, propertyID uint, number string, tenantID *uint) *models.Unit {
	u := &models.Unit{
		PropertyID: propertyID,
		UnitNumber: number,
		RentCents:  1500000,
		Status:     string(domain.UnitAvailable),
	}
	if tenantID != nil {
		u.TenantID = tenantID
		u.Status = string(domain.UnitOccupied)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func linkCaretaker(t *testing.T, db *gorm.DB, propertyID, userID uint) {
	require.NoError(t, db.Create(&models.PropertyCaretaker{PropertyID: propertyID, UserID: userID}).Error)
}

func TestResolveLandlord(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, "landlord", domain.RoleLandlord)
	other := createUser(t, db, "other", domain.RoleLandlord)
	p1 := createProperty(t, db, landlord.ID, "Sunrise")
	p2 := createProperty(t, db, landlord.ID, "Sunset")
	createProperty(t, db, other.ID, "Elsewhere")

	id, err := authz.NewResolver(db).Resolve(landlord.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleLandlord, id.Role)
	assert.ElementsMatch(t, []uint{p1.ID, p2.ID}, id.ManagedPropertyIDs)
	assert.Nil(t, id.AssignedUnitID)
}

func TestResolveCaretaker(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, "landlord", domain.RoleLandlord)
	caretaker := createUser(t, db, "caretaker", domain.RoleCaretaker)
	p1 := createProperty(t, db, landlord.ID, "Sunrise")
	createProperty(t, db, landlord.ID, "Sunset")
	linkCaretaker(t, db, p1.ID, caretaker.ID)

	id, err := authz.NewResolver(db).Resolve(caretaker.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{p1.ID}, id.ManagedPropertyIDs)
	assert.True(t, id.Manages(p1.ID))
	assert.False(t, id.Manages(p1.ID+100))
}

func TestResolveCaretakerWithoutProperties(t *testing.T) {
	db := setupTestDB(t)
	caretaker := createUser(t, db, "caretaker", domain.RoleCaretaker)

	id, err := authz.NewResolver(db).Resolve(caretaker.ID)
	require.NoError(t, err)
	assert.Empty(t, id.ManagedPropertyIDs)
}

func TestResolveTenant(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, "landlord", domain.RoleLandlord)
	tenant := createUser(t, db, "tenant", domain.RoleTenant)
	p := createProperty(t, db, landlord.ID, "Sunrise")
	unit := createUnit(t, db, p.ID, "A1", &tenant.ID)

	id, err := authz.NewResolver(db).Resolve(tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTenant, id.Role)
	require.NotNil(t, id.AssignedUnitID)
	assert.Equal(t, unit.ID, *id.AssignedUnitID)
	require.NotNil(t, id.AssignedPropertyID)
	assert.Equal(t, p.ID, *id.AssignedPropertyID)
	assert.Empty(t, id.ManagedPropertyIDs)
}

func TestResolveUnassignedTenant(t *testing.T) {
	db := setupTestDB(t)
	tenant := createUser(t, db, "tenant", domain.RoleTenant)

	id, err := authz.NewResolver(db).Resolve(tenant.ID)
	require.NoError(t, err)
	assert.Nil(t, id.AssignedUnitID)
	assert.Nil(t, id.AssignedPropertyID)
}

func TestResolveUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	_, err := authz.NewResolver(db).Resolve(9999)
	assert.ErrorIs(t, err, authz.ErrUnknownUser)
}

// The identity is recomputed per request: a caretaker linked to a property
// after their first request sees it on the next resolve.
func TestResolveReflectsCurrentLinks(t *testing.T) {
	db := setupTestDB(t)
	landlord := createUser(t, db, "landlord", domain.RoleLandlord)
	caretaker := createUser(t, db, "caretaker", domain.RoleCaretaker)
	p := createProperty(t, db, landlord.ID, "Sunrise")
	r := authz.NewResolver(db)

	id, err := r.Resolve(caretaker.ID)
	require.NoError(t, err)
	assert.Empty(t, id.ManagedPropertyIDs)

	linkCaretaker(t, db, p.ID, caretaker.ID)

	id, err = r.Resolve(caretaker.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{p.ID}, id.ManagedPropertyIDs)
}
