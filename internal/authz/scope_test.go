package authz_test

import (
	"testing"
	"time"

	"kejani/internal/authz"
	"kejani/internal/domain"
	"kejani/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type scopeWorld struct {
	db        *gorm.DB
	landlord1 *models.User
	landlord2 *models.User
	caretaker *models.User
	idle      *models.User // caretaker linked to nothing
	tenant1   *models.User
	tenant2   *models.User
	drifter   *models.User // tenant with no unit
	p1, p2    *models.Property
	p3        *models.Property
	u11, u12  *models.Unit
	u31       *models.Unit
}

func buildScopeWorld(t *testing.T) *scopeWorld {
	db := setupTestDB(t)
	w := &scopeWorld{db: db}
	w.landlord1 = createUser(t, db, "landlord1", domain.RoleLandlord)
	w.landlord2 = createUser(t, db, "landlord2", domain.RoleLandlord)
	w.caretaker = createUser(t, db, "caretaker", domain.RoleCaretaker)
	w.idle = createUser(t, db, "idle", domain.RoleCaretaker)
	w.tenant1 = createUser(t, db, "tenant1", domain.RoleTenant)
	w.tenant2 = createUser(t, db, "tenant2", domain.RoleTenant)
	w.drifter = createUser(t, db, "drifter", domain.RoleTenant)
	w.p1 = createProperty(t, db, w.landlord1.ID, "Sunrise")
	w.p2 = createProperty(t, db, w.landlord1.ID, "Sunset")
	w.p3 = createProperty(t, db, w.landlord2.ID, "Elsewhere")
	linkCaretaker(t, db, w.p1.ID, w.caretaker.ID)
	w.u11 = createUnit(t, db, w.p1.ID, "A1", &w.tenant1.ID)
	w.u12 = createUnit(t, db, w.p1.ID, "A2", nil)
	w.u31 = createUnit(t, db, w.p3.ID, "B1", &w.tenant2.ID)
	return w
}

func resolve(t *testing.T, db *gorm.DB, userID uint) *authz.Identity {
	id, err := authz.NewResolver(db).Resolve(userID)
	require.NoError(t, err)
	return id
}

func propertyIDs(t *testing.T, db *gorm.DB, id *authz.Identity) []uint {
	var out []uint
	require.NoError(t, db.Model(&models.Property{}).Scopes(authz.PropertyScope(id)).Pluck("properties.id", &out).Error)
	return out
}

func unitIDs(t *testing.T, db *gorm.DB, id *authz.Identity) []uint {
	var out []uint
	require.NoError(t, db.Model(&models.Unit{}).Scopes(authz.UnitScope(id)).Pluck("units.id", &out).Error)
	return out
}

func paymentIDs(t *testing.T, db *gorm.DB, id *authz.Identity) []uint {
	var out []uint
	require.NoError(t, db.Model(&models.Payment{}).Scopes(authz.PaymentScope(id)).Pluck("payments.id", &out).Error)
	return out
}

func TestPropertyScope(t *testing.T) {
	w := buildScopeWorld(t)

	assert.ElementsMatch(t, []uint{w.p1.ID, w.p2.ID}, propertyIDs(t, w.db, resolve(t, w.db, w.landlord1.ID)))
	assert.ElementsMatch(t, []uint{w.p3.ID}, propertyIDs(t, w.db, resolve(t, w.db, w.landlord2.ID)))
	assert.ElementsMatch(t, []uint{w.p1.ID}, propertyIDs(t, w.db, resolve(t, w.db, w.caretaker.ID)))
	assert.Empty(t, propertyIDs(t, w.db, resolve(t, w.db, w.idle.ID)))
	assert.ElementsMatch(t, []uint{w.p1.ID}, propertyIDs(t, w.db, resolve(t, w.db, w.tenant1.ID)))
	assert.Empty(t, propertyIDs(t, w.db, resolve(t, w.db, w.drifter.ID)))
}

func TestUnitScope(t *testing.T) {
	w := buildScopeWorld(t)

	assert.ElementsMatch(t, []uint{w.u11.ID, w.u12.ID}, unitIDs(t, w.db, resolve(t, w.db, w.landlord1.ID)))
	assert.ElementsMatch(t, []uint{w.u11.ID, w.u12.ID}, unitIDs(t, w.db, resolve(t, w.db, w.caretaker.ID)))
	assert.Empty(t, unitIDs(t, w.db, resolve(t, w.db, w.idle.ID)))
	assert.ElementsMatch(t, []uint{w.u11.ID}, unitIDs(t, w.db, resolve(t, w.db, w.tenant1.ID)))
	assert.Empty(t, unitIDs(t, w.db, resolve(t, w.db, w.drifter.ID)))
}

func TestPaymentScope(t *testing.T) {
	w := buildScopeWorld(t)
	pay := func(unitID, tenantID uint, ref string) uint {
		p := &models.Payment{
			UnitID:      unitID,
			TenantID:    tenantID,
			AmountCents: 1500000,
			PaymentType: domain.PaymentTypeRent,
			Method:      domain.PaymentMethodCash,
			Status:      domain.PaymentStatusCompleted,
			Reference:   ref,
			RecordedBy:  w.landlord1.ID,
			PaidAt:      time.Now(),
		}
		require.NoError(t, w.db.Create(p).Error)
		return p.ID
	}
	mine := pay(w.u11.ID, w.tenant1.ID, "ref-1")
	theirs := pay(w.u31.ID, w.tenant2.ID, "ref-2")
	// Previous occupant of the same unit; tenant1 must not see it.
	old := pay(w.u11.ID, w.drifter.ID, "ref-3")

	assert.ElementsMatch(t, []uint{mine, old}, paymentIDs(t, w.db, resolve(t, w.db, w.landlord1.ID)))
	assert.ElementsMatch(t, []uint{mine, old}, paymentIDs(t, w.db, resolve(t, w.db, w.caretaker.ID)))
	assert.Empty(t, paymentIDs(t, w.db, resolve(t, w.db, w.idle.ID)))
	assert.ElementsMatch(t, []uint{mine}, paymentIDs(t, w.db, resolve(t, w.db, w.tenant1.ID)))
	assert.ElementsMatch(t, []uint{theirs}, paymentIDs(t, w.db, resolve(t, w.db, w.tenant2.ID)))
	assert.ElementsMatch(t, []uint{old}, paymentIDs(t, w.db, resolve(t, w.db, w.drifter.ID)))
}

// A property outside the caller's scope is indistinguishable from a missing
// one: the scoped lookup comes back empty either way.
func TestScopeHidesExistence(t *testing.T) {
	w := buildScopeWorld(t)
	id := resolve(t, w.db, w.caretaker.ID)

	var count int64
	require.NoError(t, w.db.Model(&models.Property{}).Scopes(authz.PropertyScope(id)).
		Where("properties.id = ?", w.p3.ID).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, w.db.Model(&models.Property{}).Scopes(authz.PropertyScope(id)).
		Where("properties.id = ?", 99999).Count(&count).Error)
	assert.Zero(t, count)
}
