package authz

import "gorm.io/gorm"

// Row-level scopes. Repositories compose these into queries with db.Scopes()
// so every list and every lookup is filtered the same way. An identity with
// nothing in scope gets a predicate matching no rows, which is a valid result
// and never an error.

func matchNothing(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// PropertyScope restricts properties to those the identity may see:
// landlords their own, caretakers their linked set, tenants the single
// property their unit belongs to.
func PropertyScope(id *Identity) func(*gorm.DB) *gorm.DB {
	switch {
	case id.Role.IsLandlord():
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("properties.landlord_id = ?", id.UserID)
		}
	case id.Role.IsCaretaker():
		if len(id.ManagedPropertyIDs) == 0 {
			return matchNothing
		}
		ids := id.ManagedPropertyIDs
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("properties.id IN ?", ids)
		}
	case id.Role.IsTenant() && id.AssignedPropertyID != nil:
		pid := *id.AssignedPropertyID
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("properties.id = ?", pid)
		}
	}
	return matchNothing
}

// UnitScope restricts units: managers see units of managed properties,
// tenants see exactly their own unit.
func UnitScope(id *Identity) func(*gorm.DB) *gorm.DB {
	switch {
	case id.IsManager():
		if len(id.ManagedPropertyIDs) == 0 {
			return matchNothing
		}
		ids := id.ManagedPropertyIDs
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("units.property_id IN ?", ids)
		}
	case id.Role.IsTenant() && id.AssignedUnitID != nil:
		uid := *id.AssignedUnitID
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("units.id = ?", uid)
		}
	}
	return matchNothing
}

// PaymentScope restricts payments: managers see payments against units of
// managed properties (join), tenants only rows recorded for themselves.
// A tenant never sees another tenant's history on the same unit.
func PaymentScope(id *Identity) func(*gorm.DB) *gorm.DB {
	switch {
	case id.IsManager():
		if len(id.ManagedPropertyIDs) == 0 {
			return matchNothing
		}
		ids := id.ManagedPropertyIDs
		return func(db *gorm.DB) *gorm.DB {
			return db.Joins("JOIN units ON units.id = payments.unit_id").
				Where("units.property_id IN ?", ids)
		}
	case id.Role.IsTenant():
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("payments.tenant_id = ?", id.UserID)
		}
	}
	return matchNothing
}
