package authz

import (
	"errors"

	"kejani/internal/domain"
	"kejani/internal/models"

	"gorm.io/gorm"
)

// Identity is the per-request identity context: who the caller is, which
// properties they manage, and (for tenants) which unit they currently hold.
// It is resolved fresh on every request; caretaker links and tenant
// assignments change between requests and a stale context would leak rows.
type Identity struct {
	UserID             uint
	Role               domain.Role
	ManagedPropertyIDs []uint
	AssignedUnitID     *uint
	AssignedPropertyID *uint
}

func (id *Identity) Manages(propertyID uint) bool {
	for _, p := range id.ManagedPropertyIDs {
		if p == propertyID {
			return true
		}
	}
	return false
}

func (id *Identity) IsManager() bool {
	return id.Role == domain.RoleLandlord || id.Role == domain.RoleCaretaker
}

var ErrUnknownUser = errors.New("unknown user")

// Resolver builds Identity values from storage.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve loads the user's role and recomputes their managed and assigned
// sets. A caretaker linked to zero properties or an unassigned tenant gets an
// empty but valid identity.
func (r *Resolver) Resolve(userID uint) (*Identity, error) {
	var u models.User
	if err := r.db.Select("id", "role").First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	id := &Identity{UserID: u.ID, Role: domain.Role(u.Role)}
	switch id.Role {
	case domain.RoleLandlord:
		if err := r.db.Model(&models.Property{}).
			Where("landlord_id = ?", u.ID).
			Pluck("id", &id.ManagedPropertyIDs).Error; err != nil {
			return nil, err
		}
	case domain.RoleCaretaker:
		if err := r.db.Model(&models.PropertyCaretaker{}).
			Where("user_id = ?", u.ID).
			Pluck("property_id", &id.ManagedPropertyIDs).Error; err != nil {
			return nil, err
		}
	case domain.RoleTenant:
		var unit models.Unit
		err := r.db.Select("id", "property_id").
			Where("tenant_id = ?", u.ID).
			First(&unit).Error
		if err == nil {
			id.AssignedUnitID = &unit.ID
			id.AssignedPropertyID = &unit.PropertyID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	default:
		return nil, ErrUnknownUser
	}
	return id, nil
}
