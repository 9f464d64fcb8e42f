package models

import (
	"time"

	"kejani/internal/domain"
)

// Unit is a rentable apartment inside a property. TenantID is nullable and a
// tenant holds at most one unit at a time; the assignment paths in the unit
// repository enforce that transactionally, with the unique index on tenant_id
// as the storage-level backstop (NULLs are exempt from uniqueness on all
// three supported drivers).
type Unit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PropertyID  uint      `gorm:"not null;index:idx_unit_property_number,unique" json:"property_id"`
	UnitNumber  string    `gorm:"size:20;not null;index:idx_unit_property_number,unique" json:"unit_number"`
	TenantID    *uint     `gorm:"uniqueIndex:idx_unit_tenant" json:"tenant_id"`
	Bedrooms    int       `gorm:"default:1" json:"bedrooms"`
	Bathrooms   float64   `gorm:"default:1" json:"bathrooms"`
	RentCents   int64     `gorm:"not null" json:"rent_cents"`
	Status      string    `gorm:"size:20;not null;default:'available';index" json:"status"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Property Property `gorm:"foreignKey:PropertyID" json:"-"`
	Tenant   *User    `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

func (Unit) TableName() string {
	return "units"
}

func (u *Unit) Occupied() bool {
	return domain.UnitStatus(u.Status) == domain.UnitOccupied
}
