package models

import (
	"time"

	"gorm.io/gorm"
)

// Property is a building owned by exactly one landlord. Ownership is set at
// creation and never reassigned. Caretakers are linked through
// property_caretakers and may be changed by the owning landlord only.
type Property struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Address     string         `gorm:"type:text" json:"address"`
	Description string         `gorm:"type:text" json:"description"`
	LandlordID  uint           `gorm:"not null;index" json:"landlord_id"`
	TotalUnits  int            `gorm:"default:0" json:"total_units"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Landlord User   `gorm:"foreignKey:LandlordID" json:"-"`
	Units    []Unit `gorm:"foreignKey:PropertyID" json:"units,omitempty"`
}

func (Property) TableName() string {
	return "properties"
}

// PropertyCaretaker links a caretaker account to a property they manage.
type PropertyCaretaker struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"not null;index:idx_property_caretaker,unique" json:"property_id"`
	UserID     uint      `gorm:"not null;index:idx_property_caretaker,unique" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`

	Property Property `gorm:"foreignKey:PropertyID" json:"-"`
	User     User     `gorm:"foreignKey:UserID" json:"-"`
}

func (PropertyCaretaker) TableName() string {
	return "property_caretakers"
}
