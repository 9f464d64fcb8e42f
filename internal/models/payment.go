package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment records money received against a unit. Amounts are kept in cents
// to avoid float drift in the summary aggregates. Reference is generated
// server side and unique across all payments.
type Payment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UnitID      uint           `gorm:"not null;index" json:"unit_id"`
	TenantID    uint           `gorm:"not null;index" json:"tenant_id"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	PaymentType string         `gorm:"size:20;not null;default:'rent'" json:"payment_type"`
	Method      string         `gorm:"size:20;not null;default:'cash'" json:"method"`
	Status      string         `gorm:"size:20;not null;default:'completed';index" json:"status"`
	PeriodMonth *int           `json:"period_month"`
	PeriodYear  *int           `json:"period_year"`
	Reference   string         `gorm:"size:64;uniqueIndex" json:"reference"`
	RecordedBy  uint           `gorm:"not null" json:"recorded_by"`
	PaidAt      time.Time      `gorm:"index" json:"paid_at"`
	Notes       string         `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Unit     Unit `gorm:"foreignKey:UnitID" json:"-"`
	Tenant   User `gorm:"foreignKey:TenantID" json:"-"`
	Recorder User `gorm:"foreignKey:RecordedBy" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
