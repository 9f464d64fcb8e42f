package repository

import (
	"kejani/internal/domain"
	"kejani/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetScoped(scope func(*gorm.DB) *gorm.DB, id uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Scopes(scope).Where("payments.id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PaymentFilter narrows payment listings; zero values mean "no filter".
type PaymentFilter struct {
	Year   int
	Month  int
	Type   string
	UnitID uint
}

func (r *PaymentRepository) ListScoped(scope func(*gorm.DB) *gorm.DB, f PaymentFilter, limit, offset int) ([]models.Payment, error) {
	q := r.db.Scopes(scope)
	if f.Year != 0 {
		q = q.Where("payments.period_year = ?", f.Year)
	}
	if f.Month != 0 {
		q = q.Where("payments.period_month = ?", f.Month)
	}
	if f.Type != "" {
		q = q.Where("payments.payment_type = ?", f.Type)
	}
	if f.UnitID != 0 {
		q = q.Where("payments.unit_id = ?", f.UnitID)
	}
	var list []models.Payment
	err := q.Order("payments.paid_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// UnitBalance is one row of the monthly rent summary: what the occupied unit
// should pay against what has been recorded for that period.
type UnitBalance struct {
	UnitID       uint   `json:"unit_id"`
	UnitNumber   string `json:"unit_number"`
	PropertyID   uint   `json:"property_id"`
	Property     string `json:"property"`
	TenantID     uint   `json:"tenant_id"`
	Tenant       string `json:"tenant"`
	RentCents    int64  `json:"rent_cents"`
	PaidCents    int64  `json:"paid_cents"`
	BalanceCents int64  `json:"balance_cents"`
}

// UnitBalances computes per-unit rent balances for one period across the
// given properties. Only occupied units appear; paid sums count completed
// rent payments recorded for the current occupant.
func (r *PaymentRepository) UnitBalances(propertyIDs []uint, month, year int) ([]UnitBalance, error) {
	if len(propertyIDs) == 0 {
		return []UnitBalance{}, nil
	}
	var rows []UnitBalance
	err := r.db.Table("units").
		Select(`units.id AS unit_id, units.unit_number AS unit_number,
			properties.id AS property_id, properties.name AS property,
			users.id AS tenant_id, users.username AS tenant,
			units.rent_cents AS rent_cents,
			COALESCE(SUM(payments.amount_cents), 0) AS paid_cents,
			units.rent_cents - COALESCE(SUM(payments.amount_cents), 0) AS balance_cents`).
		Joins("JOIN properties ON properties.id = units.property_id AND properties.deleted_at IS NULL").
		Joins("JOIN users ON users.id = units.tenant_id").
		Joins(`LEFT JOIN payments ON payments.unit_id = units.id
			AND payments.tenant_id = units.tenant_id
			AND payments.payment_type = ?
			AND payments.status = ?
			AND payments.period_month = ?
			AND payments.period_year = ?
			AND payments.deleted_at IS NULL`,
			domain.PaymentTypeRent, domain.PaymentStatusCompleted, month, year).
		Where("units.property_id IN ? AND units.tenant_id IS NOT NULL", propertyIDs).
		Group("units.id, units.unit_number, properties.id, properties.name, users.id, users.username, units.rent_cents").
		Order("properties.name, units.unit_number").
		Scan(&rows).Error
	return rows, err
}

// MonthTotal aggregates completed payments for one period.
type MonthTotal struct {
	Month      int   `json:"month"`
	Year       int   `json:"year"`
	TotalCents int64 `json:"total_cents"`
	Count      int64 `json:"count"`
}

// MonthlyTotals returns period totals for the given properties, newest period
// first, at most months rows.
func (r *PaymentRepository) MonthlyTotals(propertyIDs []uint, months int) ([]MonthTotal, error) {
	if len(propertyIDs) == 0 {
		return []MonthTotal{}, nil
	}
	var rows []MonthTotal
	err := r.db.Model(&models.Payment{}).
		Select("payments.period_month AS month, payments.period_year AS year, SUM(payments.amount_cents) AS total_cents, COUNT(*) AS count").
		Joins("JOIN units ON units.id = payments.unit_id").
		Where("units.property_id IN ? AND payments.status = ? AND payments.period_month IS NOT NULL", propertyIDs, domain.PaymentStatusCompleted).
		Group("payments.period_year, payments.period_month").
		Order("payments.period_year DESC, payments.period_month DESC").
		Limit(months).
		Scan(&rows).Error
	return rows, err
}
