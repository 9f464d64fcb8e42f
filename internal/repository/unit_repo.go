package repository

import (
	"errors"

	"kejani/internal/domain"
	"kejani/internal/models"

	"gorm.io/gorm"
)

type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

func (r *UnitRepository) Create(u *models.Unit) error {
	return r.db.Create(u).Error
}

func (r *UnitRepository) GetByID(id uint) (*models.Unit, error) {
	var u models.Unit
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UnitRepository) GetScoped(scope func(*gorm.DB) *gorm.DB, id uint) (*models.Unit, error) {
	var u models.Unit
	err := r.db.Scopes(scope).Preload("Tenant").Where("units.id = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UnitRepository) ListScoped(scope func(*gorm.DB) *gorm.DB, status string, limit, offset int) ([]models.Unit, error) {
	q := r.db.Scopes(scope)
	if status != "" {
		q = q.Where("units.status = ?", status)
	}
	var list []models.Unit
	err := q.Order("units.property_id, units.unit_number").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *UnitRepository) Update(u *models.Unit) error {
	return r.db.Save(u).Error
}

func (r *UnitRepository) NumberTaken(propertyID uint, unitNumber string) (bool, error) {
	var c int64
	err := r.db.Model(&models.Unit{}).
		Where("property_id = ? AND unit_number = ?", propertyID, unitNumber).Count(&c).Error
	return c > 0, err
}

// UnitOfTenant returns the unit the tenant currently holds, or nil.
func (r *UnitRepository) UnitOfTenant(tenantID uint) (*models.Unit, error) {
	var u models.Unit
	err := r.db.Where("tenant_id = ?", tenantID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AssignTenant places a tenant into a vacant unit. The whole sequence runs in
// one transaction: validate the unit is vacant and the tenant holds nothing,
// then write with a guard that re-checks vacancy. A guard that matches zero
// rows means a concurrent request won the race; the caller sees ErrConflict
// and may retry. The unique index on tenant_id catches the symmetric race of
// two units grabbing the same tenant.
func (r *UnitRepository) AssignTenant(unitID, tenantID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var unit models.Unit
		if err := tx.First(&unit, unitID).Error; err != nil {
			return err
		}
		if unit.TenantID != nil {
			if *unit.TenantID == tenantID {
				return nil
			}
			return domain.Constraint(domain.InvariantUnitOccupied, "unit already has a tenant")
		}
		var held int64
		if err := tx.Model(&models.Unit{}).Where("tenant_id = ?", tenantID).Count(&held).Error; err != nil {
			return err
		}
		if held > 0 {
			return domain.Constraint(domain.InvariantAlreadyAssigned, "tenant already holds a unit")
		}
		res := tx.Model(&models.Unit{}).
			Where("id = ? AND tenant_id IS NULL", unitID).
			Updates(map[string]interface{}{
				"tenant_id": tenantID,
				"status":    string(domain.UnitOccupied),
			})
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return domain.ErrConflict
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrConflict
		}
		return nil
	})
}

// UnassignTenant vacates a unit and moves it back to available.
func (r *UnitRepository) UnassignTenant(unitID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var unit models.Unit
		if err := tx.First(&unit, unitID).Error; err != nil {
			return err
		}
		if unit.TenantID == nil {
			return domain.Constraint(domain.InvariantUnitNotOccupied, "unit has no tenant")
		}
		res := tx.Model(&models.Unit{}).
			Where("id = ? AND tenant_id = ?", unitID, *unit.TenantID).
			Updates(map[string]interface{}{
				"tenant_id": nil,
				"status":    string(domain.UnitAvailable),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrConflict
		}
		return nil
	})
}

// TransferTenant moves an assigned tenant into another vacant unit: the old
// unit is cleared and the new one filled inside a single transaction, so both
// writes land or neither does.
func (r *UnitRepository) TransferTenant(tenantID, toUnitID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var from models.Unit
		err := tx.Where("tenant_id = ?", tenantID).First(&from).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Constraint(domain.InvariantTenantNotInUnit, "tenant holds no unit to transfer from")
		}
		if err != nil {
			return err
		}
		if from.ID == toUnitID {
			return nil
		}
		var to models.Unit
		if err := tx.First(&to, toUnitID).Error; err != nil {
			return err
		}
		if to.TenantID != nil {
			return domain.Constraint(domain.InvariantUnitOccupied, "target unit already has a tenant")
		}

		res := tx.Model(&models.Unit{}).
			Where("id = ? AND tenant_id = ?", from.ID, tenantID).
			Updates(map[string]interface{}{
				"tenant_id": nil,
				"status":    string(domain.UnitAvailable),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrConflict
		}

		res = tx.Model(&models.Unit{}).
			Where("id = ? AND tenant_id IS NULL", toUnitID).
			Updates(map[string]interface{}{
				"tenant_id": tenantID,
				"status":    string(domain.UnitOccupied),
			})
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return domain.ErrConflict
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrConflict
		}
		return nil
	})
}
