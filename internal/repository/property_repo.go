package repository

import (
	"kejani/internal/models"

	"gorm.io/gorm"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(p *models.Property) error {
	return r.db.Create(p).Error
}

func (r *PropertyRepository) GetByID(id uint) (*models.Property, error) {
	var p models.Property
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetScoped loads one property through the caller's scope. An out-of-scope id
// comes back as gorm.ErrRecordNotFound, same as a missing one.
func (r *PropertyRepository) GetScoped(scope func(*gorm.DB) *gorm.DB, id uint) (*models.Property, error) {
	var p models.Property
	err := r.db.Scopes(scope).Preload("Units").Where("properties.id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PropertyRepository) ListScoped(scope func(*gorm.DB) *gorm.DB, limit, offset int) ([]models.Property, error) {
	var list []models.Property
	err := r.db.Scopes(scope).Order("properties.created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *PropertyRepository) Update(p *models.Property) error {
	return r.db.Save(p).Error
}

// DeleteCascade removes the property, its units and its caretaker links in
// one transaction so no orphaned unit stays visible to any scope.
func (r *PropertyRepository) DeleteCascade(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.Unit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyCaretaker{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Property{}, id).Error
	})
}

func (r *PropertyRepository) LinkCaretaker(propertyID, userID uint) error {
	return r.db.Create(&models.PropertyCaretaker{PropertyID: propertyID, UserID: userID}).Error
}

func (r *PropertyRepository) UnlinkCaretaker(propertyID, userID uint) error {
	return r.db.Where("property_id = ? AND user_id = ?", propertyID, userID).
		Delete(&models.PropertyCaretaker{}).Error
}

func (r *PropertyRepository) IsCaretaker(propertyID, userID uint) (bool, error) {
	var c int64
	err := r.db.Model(&models.PropertyCaretaker{}).
		Where("property_id = ? AND user_id = ?", propertyID, userID).Count(&c).Error
	return c > 0, err
}

func (r *PropertyRepository) ListCaretakers(propertyID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Joins("JOIN property_caretakers pc ON pc.user_id = users.id").
		Where("pc.property_id = ?", propertyID).Find(&users).Error
	return users, err
}

// RefreshUnitCount recomputes the denormalized total_units counter.
func (r *PropertyRepository) RefreshUnitCount(propertyID uint) error {
	sub := r.db.Model(&models.Unit{}).Select("COUNT(*)").Where("property_id = ?", propertyID)
	return r.db.Model(&models.Property{}).Where("id = ?", propertyID).
		UpdateColumn("total_units", sub).Error
}
