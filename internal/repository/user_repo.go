package repository

import (
	"kejani/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) EmailTaken(email string) (bool, error) {
	var c int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&c).Error
	return c > 0, err
}

func (r *UserRepository) UsernameTaken(username string) (bool, error) {
	var c int64
	err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&c).Error
	return c > 0, err
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

func (r *UserRepository) ListByIDs(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var list []models.User
	err := r.db.Where("id IN ?", ids).Find(&list).Error
	return list, err
}
